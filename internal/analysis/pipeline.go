package analysis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maxkimambo/anaflow/internal/catalog"
	"github.com/maxkimambo/anaflow/internal/config"
	"github.com/maxkimambo/anaflow/internal/logger"
)

// CollisionConverter rewrites the legacy collision table for current analyses.
const CollisionConverter = "o2-analysis-collision-converter --doNotSwap"

const (
	jsonScheme  = "json://"
	alienScheme = "alien://"
)

var remoteSchemes = []string{alienScheme, "http://", "https://", "root://"}

// Pipeline is the resolved command chain of one analysis
type Pipeline struct {
	Name          string
	Stages        []string
	Configuration string
	Input         string
	// Timeout in seconds, 0 means none.
	Timeout int
}

// Command joins the stages with pipes. Every stage gets the configuration,
// the last one also reads the input file.
func (p Pipeline) Command() string {
	cfg := " --configuration " + p.Configuration
	var sb strings.Builder
	sb.WriteString(strings.Join(p.Stages, cfg+" | "))
	sb.WriteString(cfg)
	sb.WriteString(" --aod-file ")
	sb.WriteString(p.Input)
	if p.Timeout > 0 {
		fmt.Fprintf(&sb, " --timeout %d", p.Timeout)
	}
	return sb.String()
}

// PipelineBuilder turns catalog descriptors into pipelines
type PipelineBuilder struct {
	// ConfigOverride replaces the catalog configuration of every analysis
	// that has one for the requested variant.
	ConfigOverride string
	// PrependConverter puts CollisionConverter in front of every pipeline.
	PrependConverter bool
}

// Build resolves the pipeline of d. ok is false when d has no configuration
// for variant; input must already be normalized.
func (b PipelineBuilder) Build(d catalog.Descriptor, variant catalog.Variant, input string, timeout int) (Pipeline, bool, error) {
	locator, found := d.ConfigFor(variant)
	if !found {
		logger.User.Skipf("Analysis %s not added since no configuration found for %s", d.Name, variant)
		return Pipeline{}, false, nil
	}
	if len(d.Tasks) == 0 {
		logger.User.Warnf("Analysis %s not added since it has no tasks", d.Name)
		return Pipeline{}, false, nil
	}
	if b.ConfigOverride != "" {
		locator = b.ConfigOverride
	}
	cfg, err := NormalizeConfiguration(locator)
	if err != nil {
		return Pipeline{}, false, fmt.Errorf("configuration of %s: %w", d.Name, err)
	}

	stages := make([]string, 0, len(d.Tasks)+1)
	if b.PrependConverter && !contains(d.Tasks, CollisionConverter) {
		stages = append(stages, CollisionConverter)
	}
	stages = append(stages, d.Tasks...)

	return Pipeline{
		Name:          d.Name,
		Stages:        stages,
		Configuration: cfg,
		Input:         input,
		Timeout:       timeout,
	}, true, nil
}

// NormalizeConfiguration returns locator as a json:// locator with an
// absolute path. Environment references and remote locations are kept.
func NormalizeConfiguration(locator string) (string, error) {
	locator = strings.TrimPrefix(strings.TrimSpace(locator), jsonScheme)
	if strings.HasPrefix(locator, "$") || isRemote(locator) {
		return jsonScheme + locator, nil
	}
	abs, err := config.ExpandPath(locator)
	if err != nil {
		return "", err
	}
	return jsonScheme + abs, nil
}

// NormalizeInput makes a local input absolute and marks .txt file lists
// with the @ prefix O2 expects. Remote inputs keep their URL.
func NormalizeInput(input string) (string, error) {
	list := strings.HasPrefix(input, "@")
	path := strings.TrimPrefix(input, "@")

	if !isRemote(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve input %q: %w", input, err)
		}
		path = abs
	}
	if list || strings.HasSuffix(path, ".txt") {
		return "@" + path, nil
	}
	return path, nil
}

func isRemote(locator string) bool {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(locator, scheme) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
