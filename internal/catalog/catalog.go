// Package catalog loads the analysis catalog: the static list of analyses,
// their executables, per-variant configuration and expected result files.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/maxkimambo/anaflow/internal/errors"
	"github.com/maxkimambo/anaflow/internal/logger"
)

// Variant selects which configuration applies to an input.
type Variant string

const (
	VariantMC   Variant = "mc"
	VariantData Variant = "data"
)

// VariantFor returns the variant matching the is-MC flag
func VariantFor(isMC bool) Variant {
	if isMC {
		return VariantMC
	}
	return VariantData
}

// Descriptor is one analysis entry of the catalog
type Descriptor struct {
	Name           string             `json:"name" yaml:"name"`
	Enabled        bool               `json:"enabled" yaml:"enabled"`
	Tasks          []string           `json:"tasks" yaml:"tasks"`
	Config         map[Variant]string `json:"config" yaml:"config"`
	ExpectedOutput []string           `json:"expected_output" yaml:"expected_output"`
}

// ConfigFor returns the configuration locator for variant, if any
func (d Descriptor) ConfigFor(variant Variant) (string, bool) {
	locator, ok := d.Config[variant]
	if !ok || strings.TrimSpace(locator) == "" {
		return "", false
	}
	return locator, true
}

type document struct {
	Analyses []Descriptor `json:"analyses" yaml:"analyses"`
}

// Catalog reads analysis descriptors from a JSON or YAML file
type Catalog struct {
	path string
}

// New creates a catalog backed by path
func New(path string) *Catalog {
	return &Catalog{path: path}
}

// Path returns the backing file
func (c *Catalog) Path() string {
	return c.path
}

// Load reads the catalog and returns the retained descriptors in declaration
// order. A non-empty only keeps just those names; disabled analyses are
// dropped unless includeDisabled is set.
func (c *Catalog) Load(only []string, includeDisabled bool) ([]Descriptor, error) {
	all, err := c.read()
	if err != nil {
		return nil, err
	}

	var filter map[string]bool
	if len(only) > 0 {
		filter = make(map[string]bool, len(only))
		for _, name := range only {
			filter[strings.TrimSpace(name)] = true
		}
	}

	collected := make([]Descriptor, 0, len(all))
	for _, d := range all {
		if filter != nil && !filter[d.Name] {
			continue
		}
		if !d.Enabled && !includeDisabled {
			logger.User.Skipf("Analysis %s not added since it is disabled", d.Name)
			continue
		}
		collected = append(collected, d)
	}
	return collected, nil
}

// Get returns the descriptor called name regardless of its enabled flag
func (c *Catalog) Get(name string) (Descriptor, bool, error) {
	all, err := c.read()
	if err != nil {
		return Descriptor{}, false, err
	}
	for _, d := range all {
		if d.Name == name {
			return d, true, nil
		}
	}
	return Descriptor{}, false, nil
}

func (c *Catalog) read() ([]Descriptor, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, apperrors.NewCatalogReadError(c.path, err)
	}

	var doc document
	switch strings.ToLower(filepath.Ext(c.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, apperrors.NewCatalogParseError(c.path, err)
	}
	if doc.Analyses == nil {
		return nil, apperrors.NewCatalogParseError(c.path, fmt.Errorf("missing 'analyses' list"))
	}

	seen := make(map[string]bool, len(doc.Analyses))
	out := make([]Descriptor, 0, len(doc.Analyses))
	for i, d := range doc.Analyses {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return nil, malformed(c.path, fmt.Sprintf("entry %d has no name", i))
		}
		if seen[d.Name] {
			return nil, malformed(c.path, fmt.Sprintf("analysis %s is declared twice", d.Name))
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	logger.Op.Debugf("Loaded %d analyses from %s", len(out), c.path)
	return out, nil
}

func malformed(path, reason string) error {
	return apperrors.NewCatalogError(apperrors.CodeCatalogMalformed,
		fmt.Sprintf("Malformed analysis catalog: %s", reason),
		"Catalog load").
		WithContext("path", path).
		WithTroubleshooting("Analysis names must be present and unique")
}
