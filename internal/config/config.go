// Package config holds the settings the workflow generator needs beyond the
// command-line flags: where the O2DPG installation lives, resource defaults
// for generated tasks and the external tools referenced by task commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/maxkimambo/anaflow/internal/errors"
)

// EnvPrefix is the prefix for environment overrides, e.g. ANAFLOW_QC_URL.
const EnvPrefix = "ANAFLOW"

// ResourcesConfig is the reservation attached to every generated task
type ResourcesConfig struct {
	CPU int    `mapstructure:"cpu"`
	Mem string `mapstructure:"mem"`
}

// DPLConfig holds the O2/DPL arguments appended to every analysis command
type DPLConfig struct {
	ShmSegmentSize     string `mapstructure:"shm_segment_size"`
	AODMemoryRateLimit string `mapstructure:"aod_memory_rate_limit"`
	Readers            string `mapstructure:"readers"`
	ExtraArguments     string `mapstructure:"extra_arguments"`
}

// QCConfig describes the upload utility used by QC upload tasks
type QCConfig struct {
	UploadCommand string `mapstructure:"upload_command"`
	URL           string `mapstructure:"url"`
	DetectorCode  string `mapstructure:"detector_code"`
}

// IntrospectionConfig describes how input files are inspected for legacy tables
type IntrospectionConfig struct {
	// Command lists the keys of a ROOT file; the file path is appended.
	Command        string `mapstructure:"command"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Config is the complete generator configuration. It is resolved once at
// start-up and only read afterwards.
type Config struct {
	// Root is the O2DPG installation (O2DPG_ROOT).
	Root string `mapstructure:"root"`
	// CatalogPath defaults to <root>/MC/config/analysis_testing/json/analyses_config.json.
	CatalogPath string `mapstructure:"catalog"`
	// PostProcessingDir defaults to <root>/MC/analysis_testing/post_processing.
	PostProcessingDir string `mapstructure:"post_processing_dir"`

	Resources     ResourcesConfig     `mapstructure:"resources"`
	DPL           DPLConfig           `mapstructure:"dpl"`
	QC            QCConfig            `mapstructure:"qc"`
	Introspection IntrospectionConfig `mapstructure:"introspection"`
}

// Default returns a Config with the values used by the O2DPG analysis tests
func Default() *Config {
	return &Config{
		Resources: ResourcesConfig{
			CPU: 1,
			Mem: "2000",
		},
		DPL: DPLConfig{
			ShmSegmentSize:     "--shm-segment-size 2000000000",
			AODMemoryRateLimit: "--aod-memory-rate-limit 500000000",
			Readers:            "--readers 1",
			ExtraArguments:     "-b",
		},
		QC: QCConfig{
			UploadCommand: "o2-qc-upload-root-objects",
			URL:           "ccdb-test.cern.ch:8080",
			DetectorCode:  "AOD",
		},
		Introspection: IntrospectionConfig{
			Command:        "rootls -1 -r",
			TimeoutSeconds: 60,
		},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("root", defaults.Root)
	v.SetDefault("catalog", defaults.CatalogPath)
	v.SetDefault("post_processing_dir", defaults.PostProcessingDir)

	v.SetDefault("resources.cpu", defaults.Resources.CPU)
	v.SetDefault("resources.mem", defaults.Resources.Mem)

	v.SetDefault("dpl.shm_segment_size", defaults.DPL.ShmSegmentSize)
	v.SetDefault("dpl.aod_memory_rate_limit", defaults.DPL.AODMemoryRateLimit)
	v.SetDefault("dpl.readers", defaults.DPL.Readers)
	v.SetDefault("dpl.extra_arguments", defaults.DPL.ExtraArguments)

	v.SetDefault("qc.upload_command", defaults.QC.UploadCommand)
	v.SetDefault("qc.url", defaults.QC.URL)
	v.SetDefault("qc.detector_code", defaults.QC.DetectorCode)

	v.SetDefault("introspection.command", defaults.Introspection.Command)
	v.SetDefault("introspection.timeout_seconds", defaults.Introspection.TimeoutSeconds)
}

// New returns a viper instance with defaults, environment bindings and,
// when settingsFile is non-empty, the given YAML settings file.
func New(settingsFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the installation root keeps its conventional name
	if err := v.BindEnv("root", EnvPrefix+"_ROOT", "O2DPG_ROOT"); err != nil {
		return nil, err
	}

	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.NewConfigurationError(apperrors.CodeConfigFile,
				fmt.Sprintf("Cannot read settings file '%s'", settingsFile),
				"Settings load").
				WithContext("path", settingsFile).
				WithOriginalError(err)
		}
	}
	return v, nil
}

// Load unmarshals v into a Config and fills the derived paths.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigurationError(apperrors.CodeConfigFile,
			"Cannot decode settings", "Settings load").WithOriginalError(err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Root, err = ExpandPath(c.Root); err != nil {
		return fmt.Errorf("root: %w", err)
	}
	if c.CatalogPath == "" && c.Root != "" {
		c.CatalogPath = filepath.Join(c.Root, "MC", "config", "analysis_testing", "json", "analyses_config.json")
	}
	if c.CatalogPath, err = ExpandPath(c.CatalogPath); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if c.PostProcessingDir == "" && c.Root != "" {
		c.PostProcessingDir = filepath.Join(c.Root, "MC", "analysis_testing", "post_processing")
	}
	if c.PostProcessingDir, err = ExpandPath(c.PostProcessingDir); err != nil {
		return fmt.Errorf("post_processing_dir: %w", err)
	}
	if c.Resources.CPU <= 0 {
		c.Resources.CPU = 1
	}
	c.Resources.Mem = strings.TrimSpace(c.Resources.Mem)
	return nil
}

// Validate checks that the catalog can be located.
func (c *Config) Validate() error {
	if c.CatalogPath == "" {
		return apperrors.NewConfigurationError(apperrors.CodeConfigRoot,
			"This needs O2DPG loaded", "Settings validation").
			WithTroubleshooting(
				"Load the O2DPG environment so that O2DPG_ROOT is set",
				"Or pass the analysis catalog explicitly with --catalog",
			)
	}
	return nil
}

// Timeout returns the introspection timeout as a time.Duration
func (c *IntrospectionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExpandPath expands a leading ~ and makes the path absolute. Empty stays empty.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
