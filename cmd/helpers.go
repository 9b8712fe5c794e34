package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maxkimambo/anaflow/internal/config"
)

// loadConfig resolves the settings file, the environment and the --catalog
// flag of cmd into a validated Config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v, err := config.New(settingsFile)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("catalog"); f != nil && f.Changed {
		v.Set("catalog", f.Value.String())
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
