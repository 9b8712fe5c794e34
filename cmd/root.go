package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maxkimambo/anaflow/internal/logger"
)

var (
	debug        bool
	verbose      bool
	jsonLogs     bool
	quiet        bool
	settingsFile string
	version      = "v0.1.0"

	rootCmd = &cobra.Command{
		Use:   "anaflow",
		Short: "Generate O2DPG analysis test workflows",
		Long: `anaflow builds the analysis test workflow for an AO2D input: one task per
analysis of the O2DPG analysis catalog, optional post-processing and QC upload
tasks, written as JSON for o2_dpg_workflow_runner.py.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(verbose || debug, jsonLogs, quiet)
			if debug {
				logger.Op.Debug("Debug logging enabled")
			}
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "YAML settings file (defaults, O2DPG root, QC database)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
