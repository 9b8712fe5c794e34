package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/anaflow/internal/analysis"
	"github.com/maxkimambo/anaflow/internal/catalog"
	"github.com/maxkimambo/anaflow/internal/display"
	apperrors "github.com/maxkimambo/anaflow/internal/errors"
	"github.com/maxkimambo/anaflow/internal/introspect"
	"github.com/maxkimambo/anaflow/internal/logger"
	"github.com/maxkimambo/anaflow/internal/workflow"
)

var (
	genInputFile         string
	genAnalysisDir       string
	genOutput            string
	genIsMC              bool
	genWithQCUpload      bool
	genRunNumber         int
	genPassName          string
	genPeriodName        string
	genConfig            string
	genOnlyAnalyses      []string
	genIncludeDisabled   bool
	genAutosetConverters bool
	genTimeout           int
	genNeeds             []string
	genCatalog           string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create the analysis test workflow for an AO2D input",
	Long: `Create the analysis test workflow for an AO2D input.

Every enabled analysis of the catalog with a configuration for the input
variant (data, or mc with --is-mc) becomes one task chaining its executables.
Analyses with a post-processing macro get a follow-up task; --with-qc-upload
adds one upload task per expected output file.

EXAMPLES:
# Data input, all enabled analyses
anaflow generate -f AO2D.root

# MC input, two analyses, with QC upload
anaflow generate -f AO2D.root --is-mc --only-analyses EventSelectionQA,MCHistograms \
  --with-qc-upload --pass-name apass4 --period-name LHC23zzh
`,
	PreRunE: validateGenerateFlags,
	RunE:    runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genInputFile, "input-file", "f", "./AO2D.root", "AO2D input, a .txt file list or alien:// path (required)")
	generateCmd.Flags().StringVarP(&genAnalysisDir, "analysis-dir", "a", "./Analysis", "Analysis output and working directory")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "workflow_analysis_test.json", "Workflow file name")
	generateCmd.Flags().BoolVar(&genIsMC, "is-mc", false, "Input comes from MC (data assumed otherwise)")
	generateCmd.Flags().BoolVar(&genWithQCUpload, "with-qc-upload", false, "Add QC upload tasks for the expected outputs")
	generateCmd.Flags().IntVar(&genRunNumber, "run-number", 300000, "Run number used for the QC upload")
	generateCmd.Flags().StringVar(&genPassName, "pass-name", "", "Pass name (required with --with-qc-upload)")
	generateCmd.Flags().StringVar(&genPeriodName, "period-name", "", "Period name (required with --with-qc-upload)")
	generateCmd.Flags().StringVar(&genConfig, "config", "", "Configuration replacing the catalog one for every analysis")
	generateCmd.Flags().StringSliceVar(&genOnlyAnalyses, "only-analyses", nil, "Only consider these analyses (comma-separated or repeated)")
	generateCmd.Flags().BoolVar(&genIncludeDisabled, "include-disabled", false, "Add analyses even when they are disabled")
	generateCmd.Flags().BoolVar(&genAutosetConverters, "autoset-converters", false, "Add the collision converter when the input has the legacy collision table")
	generateCmd.Flags().IntVar(&genTimeout, "timeout", 0, "Timeout for analysis tasks in seconds (0 for none)")
	generateCmd.Flags().StringSliceVar(&genNeeds, "needs", nil, "Tasks of another workflow every analysis waits for")
	generateCmd.Flags().StringVar(&genCatalog, "catalog", "", "Analysis catalog (defaults to the one of O2DPG_ROOT)")

	_ = generateCmd.MarkFlagRequired("input-file")
}

func validateGenerateFlags(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(genInputFile) == "" {
		return apperrors.NewValidationError(
			apperrors.CodeValidationInput,
			"Input file is required",
			"Parameter validation").
			WithContext("parameter", "--input-file")
	}
	if genTimeout < 0 {
		return apperrors.NewValidationError(
			apperrors.CodeValidationInput,
			fmt.Sprintf("--timeout must not be negative, got %d", genTimeout),
			"Parameter validation")
	}
	if genWithQCUpload {
		return qcParams().Validate()
	}
	return nil
}

func qcParams() analysis.QCParams {
	return analysis.QCParams{
		PeriodName: genPeriodName,
		PassName:   genPassName,
		RunNumber:  genRunNumber,
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat := catalog.New(cfg.CatalogPath)
	logger.Op.WithFields(map[string]interface{}{
		"catalog": cat.Path(),
		"root":    cfg.Root,
	}).Debug("Configuration loaded")
	logger.User.Starting(fmt.Sprintf("Building analysis workflow for %s", genInputFile))

	builder := analysis.NewBuilder(cfg, cat, introspect.NewCommandIntrospector(cfg.Introspection))

	wf := workflow.New()
	summary, err := builder.AddAnalysisTasks(ctx, wf, analysis.Options{
		InputFile:         genInputFile,
		OutputDir:         genAnalysisDir,
		IsMC:              genIsMC,
		Only:              genOnlyAnalyses,
		IncludeDisabled:   genIncludeDisabled,
		AutosetConverters: genAutosetConverters,
		Timeout:           genTimeout,
		ConfigOverride:    genConfig,
		Needs:             genNeeds,
	})
	if err != nil {
		return err
	}

	if genWithQCUpload {
		if summary.Uploads, err = builder.AddQCUploadTasks(wf, qcParams()); err != nil {
			return err
		}
	}

	if wf.Len() == 0 {
		logger.User.Warn("Nothing was added")
	}
	if err := workflow.Dump(ctx, wf, genOutput, genNeeds...); err != nil {
		return err
	}
	logger.User.Successf("Wrote %d task(s) to %s", wf.Len(), genOutput)

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), summaryBox(summary, wf.Len()))
	}
	return nil
}

func summaryBox(summary analysis.Summary, total int) string {
	kind := display.KindSuccess
	if total == 0 {
		kind = display.KindWarning
	}
	box := display.NewBox(kind, fmt.Sprintf("Workflow written to %s", genOutput)).
		AddField("Input", summary.Input).
		AddField("Analyses", summary.Analyses).
		AddField("Post-processing", summary.PostProcessing).
		AddField("QC uploads", summary.Uploads)
	if summary.Converter {
		box.AddField("Converter", analysis.CollisionConverter)
	}
	return box.
		AddLine("").
		AddLine("Now you can run the workflow e.g. `${O2DPG_ROOT}/MC/bin/o2_dpg_workflow_runner.py -f " + genOutput + "`").
		Render()
}
