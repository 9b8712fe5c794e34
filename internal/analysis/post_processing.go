package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maxkimambo/anaflow/internal/logger"
	"github.com/maxkimambo/anaflow/internal/workflow"
)

const postProcessingDir = "post_processing"

// PostProcessingInjector adds a ROOT macro run after every analysis that
// ships one in the post-processing directory.
type PostProcessingInjector struct {
	source   DescriptorSource
	factory  *TaskFactory
	macroDir string
}

// NewPostProcessingInjector creates an injector looking for <raw>.C in macroDir
func NewPostProcessingInjector(source DescriptorSource, factory *TaskFactory, macroDir string) *PostProcessingInjector {
	return &PostProcessingInjector{
		source:   source,
		factory:  factory,
		macroDir: macroDir,
	}
}

// Run appends post-processing tasks to wf and returns how many were added.
// Analyses without expected output, macro or task in idx are skipped.
func (p *PostProcessingInjector) Run(wf *workflow.Workflow, idx workflow.Index) (int, error) {
	if p.macroDir == "" {
		logger.Op.Debug("No post-processing directory configured")
		return 0, nil
	}
	// tasks run in their own directory, so the macro path must be absolute
	macroDir, err := filepath.Abs(p.macroDir)
	if err != nil {
		return 0, err
	}
	descriptors, err := p.source.Load(nil, true)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, d := range descriptors {
		if len(d.ExpectedOutput) == 0 {
			continue
		}
		macro := filepath.Join(macroDir, d.Name+".C")
		if _, err := os.Stat(macro); err != nil {
			logger.Op.Debugf("No post-processing macro for %s", d.Name)
			continue
		}
		ana, ok := idx.Lookup(d.Name)
		if !ok {
			continue
		}

		inputs := make([]string, len(d.ExpectedOutput))
		for i, eo := range d.ExpectedOutput {
			inputs[i] = "../" + eo
		}
		cmd := fmt.Sprintf(`root -l -b -q %s\(\"%s\",\"./\"\)`, macro, strings.Join(inputs, ","))

		task := p.factory.CreateFollowUp(
			fmt.Sprintf("%s_post_processing_%s", workflow.LabelAnalysis, d.Name),
			cmd,
			filepath.Join(ana.Cwd, postProcessingDir),
			[]string{workflow.LabelAnalysis, workflow.LabelPostProcessing, d.Name},
			[]string{ana.Name},
		)
		if err := wf.Append(task); err != nil {
			return added, err
		}
		logger.User.Addedf("Post-processing for %s", d.Name)
		added++
	}
	return added, nil
}
