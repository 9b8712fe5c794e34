package analysis

import (
	"path/filepath"
	"strings"

	"github.com/maxkimambo/anaflow/internal/config"
	"github.com/maxkimambo/anaflow/internal/workflow"
)

// TaskFactory creates the workflow tasks of the analysis test
type TaskFactory struct {
	resources config.ResourcesConfig
	dplArgs   string
}

// NewTaskFactory creates a new task factory
func NewTaskFactory(cfg *config.Config) *TaskFactory {
	args := []string{
		cfg.DPL.ShmSegmentSize,
		cfg.DPL.AODMemoryRateLimit,
		cfg.DPL.Readers,
		cfg.DPL.ExtraArguments,
	}
	var kept []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			kept = append(kept, a)
		}
	}
	return &TaskFactory{
		resources: cfg.Resources,
		dplArgs:   strings.Join(kept, " "),
	}
}

// Create builds the task running analysis name. The task works in
// outputDir/name and the DPL arguments are appended to cmd.
func (f *TaskFactory) Create(name, cmd, outputDir string, needs []string, isMC bool) workflow.Task {
	labels := []string{workflow.LabelAnalysis, name}
	if isMC {
		labels = append(labels, workflow.LabelAnalysisMC)
	}
	if f.dplArgs != "" {
		cmd = cmd + " " + f.dplArgs
	}
	return f.CreateFollowUp(workflow.FullAnalysisName(name), cmd, filepath.Join(outputDir, name), labels, needs)
}

// CreateFollowUp builds a task with the default resources and the given
// identity. It is used for tasks attached to an existing analysis.
func (f *TaskFactory) CreateFollowUp(name, cmd, cwd string, labels, needs []string) workflow.Task {
	return workflow.Task{
		Name:   name,
		Cwd:    cwd,
		Labels: append([]string{}, labels...),
		CPU:    f.resources.CPU,
		Mem:    f.resources.Mem,
		Needs:  append([]string{}, needs...),
		Cmd:    cmd,
	}
}
