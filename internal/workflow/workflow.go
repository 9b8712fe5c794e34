package workflow

import (
	"fmt"
	"strings"

	apperrors "github.com/maxkimambo/anaflow/internal/errors"
)

// Workflow is an append-only, ordered list of tasks indexed by name
type Workflow struct {
	tasks  []Task
	byName map[string]int
}

// New creates an empty workflow
func New() *Workflow {
	return &Workflow{
		byName: make(map[string]int),
	}
}

// Append adds a task. Names must be unique within the workflow.
func (w *Workflow) Append(task Task) error {
	if task.Name == "" {
		return apperrors.NewWorkflowError(apperrors.CodeWorkflowDuplicate,
			"Task name cannot be empty", "Workflow append")
	}
	if _, exists := w.byName[task.Name]; exists {
		return apperrors.NewWorkflowError(apperrors.CodeWorkflowDuplicate,
			fmt.Sprintf("Task %s already exists in the workflow", task.Name),
			"Workflow append").
			WithContext("task", task.Name).
			WithTroubleshooting("Analysis names in the catalog must be unique")
	}
	w.byName[task.Name] = len(w.tasks)
	w.tasks = append(w.tasks, task.clone())
	return nil
}

// Get returns a copy of the task called name
func (w *Workflow) Get(name string) (Task, bool) {
	i, ok := w.byName[name]
	if !ok {
		return Task{}, false
	}
	return w.tasks[i].clone(), true
}

// Tasks returns copies of all tasks in append order
func (w *Workflow) Tasks() []Task {
	out := make([]Task, len(w.tasks))
	for i, t := range w.tasks {
		out[i] = t.clone()
	}
	return out
}

// Len returns the number of tasks
func (w *Workflow) Len() int {
	return len(w.tasks)
}

// Validate checks that every need names an earlier task or one of external,
// and that the dependency relation has no cycle.
func (w *Workflow) Validate(external ...string) error {
	satisfied := make(map[string]bool, len(external))
	for _, name := range external {
		satisfied[name] = true
	}

	for i, task := range w.tasks {
		for _, dep := range task.Needs {
			if satisfied[dep] {
				continue
			}
			j, ok := w.byName[dep]
			if !ok {
				return apperrors.NewWorkflowError(apperrors.CodeWorkflowDependency,
					fmt.Sprintf("task '%s' depends on non-existent task '%s'", task.Name, dep),
					"Workflow validation").
					WithContext("task", task.Name).
					WithContext("needs", dep)
			}
			if j >= i {
				return apperrors.NewWorkflowError(apperrors.CodeWorkflowDependency,
					fmt.Sprintf("task '%s' depends on later task '%s'", task.Name, dep),
					"Workflow validation").
					WithContext("task", task.Name).
					WithContext("needs", dep)
			}
		}
	}

	if _, err := w.dag(satisfied).TopologicalSort(); err != nil {
		return apperrors.NewWorkflowError(apperrors.CodeWorkflowCycle,
			"invalid workflow structure", "Workflow validation").WithOriginalError(err)
	}
	return nil
}

// ExecutionOrder returns one valid execution order of the task names
func (w *Workflow) ExecutionOrder(external ...string) ([]string, error) {
	if err := w.Validate(external...); err != nil {
		return nil, err
	}
	satisfied := make(map[string]bool, len(external))
	for _, name := range external {
		satisfied[name] = true
	}
	return w.dag(satisfied).TopologicalSort()
}

func (w *Workflow) dag(external map[string]bool) *DAG {
	d := NewDAG()
	for _, task := range w.tasks {
		d.AddNode(task.Name)
	}
	for _, task := range w.tasks {
		for _, dep := range task.Needs {
			if external[dep] {
				continue
			}
			d.AddEdge(task.Name, dep)
		}
	}
	return d
}

// Index maps raw analysis names to their analysis task
type Index map[string]Task

// BuildIndex collects the analysis tasks of w: tasks labelled Analysis whose
// name is Analysis_<raw>. Post-processing tasks are not analyses.
func BuildIndex(w *Workflow) Index {
	idx := make(Index)
	prefix := LabelAnalysis + "_"
	for _, task := range w.tasks {
		if !task.HasLabel(LabelAnalysis) || task.HasLabel(LabelPostProcessing) {
			continue
		}
		if !strings.HasPrefix(task.Name, prefix) {
			continue
		}
		idx[strings.TrimPrefix(task.Name, prefix)] = task.clone()
	}
	return idx
}

// Lookup returns the analysis task for raw
func (idx Index) Lookup(raw string) (Task, bool) {
	t, ok := idx[raw]
	return t, ok
}
