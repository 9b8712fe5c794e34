package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/anaflow/internal/display"
	"github.com/maxkimambo/anaflow/internal/workflow"
)

var showCmd = &cobra.Command{
	Use:   "show <workflow.json>",
	Short: "Show the tasks of a generated workflow in execution order",
	Long: `Show the tasks of a generated workflow in execution order.

Needs that name no task of the file are treated as provided by an enclosing
workflow and listed as external.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	wf, err := workflow.Read(args[0])
	if err != nil {
		return err
	}

	external := externalNeeds(wf)
	order, err := wf.ExecutionOrder(external...)
	if err != nil {
		return err
	}

	tbl := display.NewTable("#", "Task", "Labels", "Needs").AlignRight(0)
	for i, name := range order {
		task, _ := wf.Get(name)
		tbl.AddRow(strconv.Itoa(i+1), task.Name, strings.Join(task.Labels, ","), strings.Join(task.Needs, ","))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
	if len(external) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "External needs: %s\n", strings.Join(external, ", "))
	}
	return nil
}

// externalNeeds returns the needs of wf that name none of its tasks
func externalNeeds(wf *workflow.Workflow) []string {
	seen := make(map[string]bool)
	var external []string
	for _, task := range wf.Tasks() {
		for _, dep := range task.Needs {
			if _, ok := wf.Get(dep); ok || seen[dep] {
				continue
			}
			seen[dep] = true
			external = append(external, dep)
		}
	}
	return external
}
