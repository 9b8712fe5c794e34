package main

import (
	"fmt"
	"os"

	"github.com/maxkimambo/anaflow/cmd"
	apperrors "github.com/maxkimambo/anaflow/internal/errors"
	"github.com/maxkimambo/anaflow/internal/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.Op.Debugf("command failed: %s", apperrors.DisplayErrorSummary(err))
		fmt.Fprint(os.Stderr, apperrors.FormatForCLI(err))
		if apperrors.IsUserError(err) {
			fmt.Fprintln(os.Stderr, "\nRun 'anaflow --help' for usage.")
		}
		os.Exit(1)
	}
}
