package logger_test

import (
	"github.com/maxkimambo/anaflow/internal/logger"
)

func Example_userAndOpLoggers() {
	logger.Setup(false, false, false)

	logger.User.Starting("Building analysis workflow")
	logger.User.Skipf("Analysis %s not added since it is disabled", "MCHistograms")
	logger.User.Addedf("Analysis_%s", "EventSelectionQA")

	logger.Op.WithFields(map[string]interface{}{
		"analysis": "EventSelectionQA",
		"variant":  "data",
	}).Debug("Resolved configuration")
}
