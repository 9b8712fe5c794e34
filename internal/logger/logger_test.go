package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerSetup(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		jsonLogs bool
		quiet    bool
		want     logrus.Level
	}{
		{"Default", false, false, false, logrus.InfoLevel},
		{"Verbose", true, false, false, logrus.DebugLevel},
		{"Quiet", false, false, true, logrus.ErrorLevel},
		{"JSON", false, true, false, logrus.InfoLevel},
		{"Verbose JSON", true, true, false, logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_MODE", "")
			t.Setenv("LOG_FORMAT", "")
			Setup(tt.verbose, tt.jsonLogs, tt.quiet)

			assert.Equal(t, tt.want, Level())
		})
	}
}

func TestEnvOverridesFlags(t *testing.T) {
	t.Setenv("LOG_MODE", "quiet")
	t.Setenv("LOG_FORMAT", "")
	Setup(true, false, false)
	t.Cleanup(func() {
		os.Unsetenv("LOG_MODE")
		Setup(false, false, false)
	})
	assert.Equal(t, logrus.ErrorLevel, Level())
}

func TestOutputRouting(t *testing.T) {
	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "")

	var userOut, opOut bytes.Buffer
	SetupWithWriters(false, false, false, &userOut, &opOut)
	t.Cleanup(func() { Setup(false, false, false) })

	User.Skipf("Analysis %s not added since it is disabled", "PWGMM")
	Op.WithFields(map[string]interface{}{"analysis": "PWGMM"}).Info("catalog entry dropped")
	Op.Debugf("hidden at info level")

	assert.Contains(t, userOut.String(), "⏭️ Analysis PWGMM not added since it is disabled")
	assert.NotContains(t, userOut.String(), "catalog entry dropped")

	assert.Contains(t, opOut.String(), "INFO: catalog entry dropped analysis=PWGMM")
	assert.NotContains(t, opOut.String(), "log_type")
	assert.NotContains(t, opOut.String(), "hidden")
}

func TestQuietKeepsWarningsOut(t *testing.T) {
	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "")

	var userOut, opOut bytes.Buffer
	SetupWithWriters(false, false, true, &userOut, &opOut)
	t.Cleanup(func() { Setup(false, false, false) })

	User.Warn("Nothing was added")
	User.Addedf("Analysis %s", "A")
	assert.Empty(t, userOut.String())
}

func TestJSONOutput(t *testing.T) {
	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "")

	var userOut, opOut bytes.Buffer
	SetupWithWriters(false, true, false, &userOut, &opOut)
	t.Cleanup(func() { Setup(false, false, false) })

	User.Successf("Workflow written to %s", "wf.json")
	line := strings.TrimSpace(userOut.String())
	require.NotEmpty(t, line)
	assert.True(t, strings.HasPrefix(line, "{"), "expected JSON object, got %s", line)
	assert.Contains(t, line, `"log_type":"user"`)
	assert.Empty(t, opOut.String())
}

func TestCLIFormatterSortsFields(t *testing.T) {
	f := &CLIFormatter{DisableTimestamp: true, DisableColors: true}
	entry := logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
		"zeta":     1,
		"alpha":    2,
		"log_type": "op",
	})
	entry.Level = logrus.WarnLevel
	entry.Message = "hello"

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "WARNING: hello alpha=2 zeta=1\n", string(out))
}

func TestLogTypeRouting(t *testing.T) {
	captureHook := &testHook{}
	base.AddHook(captureHook)
	t.Cleanup(func() { Setup(false, false, false) })

	User.Infof("user %s", "message")
	require.NotEmpty(t, captureHook.entries)
	assert.Equal(t, string(audienceUser), captureHook.entries[len(captureHook.entries)-1].Data["log_type"])

	Op.Warnf("op %s", "message")
	assert.Equal(t, string(audienceOp), captureHook.entries[len(captureHook.entries)-1].Data["log_type"])
}

// testHook captures log entries
type testHook struct {
	entries []*logrus.Entry
}

func (h *testHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *testHook) Fire(entry *logrus.Entry) error {
	h.entries = append(h.entries, entry)
	return nil
}
