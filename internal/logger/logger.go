// Package logger splits output between user-facing progress lines on stdout
// and operational diagnostics on stderr. Both go through one logrus logger
// whose entries are routed by a hook on the log_type field.
package logger

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

type audience string

const (
	audienceUser audience = "user"
	audienceOp   audience = "op"

	fieldAudience = "log_type"
	fieldMarker   = "emoji"
)

var base = newBase()

var (
	User = &UserLogger{} // progress for the person running the generator
	Op   = &OpLogger{}   // diagnostics
)

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.InfoLevel)
	l.AddHook(newRouter(os.Stdout, os.Stderr, false, false))
	return l
}

// UserLogger writes short, marker-prefixed lines
type UserLogger struct{}

func (UserLogger) entry(marker string) *logrus.Entry {
	fields := logrus.Fields{fieldAudience: string(audienceUser)}
	if marker != "" {
		fields[fieldMarker] = marker
	}
	return base.WithFields(fields)
}

func (u UserLogger) Infof(format string, args ...interface{}) {
	u.entry("").Infof(format, args...)
}

func (u UserLogger) Warn(msg string) {
	u.entry("⚠️").Warn(msg)
}

func (u UserLogger) Warnf(format string, args ...interface{}) {
	u.entry("⚠️").Warnf(format, args...)
}

func (u UserLogger) Starting(msg string) {
	u.entry("🚀").Info(msg)
}

func (u UserLogger) Successf(format string, args ...interface{}) {
	u.entry("✅").Infof(format, args...)
}

// Skipf reports an analysis or task that was left out of the workflow.
func (u UserLogger) Skipf(format string, args ...interface{}) {
	u.entry("⏭️").Infof(format, args...)
}

// Addedf reports a task appended to the workflow.
func (u UserLogger) Addedf(format string, args ...interface{}) {
	u.entry("➕").Infof(format, args...)
}

// OpLogger writes diagnostics with structured fields
type OpLogger struct{}

func (o OpLogger) Warnf(format string, args ...interface{}) {
	o.WithFields(nil).Warnf(format, args...)
}

func (o OpLogger) Debug(msg string) {
	o.WithFields(nil).Debug(msg)
}

func (o OpLogger) Debugf(format string, args ...interface{}) {
	o.WithFields(nil).Debugf(format, args...)
}

// WithFields returns an operational entry carrying fields
func (OpLogger) WithFields(fields map[string]interface{}) *logrus.Entry {
	data := logrus.Fields{fieldAudience: string(audienceOp)}
	for k, v := range fields {
		data[k] = v
	}
	return base.WithFields(data)
}

// Level returns the active level
func Level() logrus.Level {
	return base.GetLevel()
}

// Setup configures level, format and routing of the shared logger.
// LOG_MODE (quiet|verbose|debug) and LOG_FORMAT (json|text) override the flags.
func Setup(verbose bool, jsonLogs bool, quiet bool) {
	SetupWithWriters(verbose, jsonLogs, quiet, os.Stdout, os.Stderr)
}

// SetupWithWriters is Setup with explicit user and operational outputs.
func SetupWithWriters(verbose bool, jsonLogs bool, quiet bool, userOut, opOut io.Writer) {
	switch os.Getenv("LOG_MODE") {
	case "quiet":
		quiet, verbose = true, false
	case "verbose", "debug":
		quiet, verbose = false, true
	}
	switch os.Getenv("LOG_FORMAT") {
	case "json":
		jsonLogs = true
	case "text":
		jsonLogs = false
	}

	level := logrus.InfoLevel
	switch {
	case quiet:
		level = logrus.ErrorLevel
	case verbose:
		level = logrus.DebugLevel
	}

	base.ReplaceHooks(make(logrus.LevelHooks))
	base.SetLevel(level)
	base.AddHook(newRouter(userOut, opOut, verbose, jsonLogs))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
