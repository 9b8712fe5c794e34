package logger

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// router writes user entries and operational entries to separate outputs,
// each with its own formatter.
type router struct {
	userOut, opOut io.Writer
	userFmt, opFmt logrus.Formatter
}

func newRouter(userOut, opOut io.Writer, verbose, jsonLogs bool) *router {
	r := &router{
		userOut: userOut,
		opOut:   opOut,
		userFmt: &CLIFormatter{DisableTimestamp: true, DisableLevel: true},
		opFmt:   &CLIFormatter{DisableTimestamp: true, DisableColors: !isTerminal(opOut)},
	}
	switch {
	case jsonLogs:
		r.userFmt = &logrus.JSONFormatter{}
		r.opFmt = &logrus.JSONFormatter{}
	case verbose:
		r.opFmt = &logrus.TextFormatter{FullTimestamp: true, ForceColors: isTerminal(opOut)}
	}
	return r
}

func (r *router) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (r *router) Fire(entry *logrus.Entry) error {
	formatter, out := r.opFmt, r.opOut
	if entry.Data[fieldAudience] == string(audienceUser) {
		formatter, out = r.userFmt, r.userOut
		if marker, _ := entry.Data[fieldMarker].(string); marker != "" {
			// format a copy so other hooks see the original message
			decorated := *entry
			decorated.Message = marker + " " + entry.Message
			entry = &decorated
		}
	}

	line, err := formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = out.Write(line)
	return err
}

var levelColors = map[logrus.Level]string{
	logrus.ErrorLevel: "\033[31m",
	logrus.WarnLevel:  "\033[33m",
	logrus.InfoLevel:  "\033[36m",
	logrus.DebugLevel: "\033[37m",
}

// CLIFormatter prints "[time] LEVEL: message key=value ..." with the
// routing fields left out.
type CLIFormatter struct {
	DisableTimestamp bool
	DisableLevel     bool
	DisableColors    bool
}

func (f *CLIFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05 "))
	}
	if !f.DisableLevel {
		level := strings.ToUpper(entry.Level.String())
		if color, ok := levelColors[entry.Level]; ok && !f.DisableColors {
			level = color + level + "\033[0m"
		}
		b.WriteString(level + ": ")
	}
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != fieldAudience && k != fieldMarker {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
