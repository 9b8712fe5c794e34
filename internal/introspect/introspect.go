// Package introspect inspects AO2D input files for the table layout they
// were written with.
package introspect

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/maxkimambo/anaflow/internal/config"
	"github.com/maxkimambo/anaflow/internal/logger"
)

var commandContext = exec.CommandContext

const (
	dataFramePrefix    = "DF_"
	currentCollisionTb = "O2collision_001"
)

// Introspector reports whether an input file predates the current collision table
type Introspector interface {
	HasLegacyCollisions(ctx context.Context, path string) (bool, error)
}

// Func adapts a plain function to an Introspector.
type Func func(ctx context.Context, path string) (bool, error)

// HasLegacyCollisions calls f
func (f Func) HasLegacyCollisions(ctx context.Context, path string) (bool, error) {
	return f(ctx, path)
}

// CommandIntrospector lists the keys of a ROOT file with an external tool
// (rootls by default) and looks into the first time-frame directory.
type CommandIntrospector struct {
	binary  string
	args    []string
	timeout time.Duration
}

// NewCommandIntrospector builds an introspector from the introspection settings
func NewCommandIntrospector(cfg config.IntrospectionConfig) *CommandIntrospector {
	fields := strings.Fields(cfg.Command)
	ci := &CommandIntrospector{timeout: cfg.Timeout()}
	if len(fields) > 0 {
		ci.binary = fields[0]
		ci.args = fields[1:]
	}
	return ci
}

// HasLegacyCollisions runs the listing command on path. The file is legacy
// when its first DF_ directory has no O2collision_001 key.
func (c *CommandIntrospector) HasLegacyCollisions(ctx context.Context, path string) (bool, error) {
	if c.binary == "" {
		return false, fmt.Errorf("no introspection command configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.args...), path)
	logger.Op.WithFields(map[string]interface{}{
		"command": c.binary,
		"args":    strings.Join(args, " "),
	}).Debug("Listing input file keys")

	var stderr bytes.Buffer
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return false, fmt.Errorf("%s %s: %w: %s", c.binary, path, err, msg)
		}
		return false, fmt.Errorf("%s %s: %w", c.binary, path, err)
	}

	dir, keys := FirstDataFrame(out)
	if dir == "" {
		logger.Op.Debugf("No %s directory found in %s", dataFramePrefix, path)
		return false, nil
	}
	for _, key := range keys {
		if strings.Contains(key, currentCollisionTb) {
			return false, nil
		}
	}
	return true, nil
}

// FirstDataFrame parses a recursive key listing and returns the first DF_
// directory with the keys below it. Both "DF_1/O2bc" paths and indented
// children are understood.
func FirstDataFrame(listing []byte) (string, []string) {
	var (
		dir  string
		keys []string
	)
	scanner := bufio.NewScanner(bytes.NewReader(listing))
	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		// rootls -l style lines carry the key name first
		name := strings.Fields(line)[0]
		indented := raw != strings.TrimLeft(raw, " \t")

		if head, rest, ok := strings.Cut(name, "/"); ok {
			if dir == "" && strings.HasPrefix(head, dataFramePrefix) {
				dir = head
			}
			if head != dir {
				if dir != "" {
					break
				}
				continue
			}
			keys = append(keys, rest)
			continue
		}

		if !indented {
			if dir != "" {
				break
			}
			if strings.HasPrefix(name, dataFramePrefix) {
				dir = name
			}
			continue
		}
		if dir != "" {
			keys = append(keys, name)
		}
	}
	return dir, keys
}
