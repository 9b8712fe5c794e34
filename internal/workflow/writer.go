package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	apperrors "github.com/maxkimambo/anaflow/internal/errors"
	"github.com/maxkimambo/anaflow/internal/logger"
)

const lockRetryDelay = 100 * time.Millisecond

// file is the on-disk shape read by the task runner
type file struct {
	Stages []Task `json:"stages"`
}

// Dump validates w and writes it to path. The write goes through a temporary
// file in the same directory and holds the lock of path for its duration.
func Dump(ctx context.Context, w *Workflow, path string, external ...string) error {
	if err := w.Validate(external...); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file{Stages: w.Tasks()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return writeError(path, err)
	}

	lockFile, err := LockPath(path)
	if err != nil {
		return writeError(path, err)
	}
	lock := flock.New(lockFile)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		if err == nil {
			err = fmt.Errorf("lock not acquired")
		}
		return apperrors.NewIOError(apperrors.CodeIOLock,
			fmt.Sprintf("Cannot lock workflow file '%s'", path),
			"Workflow write").
			WithContext("lock", lock.Path()).
			WithOriginalError(err).
			WithTroubleshooting("Another generator may be writing the same output; wait or choose another --output")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Op.Warnf("Failed to release %s: %v", lock.Path(), err)
		}
	}()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return writeError(path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return writeError(path, err)
	}
	if err := tmp.Close(); err != nil {
		return writeError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return writeError(path, err)
	}

	logger.Op.WithFields(map[string]interface{}{
		"path":  path,
		"tasks": w.Len(),
	}).Debug("Workflow written")
	return nil
}

// LockPath returns the lock file guarding writes to path. It lives in the OS
// temp directory so nothing is left beside the workflow.
func LockPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "anaflow-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// Read loads a workflow file written by Dump
func Read(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", path, err)
	}
	w := New()
	for _, t := range f.Stages {
		if err := w.Append(t); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func writeError(path string, err error) error {
	return apperrors.NewIOError(apperrors.CodeIOWrite,
		fmt.Sprintf("Cannot write workflow file '%s'", path),
		"Workflow write").
		WithContext("path", path).
		WithOriginalError(err)
}
