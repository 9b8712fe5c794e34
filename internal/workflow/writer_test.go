package workflow

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maxkimambo/anaflow/internal/errors"
)

func TestDumpWritesRunnerFormat(t *testing.T) {
	w := New()
	require.NoError(t, w.Append(analysisTask("A")))

	path := filepath.Join(t.TempDir(), "nested", "workflow_analysis_test.json")
	require.NoError(t, Dump(context.Background(), w, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw["stages"], 1)

	stage := raw["stages"][0]
	keys := make([]string, 0, len(stage))
	for k := range stage {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"name", "cwd", "labels", "cpu", "mem", "needs", "cmd"}, keys)
	assert.Equal(t, []interface{}{}, stage["needs"])
	assert.Equal(t, "2000", stage["mem"])

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, w.Tasks(), back.Tasks())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the workflow is left in the output directory")
	assert.Equal(t, "workflow_analysis_test.json", entries[0].Name())
}

func TestDumpRefusesInvalidWorkflow(t *testing.T) {
	w := New()
	require.NoError(t, w.Append(analysisTask("A", "missing")))

	path := filepath.Join(t.TempDir(), "wf.json")
	err := Dump(context.Background(), w, path)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no partial workflow may be written")

	assert.NoError(t, Dump(context.Background(), w, path, "missing"))
}

func TestDumpHonoursLock(t *testing.T) {
	w := New()
	require.NoError(t, w.Append(analysisTask("A")))
	path := filepath.Join(t.TempDir(), "wf.json")

	lockFile, err := LockPath(path)
	require.NoError(t, err)
	assert.NotEqual(t, filepath.Dir(path), filepath.Dir(lockFile))

	held := flock.New(lockFile)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err = Dump(ctx, w, path)
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.ErrorCategoryIO))
}
