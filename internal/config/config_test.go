package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maxkimambo/anaflow/internal/errors"
)

func TestDefaults(t *testing.T) {
	t.Setenv("O2DPG_ROOT", "")
	t.Setenv("ANAFLOW_ROOT", "")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Resources.CPU)
	assert.Equal(t, "2000", cfg.Resources.Mem)
	assert.Equal(t, "--shm-segment-size 2000000000", cfg.DPL.ShmSegmentSize)
	assert.Equal(t, "o2-qc-upload-root-objects", cfg.QC.UploadCommand)
	assert.Equal(t, "ccdb-test.cern.ch:8080", cfg.QC.URL)
	assert.Empty(t, cfg.CatalogPath)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.ErrorCategoryConfiguration))
}

func TestRootFromEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Setenv("O2DPG_ROOT", root)

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, filepath.Join(root, "MC", "config", "analysis_testing", "json", "analyses_config.json"), cfg.CatalogPath)
	assert.Equal(t, filepath.Join(root, "MC", "analysis_testing", "post_processing"), cfg.PostProcessingDir)
	assert.NoError(t, cfg.Validate())
}

func TestSettingsFileAndEnvOverride(t *testing.T) {
	t.Setenv("O2DPG_ROOT", "")
	dir := t.TempDir()
	settings := filepath.Join(dir, "anaflow.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(`
catalog: /opt/catalog.json
resources:
  mem: "4000"
qc:
  url: ccdb.example.org:8080
`), 0o644))
	t.Setenv("ANAFLOW_QC_DETECTOR_CODE", "TST")

	v, err := New(settings)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/opt/catalog.json", cfg.CatalogPath)
	assert.Equal(t, "4000", cfg.Resources.Mem)
	assert.Equal(t, "ccdb.example.org:8080", cfg.QC.URL)
	assert.Equal(t, "TST", cfg.QC.DetectorCode)
	assert.Equal(t, "-b", cfg.DPL.ExtraArguments)
}

func TestMissingSettingsFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.ErrorCategoryConfiguration))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/o2dpg", filepath.Join(home, "o2dpg")},
		{"/abs/path/../x", "/abs/x"},
		{"rel/a.json", filepath.Join(cwd, "rel", "a.json")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
