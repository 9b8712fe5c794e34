package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maxkimambo/anaflow/internal/errors"
)

const testCatalog = `{
  "analyses": [
    {
      "name": "EventSelectionQA",
      "enabled": true,
      "tasks": ["o2-analysis-timestamp", "o2-analysis-event-selection-qa"],
      "config": {"mc": "json://${O2DPG_ROOT}/MC/config/analysis_testing/json/default/pp/analysis-testing-mc.json", "data": "a.json"},
      "expected_output": ["AnalysisResults.root"]
    },
    {
      "name": "MCHistograms",
      "enabled": true,
      "tasks": ["o2-analysistutorial-mc-histograms"],
      "config": {"mc": "mc.json"},
      "expected_output": []
    },
    {
      "name": "PWGMMMFT",
      "enabled": false,
      "tasks": ["o2-analysis-mm-dndeta-mft"],
      "config": {"mc": "mc.json", "data": "data.json"},
      "expected_output": ["AnalysisResults.root"]
    }
  ]
}`

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func names(ds []Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Name)
	}
	return out
}

func TestLoad(t *testing.T) {
	c := New(writeCatalog(t, "analyses_config.json", testCatalog))

	tests := []struct {
		name            string
		only            []string
		includeDisabled bool
		want            []string
	}{
		{"enabled only", nil, false, []string{"EventSelectionQA", "MCHistograms"}},
		{"include disabled", nil, true, []string{"EventSelectionQA", "MCHistograms", "PWGMMMFT"}},
		{"filter", []string{"MCHistograms"}, false, []string{"MCHistograms"}},
		{"filter on disabled", []string{"PWGMMMFT"}, false, []string{}},
		{"filter on disabled included", []string{"PWGMMMFT", "Unknown"}, true, []string{"PWGMMMFT"}},
		{"filter keeps declaration order", []string{"MCHistograms", "EventSelectionQA"}, false, []string{"EventSelectionQA", "MCHistograms"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Load(tt.only, tt.includeDisabled)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	c := New(writeCatalog(t, "analyses_config.json", testCatalog))

	first, err := c.Load([]string{"EventSelectionQA", "PWGMMMFT"}, true)
	require.NoError(t, err)
	second, err := c.Load([]string{"EventSelectionQA", "PWGMMMFT"}, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// callers cannot corrupt later loads
	first[0].Tasks[0] = "mutated"
	third, err := c.Load([]string{"EventSelectionQA", "PWGMMMFT"}, true)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestDescriptorFields(t *testing.T) {
	c := New(writeCatalog(t, "analyses_config.json", testCatalog))
	d, ok, err := c.Get("EventSelectionQA")
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, d.Enabled)
	assert.Equal(t, []string{"o2-analysis-timestamp", "o2-analysis-event-selection-qa"}, d.Tasks)
	assert.Equal(t, []string{"AnalysisResults.root"}, d.ExpectedOutput)

	locator, ok := d.ConfigFor(VariantData)
	assert.True(t, ok)
	assert.Equal(t, "a.json", locator)

	mch, ok, err := c.Get("MCHistograms")
	require.NoError(t, err)
	require.True(t, ok)
	_, ok = mch.ConfigFor(VariantData)
	assert.False(t, ok)

	_, ok, err = c.Get("Nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadYAML(t *testing.T) {
	c := New(writeCatalog(t, "analyses.yaml", `
analyses:
  - name: EventTrackQA
    enabled: true
    tasks: [o2-analysis-timestamp, o2-analysis-qa-event-track]
    config:
      data: json://event-track.json
    expected_output: [AnalysisResults.root]
`))
	got, err := c.Load(nil, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "EventTrackQA", got[0].Name)
	assert.Equal(t, "json://event-track.json", got[0].Config[VariantData])
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"not json", "c.json", "{analyses: [", apperrors.CodeCatalogParse},
		{"trailing data", "c.json", `{"analyses": [{"name": "A"}]} {"analyses": []}`, apperrors.CodeCatalogParse},
		{"trailing junk", "c.json", `{"analyses": [{"name": "A"}]}garbage`, apperrors.CodeCatalogParse},
		{"no analyses key", "c.json", `{"other": []}`, apperrors.CodeCatalogParse},
		{"missing name", "c.json", `{"analyses": [{"enabled": true}]}`, apperrors.CodeCatalogMalformed},
		{"duplicate name", "c.json", `{"analyses": [{"name": "A"}, {"name": "A"}]}`, apperrors.CodeCatalogMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(writeCatalog(t, tt.file, tt.content)).Load(nil, false)
			require.Error(t, err)
			var buildErr *apperrors.BuildError
			require.ErrorAs(t, err, &buildErr)
			assert.Equal(t, apperrors.ErrorCategoryCatalog, buildErr.Category)
			assert.Equal(t, tt.wantCode, buildErr.Code)
		})
	}

	_, err := New(filepath.Join(t.TempDir(), "missing.json")).Load(nil, false)
	var buildErr *apperrors.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, apperrors.CodeCatalogRead, buildErr.Code)
}

func TestVariantFor(t *testing.T) {
	assert.Equal(t, VariantMC, VariantFor(true))
	assert.Equal(t, VariantData, VariantFor(false))
}
