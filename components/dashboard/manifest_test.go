package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
version: "1"
name: sleep-extras
widgets:
  - definition:
      code: restless_legs
      name: Restless Legs
      endpoint: getdata13
      span: 2
      chart:
        kind: bar
        labels: [Never, Sometimes, Often]
    tags: [sleep]
  - definition:
      code: smoking
      name: Smoking Habits
      endpoint: getdata7
      fill: zeros
      chart:
        kind: pie
        title: Do you smoke?
        labels: [Yes, No]
`

func TestDecodeManifestAppliesDefaults(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 2)

	def := doc.Widgets[0].Definition
	assert.Equal(t, SourceSurvey, def.Source)
	assert.Equal(t, Demographics, def.Categories)
	assert.Equal(t, FillEmpty, def.Fill)
	assert.Equal(t, "Restless Legs", def.Chart.Title)
	assert.Equal(t, []string{"sleep"}, doc.Widgets[0].Tags)
	assert.Equal(t, "Do you smoke?", doc.Widgets[1].Definition.Chart.Title)
}

func TestLoadManifestFileReplacesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widgets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o600))

	reg := NewRegistry()
	doc, err := reg.LoadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	defs := reg.Definitions()
	require.Len(t, defs, 18)
	assert.Equal(t, "restless_legs", defs[17].Code)
	smoking, ok := reg.Definition("smoking")
	require.True(t, ok)
	assert.Equal(t, FillZeros, smoking.Fill)
	assert.Equal(t, "smoking", defs[11].Code, "replaced widgets keep their grid slot")
}

func TestDecodeManifestRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"version":       "version: \"2\"\nwidgets: []\n",
		"unknown field": "version: \"1\"\nwidgets:\n  - definition: {code: a, name: A, endpoint: x, chart: {kind: bar}}\n    owner: me\n",
		"missing code":  "widgets:\n  - definition: {name: A, endpoint: x, chart: {kind: bar}}\n",
		"duplicate":     "widgets:\n  - definition: {code: a, name: A, endpoint: x, chart: {kind: bar}}\n  - definition: {code: a, name: B, endpoint: y, chart: {kind: bar}}\n",
		"bad kind":      "widgets:\n  - definition: {code: a, name: A, endpoint: x, chart: {kind: radar}}\n",
		"bad endpoint":  "widgets:\n  - definition: {code: a, name: A, endpoint: \"../etc\", chart: {kind: bar}}\n",
		"counter kind":  "widgets:\n  - definition: {code: a, name: A, endpoint: x, chart: {kind: counter}}\n",
		"span":          "widgets:\n  - definition: {code: a, name: A, endpoint: x, span: 9, chart: {kind: bar}}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeManifest(strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}

func TestReadManifestMissingFile(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
