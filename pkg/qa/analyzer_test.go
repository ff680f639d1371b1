package qa

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalyzer_Defaults(t *testing.T) {
	a := NewAnalyzer(&Params{InputDir: "in", PlotDir: "plots"})
	assert.Equal(t, DefaultTitle, a.params.Title)
	assert.Equal(t, DefaultThresholds(), a.params.Thresholds)

	custom := Thresholds{SNRMin: 10, PIUMin: 80, GhostingMax: 0.1, SpacingTolerance: 0.05}
	a = NewAnalyzer(&Params{InputDir: "in", PlotDir: "plots", Title: "Weekly QA", Thresholds: custom})
	assert.Equal(t, "Weekly QA", a.params.Title)
	assert.Equal(t, custom, a.params.Thresholds)
}

func TestAnalyzer_MissingInputDir(t *testing.T) {
	a := NewAnalyzer(&Params{
		InputDir: filepath.Join(t.TempDir(), "does-not-exist"),
		PlotDir:  t.TempDir(),
	})
	_, err := a.Run()
	assert.Error(t, err)
}

func TestAnalyzer_InputPathIsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	a := NewAnalyzer(&Params{InputDir: path, PlotDir: dir})
	_, err := a.Run()
	assert.Error(t, err)
}

func TestAnalyzer_NoUsableInputYieldsErrorReport(t *testing.T) {
	inputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "notes.txt"), []byte("not dicom"), 0644))

	a := NewAnalyzer(&Params{InputDir: inputDir, PlotDir: t.TempDir()})
	rep, err := a.Run()
	require.NoError(t, err, "empty results are a report condition, not an error")
	assert.Equal(t, "error", rep.Status)
	assert.Equal(t, DefaultTitle, rep.Title)
	assert.Empty(t, rep.Sections)
}
