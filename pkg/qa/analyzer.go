package qa

import (
	"fmt"
	"os"

	"acrqa/pkg/dicomio"
	"acrqa/pkg/report"
)

// Params holds the analysis pipeline configuration.
type Params struct {
	// InputDir is the working directory holding the extracted scan
	// files to analyze.
	InputDir string

	// PlotDir is where diagnostic plot files are written. Concurrent
	// runs may share it; plot names are unique per run.
	PlotDir string

	// Title is the report title. Empty selects the default.
	Title string

	// Thresholds are the pass/fail limits. A zero value selects
	// DefaultThresholds.
	Thresholds Thresholds
}

// DefaultTitle is used when Params.Title is empty.
const DefaultTitle = "ACR QA Report"

// Analyzer runs the QA pipeline over one working directory: detect DICOM
// files, load datasets, compute metrics, render plots, assemble the
// report. One Analyzer serves one invocation; it holds no shared state.
type Analyzer struct {
	params *Params
}

// NewAnalyzer creates an analyzer, filling in defaults for the title and
// thresholds.
func NewAnalyzer(params *Params) *Analyzer {
	if params.Title == "" {
		params.Title = DefaultTitle
	}
	if params.Thresholds == (Thresholds{}) {
		params.Thresholds = DefaultThresholds()
	}
	return &Analyzer{params: params}
}

// Run executes the pipeline and returns the report. Per-file detection
// and decode failures are absorbed; the only error case is an unusable
// input directory. A directory with no usable DICOM content yields a
// status-"error" report, not an error.
func (a *Analyzer) Run() (*report.Report, error) {
	info, err := os.Stat(a.params.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %v", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", a.params.InputDir)
	}

	paths := dicomio.FindDicomFiles(a.params.InputDir)
	datasets := dicomio.LoadDatasets(paths)

	return BuildReport(a.params.Title, datasets, len(paths), a.params.PlotDir, a.params.Thresholds), nil
}
