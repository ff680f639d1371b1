// Package report defines the QA report value returned by the analysis
// pipeline. The report is a plain immutable value; serializing, storing
// and serving it is the caller's job.
package report

import "strings"

// Status is the verdict of a single metric row.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusNA   Status = "na"
)

// NormalizeStatus folds any status string onto the three known verdicts,
// case-insensitively. Unrecognized or empty values become "na".
func NormalizeStatus(s string) Status {
	switch norm := Status(strings.ToLower(s)); norm {
	case StatusPass, StatusFail, StatusNA:
		return norm
	}
	return StatusNA
}

// Placeholder is rendered in place of an absent metric value so report
// tables stay visually aligned regardless of renderer.
const Placeholder = "—"

// MetricRow is one line of the QA results table.
type MetricRow struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Expected string `json:"expected"`
	Status   Status `json:"status"`
	Notes    string `json:"notes"`
}

// NewMetricRow builds a metric row, substituting the placeholder for an
// empty value and folding the status onto the known verdicts.
func NewMetricRow(label, value, expected, status, notes string) MetricRow {
	if value == "" {
		value = Placeholder
	}
	return MetricRow{
		Label:    label,
		Value:    value,
		Expected: expected,
		Status:   NormalizeStatus(status),
		Notes:    notes,
	}
}

// KVRow is one line of a key/value summary table.
type KVRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SectionKind discriminates the two section shapes a renderer can receive.
type SectionKind string

const (
	SectionKV      SectionKind = "kv"
	SectionMetrics SectionKind = "metrics"
)

// Section is a tagged variant: exactly one of KV or Metrics is populated,
// according to Kind. Constructing sections through NewKVSection and
// NewMetricsSection keeps the shape and the tag consistent.
type Section struct {
	Name    string      `json:"name"`
	Kind    SectionKind `json:"kind"`
	KV      []KVRow     `json:"kv,omitempty"`
	Metrics []MetricRow `json:"metrics,omitempty"`
}

// NewKVSection builds a key/value table section.
func NewKVSection(name string, rows []KVRow) Section {
	return Section{Name: name, Kind: SectionKV, KV: rows}
}

// NewMetricsSection builds a metrics table section.
func NewMetricsSection(name string, rows []MetricRow) Section {
	return Section{Name: name, Kind: SectionMetrics, Metrics: rows}
}

// Plot references one generated plot file by title and relative URL.
type Plot struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Report is the pipeline's sole output value.
type Report struct {
	Title    string    `json:"title"`
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Plots    []Plot    `json:"plots"`
	Sections []Section `json:"sections"`
}

// Assemble combines the input summary, the QA result rows and the plot
// references into a status-"ok" report. Pure aggregation.
func Assemble(title string, summary []KVRow, results []MetricRow, plots []Plot) *Report {
	return &Report{
		Title:   title,
		Status:  "ok",
		Message: "Report generated.",
		Plots:   plots,
		Sections: []Section{
			NewKVSection("Input Summary", summary),
			NewMetricsSection("QA Results", results),
		},
	}
}

// ErrorReport builds the empty-input failure report: status "error",
// no sections, no plots.
func ErrorReport(title, message string) *Report {
	return &Report{
		Title:    title,
		Status:   "error",
		Message:  message,
		Plots:    []Plot{},
		Sections: []Section{},
	}
}
