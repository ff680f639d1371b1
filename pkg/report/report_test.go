package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"pass", StatusPass},
		{"fail", StatusFail},
		{"na", StatusNA},
		{"PASS", StatusPass},
		{"Fail", StatusFail},
		{"NA", StatusNA},
		{"", StatusNA},
		{"warning", StatusNA},
		{"unknown-garbage", StatusNA},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeStatus(tt.in), "input %q", tt.in)
	}
}

func TestNewMetricRow(t *testing.T) {
	row := NewMetricRow("SNR", "42.00", ">= 20", "pass", "")
	assert.Equal(t, "42.00", row.Value)
	assert.Equal(t, StatusPass, row.Status)

	absent := NewMetricRow("Ghosting", "", "<= 0.025", "bogus", "note")
	assert.Equal(t, Placeholder, absent.Value)
	assert.Equal(t, StatusNA, absent.Status)
	assert.Equal(t, "note", absent.Notes)
}

func TestSectionConstructors(t *testing.T) {
	kv := NewKVSection("Input Summary", []KVRow{{Label: "Image shape", Value: "64 x 64"}})
	assert.Equal(t, SectionKV, kv.Kind)
	assert.Len(t, kv.KV, 1)
	assert.Empty(t, kv.Metrics)

	m := NewMetricsSection("QA Results", []MetricRow{NewMetricRow("SNR", "", "", "na", "")})
	assert.Equal(t, SectionMetrics, m.Kind)
	assert.Len(t, m.Metrics, 1)
	assert.Empty(t, m.KV)
}

func TestAssemble(t *testing.T) {
	r := Assemble("ACR QA Report",
		[]KVRow{{Label: "DICOM files detected", Value: "3"}},
		[]MetricRow{NewMetricRow("SNR", "25.00", ">= 20", "pass", "")},
		[]Plot{{Title: "MTF / ramp analysis", URL: "/plots/ramp_ab.svg"}},
	)

	assert.Equal(t, "ok", r.Status)
	require.Len(t, r.Sections, 2)
	assert.Equal(t, "Input Summary", r.Sections[0].Name)
	assert.Equal(t, SectionKV, r.Sections[0].Kind)
	assert.Equal(t, "QA Results", r.Sections[1].Name)
	assert.Equal(t, SectionMetrics, r.Sections[1].Kind)
	assert.Len(t, r.Plots, 1)
}

func TestErrorReport(t *testing.T) {
	r := ErrorReport("ACR QA Report", "No DICOM datasets provided.")
	assert.Equal(t, "error", r.Status)
	assert.Empty(t, r.Sections)
	assert.Empty(t, r.Plots)
}

func TestReportJSONShape(t *testing.T) {
	r := Assemble("ACR QA Report", nil,
		[]MetricRow{NewMetricRow("Ghosting", "", "<= 0.025", "na", "")}, nil)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ok", decoded["status"])
	assert.Contains(t, string(data), `"kind":"metrics"`)
	assert.Contains(t, string(data), Placeholder)
}
