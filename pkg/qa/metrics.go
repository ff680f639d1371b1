// Package qa computes phantom image-quality metrics from loaded DICOM
// datasets and assembles the QA report.
//
// The metrics are intentionally simple ROI statistics plus DICOM tag
// checks; full ACR algorithms (high-contrast resolution, low-contrast
// detectability) are reported as not-calculated rows until implemented.
package qa

import (
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"acrqa/internal/models"
	"acrqa/pkg/report"
	"acrqa/pkg/svgplot"
)

// epsilon keeps divisions well-defined on perfectly uniform synthetic
// images (zero variance) and empty signal (zero mean).
const epsilon = 1e-6

// Thresholds are the pass/fail limits applied to the computed metrics.
type Thresholds struct {
	// SNRMin is the minimum acceptable signal-to-noise ratio.
	SNRMin float64

	// PIUMin is the minimum acceptable percent integral uniformity.
	PIUMin float64

	// GhostingMax is the maximum acceptable ghosting ratio.
	GhostingMax float64

	// SpacingTolerance is the maximum relative difference between row
	// and column pixel spacing, as a fraction of the larger value.
	SpacingTolerance float64
}

// DefaultThresholds returns the standard QA limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SNRMin:           20,
		PIUMin:           85,
		GhostingMax:      0.025,
		SpacingTolerance: 0.02,
	}
}

// BuildReport computes the QA metrics over an ordered dataset sequence
// and assembles the report. detected is the number of files the detector
// classified as DICOM (at least the number of loaded datasets). Plot
// files are written under plotDir with unique names per invocation.
//
// An empty dataset sequence yields a status-"error" report; every other
// insufficiency (missing tag, undecodable pixels) degrades the affected
// rows to "na" and still yields a complete report.
func BuildReport(title string, datasets []*models.Dataset, detected int, plotDir string, th Thresholds) *report.Report {
	if len(datasets) == 0 {
		return report.ErrorReport(title, "No DICOM datasets provided.")
	}
	if detected < len(datasets) {
		detected = len(datasets)
	}

	// Image dimensions always come from the first dataset in sequence.
	rows := datasets[0].Rows
	cols := datasets[0].Columns

	// The representative dataset is the first one with a decodable
	// pixel plane; tag-only fields fall back to it once found, so
	// geometry and thickness rows stay populated even when earlier
	// slices are corrupt.
	rep := datasets[0]
	var pixels [][]float64
	for _, ds := range datasets {
		if ds.HasPixels() {
			pixels = ds.Pixels
			rep = ds
			break
		}
	}

	// Slice thickness: tag presence alone is the verdict.
	thicknessValue := ""
	thicknessStatus := "na"
	if rep.SliceThickness != 0 {
		thicknessValue = fmt.Sprintf("%.2f mm", rep.SliceThickness)
		thicknessStatus = "pass"
	}

	// Geometric accuracy: field of view from pixel spacing and image
	// dimensions, row vs column spacing compared within tolerance.
	spacingRow := rep.PixelSpacing[0]
	spacingCol := rep.PixelSpacing[1]
	geomValue := ""
	geomStatus := "na"
	if spacingCol > 0 && spacingRow > 0 && rows > 0 && cols > 0 {
		fovX := spacingCol * float64(cols)
		fovY := spacingRow * float64(rows)
		geomValue = fmt.Sprintf("FOV ~ %.1f mm x %.1f mm (pixel %.3f x %.3f mm)",
			fovX, fovY, spacingCol, spacingRow)
		if math.Abs(spacingCol-spacingRow) <= math.Max(spacingCol, spacingRow)*th.SpacingTolerance {
			geomStatus = "pass"
		} else {
			geomStatus = "fail"
		}
	}

	// ROI statistics require a decodable pixel plane.
	snrValue, snrStatus := "", "na"
	piuValue, piuStatus := "", "na"
	ghostValue, ghostStatus := "", "na"
	if pixels != nil && rows > 0 && cols > 0 {
		center := models.ROI{
			R0: int(float64(rows) * 0.40), R1: int(float64(rows) * 0.60),
			C0: int(float64(cols) * 0.40), C1: int(float64(cols) * 0.60),
		}.Extract(pixels)

		if len(center) > 0 {
			centerMean := stat.Mean(center, nil)
			centerStd := stat.PopStdDev(center, nil) + epsilon

			snr := centerMean / centerStd
			snrValue = fmt.Sprintf("%.2f", snr)
			snrStatus = verdict(snr >= th.SNRMin)

			if piu, ok := integralUniformity(pixels, rows, cols); ok {
				piuValue = fmt.Sprintf("%.2f%%", piu)
				piuStatus = verdict(piu >= th.PIUMin)
			}

			corner := models.ROI{
				R0: 0, R1: int(float64(rows) * 0.10),
				C0: 0, C1: int(float64(cols) * 0.10),
			}.Extract(pixels)
			if len(corner) > 0 {
				ghost := stat.Mean(corner, nil) / (centerMean + epsilon)
				ghostValue = fmt.Sprintf("%.4f", ghost)
				ghostStatus = verdict(ghost <= th.GhostingMax)
			}
		}
	}

	plots := renderPlots(pixels, rows, cols, plotDir)

	mtfValue, mtfStatus := "", "na"
	if len(plots) > 0 {
		mtfValue = "Plot generated"
		mtfStatus = "pass"
	}

	results := []report.MetricRow{
		report.NewMetricRow("Slice thickness", thicknessValue, "DICOM tag", thicknessStatus, ""),
		report.NewMetricRow("Geometric accuracy", geomValue, "Pixel spacing check", geomStatus, ""),
		report.NewMetricRow("High-contrast resolution", "", "Not calculated", "na", "Algorithm can be added"),
		report.NewMetricRow("Low-contrast detectability", "", "Not calculated", "na", "Algorithm can be added"),
		report.NewMetricRow("Intensity uniformity (PIU)", piuValue, ">= 85%", piuStatus, ""),
		report.NewMetricRow("Ghosting", ghostValue, "<= 0.025", ghostStatus, ""),
		report.NewMetricRow("SNR", snrValue, ">= 20", snrStatus, ""),
		report.NewMetricRow("MTF / ramp analysis", mtfValue, "See plot", mtfStatus, ""),
	}

	summary := []report.KVRow{
		{Label: "DICOM files detected", Value: strconv.Itoa(detected)},
		{Label: "Slices read", Value: strconv.Itoa(len(datasets))},
		{Label: "Image shape", Value: fmt.Sprintf("%d x %d", rows, cols)},
	}

	return report.Assemble(title, summary, results, plots)
}

// integralUniformity computes the percent integral uniformity over four
// peripheral 15%-square ROIs at the diagonal quadrant positions.
func integralUniformity(pixels [][]float64, rows, cols int) (float64, bool) {
	quadrants := []models.ROI{
		{R0: int(float64(rows) * 0.20), R1: int(float64(rows) * 0.35), C0: int(float64(cols) * 0.20), C1: int(float64(cols) * 0.35)},
		{R0: int(float64(rows) * 0.20), R1: int(float64(rows) * 0.35), C0: int(float64(cols) * 0.65), C1: int(float64(cols) * 0.80)},
		{R0: int(float64(rows) * 0.65), R1: int(float64(rows) * 0.80), C0: int(float64(cols) * 0.20), C1: int(float64(cols) * 0.35)},
		{R0: int(float64(rows) * 0.65), R1: int(float64(rows) * 0.80), C0: int(float64(cols) * 0.65), C1: int(float64(cols) * 0.80)},
	}

	means := make([]float64, 0, len(quadrants))
	for _, roi := range quadrants {
		vals := roi.Extract(pixels)
		if len(vals) == 0 {
			return 0, false
		}
		means = append(means, stat.Mean(vals, nil))
	}

	maxMean, minMean := means[0], means[0]
	for _, m := range means[1:] {
		maxMean = math.Max(maxMean, m)
		minMean = math.Min(minMean, m)
	}

	return 100.0 * (1.0 - (maxMean-minMean)/(maxMean+minMean+epsilon)), true
}

// renderPlots writes the two diagnostic profile plots and returns their
// report references. Render failures drop the affected plot, never the
// report.
func renderPlots(pixels [][]float64, rows, cols int, plotDir string) []report.Plot {
	if pixels == nil || rows <= 0 || cols <= 0 {
		return nil
	}
	planeRows := len(pixels)
	planeCols := len(pixels[0])
	if planeRows == 0 || planeCols == 0 {
		return nil
	}
	if err := os.MkdirAll(plotDir, 0755); err != nil {
		return nil
	}

	var plots []report.Plot

	// Ramp-style plot: two horizontal profiles near the vertical center.
	topRow := clampIndex(int(float64(rows)*0.45), planeRows)
	bottomRow := clampIndex(int(float64(rows)*0.55), planeRows)
	x := indexSequence(planeCols)
	name := fmt.Sprintf("ramp_%s.svg", plotID())
	err := svgplot.WriteFile(filepath.Join(plotDir, name), "MTF / Ramp Analysis", x, []svgplot.Series{
		{Label: "Top Ramp", Y: pixels[topRow]},
		{Label: "Bottom Ramp", Y: pixels[bottomRow]},
	})
	if err == nil {
		plots = append(plots, report.Plot{Title: "MTF / ramp analysis", URL: "/plots/" + name})
	}

	// Slice thickness profile proxy: the center vertical line.
	centerCol := clampIndex(planeCols/2, planeCols)
	vertical := make([]float64, planeRows)
	for r := 0; r < planeRows; r++ {
		vertical[r] = pixels[r][centerCol]
	}
	name = fmt.Sprintf("slice_%s.svg", plotID())
	err = svgplot.WriteFile(filepath.Join(plotDir, name), "Slice Thickness Profile", indexSequence(planeRows), []svgplot.Series{
		{Label: "Center Line", Y: vertical},
	})
	if err == nil {
		plots = append(plots, report.Plot{Title: "Slice thickness", URL: "/plots/" + name})
	}

	return plots
}

// plotID returns a fresh random hex identifier. Plot names must be unique
// per run so concurrent report generations sharing a plot directory never
// overwrite each other.
func plotID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func indexSequence(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func verdict(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}
