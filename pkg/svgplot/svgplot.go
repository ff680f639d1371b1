// Package svgplot renders 2-D line plots as self-contained SVG documents.
//
// The output is deliberately dependency-free vector markup with a fixed
// root element (explicit width/height/viewBox) so plot files can be served
// as static assets and embedded by reference.
package svgplot

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Canvas geometry. Margins reserve room for the title, axis captions and
// tick-free guide grid.
const (
	canvasWidth  = 900
	canvasHeight = 420
	padLeft      = 70
	padRight     = 20
	padTop       = 45
	padBottom    = 55
)

// palette is cycled across series.
var palette = []string{"#2563eb", "#ef4444", "#10b981", "#a855f7"}

// Series is one labeled line of y-values sharing the plot's x-sequence.
type Series struct {
	Label string
	Y     []float64
}

// Render writes a line plot to w. Every series must have the same length
// as x, and at least one point and one series are required.
func Render(w io.Writer, title string, x []float64, series []Series) error {
	if len(x) == 0 {
		return fmt.Errorf("plot %q has no x samples", title)
	}
	if len(series) == 0 {
		return fmt.Errorf("plot %q has no series", title)
	}
	for _, s := range series {
		if len(s.Y) != len(x) {
			return fmt.Errorf("plot %q: series %q has %d samples, expected %d",
				title, s.Label, len(s.Y), len(x))
		}
	}

	plotW := float64(canvasWidth - padLeft - padRight)
	plotH := float64(canvasHeight - padTop - padBottom)

	xMin, xMax := minMax(x)
	yMin, yMax := minMax(series[0].Y)
	for _, s := range series[1:] {
		lo, hi := minMax(s.Y)
		if lo < yMin {
			yMin = lo
		}
		if hi > yMax {
			yMax = hi
		}
	}
	// Degenerate ranges are widened so the scale mapping never divides
	// by zero.
	if xMax == xMin {
		xMax = xMin + 1.0
	}
	if yMax == yMin {
		yMax = yMin + 1.0
	}

	sx := func(v float64) float64 {
		return padLeft + (v-xMin)/(xMax-xMin)*plotW
	}
	sy := func(v float64) float64 {
		return padTop + (1.0-(v-yMin)/(yMax-yMin))*plotH
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<svg xmlns='http://www.w3.org/2000/svg' width='%d' height='%d' viewBox='0 0 %d %d'>\n",
		canvasWidth, canvasHeight, canvasWidth, canvasHeight)
	fmt.Fprintf(&b, "<rect x='0' y='0' width='%d' height='%d' rx='16' fill='white' stroke='#e5e7eb' />\n",
		canvasWidth, canvasHeight)
	fmt.Fprintf(&b, "<text x='%d' y='28' font-family='Segoe UI, Arial' font-size='18' font-weight='600' fill='#111827'>%s</text>\n",
		padLeft, escape(title))

	// Guide grid: 6 horizontal and 6 vertical lines.
	for i := 0; i < 6; i++ {
		yy := float64(padTop) + float64(i)*(plotH/5)
		fmt.Fprintf(&b, "<line x1='%d' y1='%.2f' x2='%.2f' y2='%.2f' stroke='#f3f4f6' />\n",
			padLeft, yy, float64(padLeft)+plotW, yy)
	}
	for i := 0; i < 6; i++ {
		xx := float64(padLeft) + float64(i)*(plotW/5)
		fmt.Fprintf(&b, "<line x1='%.2f' y1='%d' x2='%.2f' y2='%.2f' stroke='#f3f4f6' />\n",
			xx, padTop, xx, float64(padTop)+plotH)
	}

	// Axes.
	fmt.Fprintf(&b, "<line x1='%d' y1='%d' x2='%d' y2='%.2f' stroke='#9ca3af' />\n",
		padLeft, padTop, padLeft, float64(padTop)+plotH)
	fmt.Fprintf(&b, "<line x1='%d' y1='%.2f' x2='%.2f' y2='%.2f' stroke='#9ca3af' />\n",
		padLeft, float64(padTop)+plotH, float64(padLeft)+plotW, float64(padTop)+plotH)

	// Series polylines plus legend entries.
	legendX := float64(padLeft) + plotW - 170
	legendY := 60.0
	for idx, s := range series {
		col := palette[idx%len(palette)]

		pts := make([]string, len(x))
		for i := range x {
			pts[i] = fmt.Sprintf("%.2f,%.2f", sx(x[i]), sy(s.Y[i]))
		}
		fmt.Fprintf(&b, "<polyline fill='none' stroke='%s' stroke-width='2.5' points='%s' />\n",
			col, strings.Join(pts, " "))

		ly := legendY + float64(idx)*20
		fmt.Fprintf(&b, "<line x1='%.2f' y1='%.2f' x2='%.2f' y2='%.2f' stroke='%s' stroke-width='3' />\n",
			legendX, ly-6, legendX+26, ly-6, col)
		fmt.Fprintf(&b, "<text x='%.2f' y='%.2f' font-family='Segoe UI, Arial' font-size='12' fill='#111827'>%s</text>\n",
			legendX+32, ly-2, escape(s.Label))
	}

	// Axis captions.
	fmt.Fprintf(&b, "<text x='%.2f' y='%d' text-anchor='middle' font-family='Segoe UI, Arial' font-size='12' fill='#374151'>Pixel Number</text>\n",
		float64(padLeft)+plotW/2, canvasHeight-18)
	fmt.Fprintf(&b, "<text x='18' y='%.2f' transform='rotate(-90 18 %.2f)' text-anchor='middle' font-family='Segoe UI, Arial' font-size='12' fill='#374151'>Pixel Value</text>\n",
		float64(padTop)+plotH/2, float64(padTop)+plotH/2)
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFile renders a line plot to the given path.
func WriteFile(path, title string, x []float64, series []Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file %s: %v", path, err)
	}
	if err := Render(f, title, x, series); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// escape makes text safe for embedding in SVG markup.
func escape(s string) string {
	return escaper.Replace(s)
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
