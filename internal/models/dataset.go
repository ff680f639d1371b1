package models

// Dataset is the decoded representation of one DICOM file: the handful of
// tags the QA pipeline cares about plus an optional pixel plane.
type Dataset struct {
	// Path is the filesystem path the dataset was decoded from.
	Path string

	// Rows and Columns are the image dimensions from the DICOM tags.
	// Zero means the tag was absent.
	Rows    int
	Columns int

	// SliceThickness is the physical slice thickness in mm.
	// Zero means the tag was absent.
	SliceThickness float64

	// PixelSpacing holds the physical pixel size in mm as
	// {row spacing, column spacing}. Zeros mean the tag was absent.
	PixelSpacing [2]float64

	// Modality is the DICOM modality code (e.g. "MR").
	Modality string

	// Pixels is the first image frame as float samples in row-major
	// [row][column] order, or nil when no frame could be decoded.
	// Datasets keep their tag values even when pixel decoding fails,
	// so tag-only metrics can still fall back to them.
	Pixels [][]float64
}

// HasPixels reports whether a pixel plane was decoded for this dataset.
func (d *Dataset) HasPixels() bool {
	return len(d.Pixels) > 0 && len(d.Pixels[0]) > 0
}

// PixelShape returns the dimensions of the decoded pixel plane,
// or (0, 0) when there is none.
func (d *Dataset) PixelShape() (rows, cols int) {
	if !d.HasPixels() {
		return 0, 0
	}
	return len(d.Pixels), len(d.Pixels[0])
}

// ROI is a rectangular region of interest in pixel-array coordinates.
// Bounds are half-open: rows R0 <= r < R1, columns C0 <= c < C1.
type ROI struct {
	R0, R1 int
	C0, C1 int
}

// Clip clamps the region to an array of the given dimensions.
func (r ROI) Clip(rows, cols int) ROI {
	return ROI{
		R0: clamp(r.R0, 0, rows),
		R1: clamp(r.R1, 0, rows),
		C0: clamp(r.C0, 0, cols),
		C1: clamp(r.C1, 0, cols),
	}
}

// Extract copies the region's samples out of a pixel plane as a flat
// slice. The region is clipped to the plane first; an empty (or fully
// clipped) region yields an empty slice.
func (r ROI) Extract(pixels [][]float64) []float64 {
	if len(pixels) == 0 {
		return nil
	}
	c := r.Clip(len(pixels), len(pixels[0]))
	if c.R1 <= c.R0 || c.C1 <= c.C0 {
		return nil
	}
	out := make([]float64, 0, (c.R1-c.R0)*(c.C1-c.C0))
	for row := c.R0; row < c.R1; row++ {
		out = append(out, pixels[row][c.C0:c.C1]...)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
