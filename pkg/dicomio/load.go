package dicomio

import (
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"acrqa/internal/models"
)

// LoadDatasets decodes each path into a models.Dataset, preserving input
// order. Files that fail to decode or carry no PixelData element are
// skipped; a dataset whose pixel frame cannot be decoded natively is kept
// with a nil pixel plane so its tags remain usable.
func LoadDatasets(paths []string) []*models.Dataset {
	var datasets []*models.Dataset
	for _, path := range paths {
		ds, err := loadDataset(path)
		if err != nil {
			continue
		}
		datasets = append(datasets, ds)
	}
	return datasets
}

// loadDataset performs a full decode of one DICOM file. QA needs image
// content, so files without a PixelData element are rejected here.
func loadDataset(path string) (*models.Dataset, error) {
	parsed, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, err
	}

	pixelElem, err := parsed.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, err
	}

	ds := &models.Dataset{
		Path:           path,
		Rows:           elementInt(&parsed, tag.Rows),
		Columns:        elementInt(&parsed, tag.Columns),
		SliceThickness: elementFloat(&parsed, tag.SliceThickness),
		Modality:       elementString(&parsed, tag.Modality),
		Pixels:         decodeFirstFrame(pixelElem),
	}

	if spacing := elementFloats(&parsed, tag.PixelSpacing); len(spacing) >= 2 {
		ds.PixelSpacing = [2]float64{spacing[0], spacing[1]}
	}

	return ds, nil
}

// decodeFirstFrame converts the first native image frame into a float
// pixel plane. Encapsulated (compressed) pixel data and decode failures
// yield nil.
func decodeFirstFrame(elem *dicom.Element) [][]float64 {
	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || info.IsEncapsulated || len(info.Frames) == 0 {
		return nil
	}

	native, err := info.Frames[0].GetNativeFrame()
	if err != nil {
		return nil
	}
	rows, cols := native.Rows(), native.Cols()
	if rows <= 0 || cols <= 0 {
		return nil
	}

	pixels := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		row := make([]float64, cols)
		for c := 0; c < cols; c++ {
			sample, err := native.GetPixel(c, r)
			if err != nil || len(sample) == 0 {
				return nil
			}
			row[c] = float64(sample[0])
		}
		pixels[r] = row
	}
	return pixels
}

// elementString returns the first string value of a tag, trimmed of
// padding, or "" when the tag is absent or non-textual.
func elementString(ds *dicom.Dataset, t tag.Tag) string {
	elem, err := ds.FindElementByTag(t)
	if err != nil {
		return ""
	}
	if strs, ok := elem.Value.GetValue().([]string); ok && len(strs) > 0 {
		return strings.TrimSpace(strs[0])
	}
	return ""
}

// elementInt coerces the first value of a tag to an int, or 0 when the
// tag is absent or non-numeric.
func elementInt(ds *dicom.Dataset, t tag.Tag) int {
	elem, err := ds.FindElementByTag(t)
	if err != nil {
		return 0
	}
	switch v := elem.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0]
		}
	case []string:
		if len(v) > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(v[0])); err == nil {
				return n
			}
		}
	}
	return 0
}

// elementFloat coerces the first value of a tag to a float64, or 0 when
// the tag is absent or non-numeric.
func elementFloat(ds *dicom.Dataset, t tag.Tag) float64 {
	if v := elementFloats(ds, t); len(v) > 0 {
		return v[0]
	}
	return 0
}

// elementFloats coerces all values of a tag to float64s. Decimal-string
// tags (DS) arrive as strings and are parsed individually; unparseable
// values are dropped.
func elementFloats(ds *dicom.Dataset, t tag.Tag) []float64 {
	elem, err := ds.FindElementByTag(t)
	if err != nil {
		return nil
	}
	switch v := elem.Value.GetValue().(type) {
	case []float64:
		return v
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out
	case []string:
		var out []float64
		for _, s := range v {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				continue
			}
			out = append(out, f)
		}
		return out
	}
	return nil
}
