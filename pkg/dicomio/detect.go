// Package dicomio discovers and loads DICOM files from an extracted scan
// archive.
//
// Clinical MRI exports frequently omit both a recognizable file extension
// and the standard DICM preamble, so detection cannot rely on either alone.
// Files are classified with a two-stage strategy: a fast magic-header check
// first, then a bounded metadata scan for identifying tags.
package dicomio

import (
	"encoding/binary"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

const (
	// magicOffset is where the 4-byte DICM marker sits, after the
	// 128-byte preamble.
	magicOffset = 128

	// sniffLimit bounds how much of a file the metadata fallback reads.
	// Identifying tags sit in the leading elements of any real export.
	sniffLimit = 4096

	// maxSniffElements bounds the element walk so garbage input cannot
	// keep the scanner busy.
	maxSniffElements = 128
)

// identifyingTags are the only tags the metadata fallback collects,
// mirroring a metadata-restricted read.
var identifyingTags = map[tag.Tag]bool{
	tag.SOPClassUID:       true,
	tag.StudyInstanceUID:  true,
	tag.SeriesInstanceUID: true,
	tag.SOPInstanceUID:    true,
	tag.PatientID:         true,
	tag.Modality:          true,
}

// acceptedTags is the subset whose presence classifies a file as DICOM.
// PatientID alone is read but never sufficient.
var acceptedTags = []tag.Tag{
	tag.SOPClassUID,
	tag.StudyInstanceUID,
	tag.SeriesInstanceUID,
	tag.SOPInstanceUID,
	tag.Modality,
}

// Candidates walks the directory tree under root and yields every regular
// file path that could be a DICOM file, in walk order. Nested archives
// (".zip", case-insensitive) are skipped, as are unreadable subtrees.
// The sequence is restartable: ranging over it again re-walks the tree.
func Candidates(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable entries are skipped, never fatal.
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".zip") {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// FindDicomFiles returns the paths under root classified as DICOM,
// in walk order.
func FindDicomFiles(root string) []string {
	var paths []string
	for path := range Candidates(root) {
		if LooksLikeDicom(path) {
			paths = append(paths, path)
		}
	}
	return paths
}

// LooksLikeDicom classifies a single file. The magic-header check runs
// first and short-circuits; the metadata fallback covers exports without
// the DICM preamble. Read or parse failures classify as not-DICOM.
func LooksLikeDicom(path string) bool {
	if hasDicomMagic(path) {
		return true
	}

	ids, ok := scanIdentifiers(readSniffWindow(path))
	if !ok {
		return false
	}
	for _, t := range acceptedTags {
		if ids[t] != "" {
			return true
		}
	}
	return false
}

// hasDicomMagic reports whether the file carries the DICM marker at
// offset 128. Short files and read errors report false.
func hasDicomMagic(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, magicOffset+4)
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	return string(header[magicOffset:magicOffset+4]) == "DICM"
}

// readSniffWindow returns up to sniffLimit leading bytes of the file,
// or nil on any read error.
func readSniffWindow(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	buf := make([]byte, sniffLimit)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil
	}
	return buf[:n]
}

// scanIdentifiers walks the leading data elements of a file body and
// collects the identifying tag values. Explicit VR little endian is tried
// first, then implicit VR little endian. ok reports whether either walk
// parsed at least one well-formed element.
func scanIdentifiers(data []byte) (map[tag.Tag]string, bool) {
	if ids, ok := scanElements(data, true); ok {
		return ids, true
	}
	return scanElements(data, false)
}

// longVRs use the 12-byte explicit header form (2 reserved bytes plus a
// 4-byte length) instead of the 8-byte short form.
var longVRs = map[string]bool{
	"OB": true, "OW": true, "OF": true, "SQ": true, "UT": true, "UN": true,
}

// knownVRs is the set of two-letter value representations defined by the
// standard, used to validate an explicit-VR walk.
var knownVRs = map[string]bool{
	"AE": true, "AS": true, "AT": true, "CS": true, "DA": true, "DS": true,
	"DT": true, "FL": true, "FD": true, "IS": true, "LO": true, "LT": true,
	"OB": true, "OD": true, "OF": true, "OL": true, "OV": true, "OW": true,
	"PN": true, "SH": true, "SL": true, "SQ": true, "SS": true, "ST": true,
	"SV": true, "TM": true, "UC": true, "UI": true, "UL": true, "UN": true,
	"UR": true, "US": true, "UT": true, "UV": true,
}

// scanElements performs one bounded element walk in the given transfer
// syntax flavor. The walk stops at the first malformed element, at any
// undefined-length or sequence element, when an element runs past the
// sniff window, or once the group number passes the identifying range.
func scanElements(data []byte, explicitVR bool) (map[tag.Tag]string, bool) {
	ids := make(map[tag.Tag]string)
	parsed := 0
	pos := 0

	for count := 0; count < maxSniffElements; count++ {
		if pos+8 > len(data) {
			break
		}
		group := binary.LittleEndian.Uint16(data[pos:])
		element := binary.LittleEndian.Uint16(data[pos+2:])
		if group > 0x0020 {
			// All identifying tags live in groups 0002-0020.
			break
		}

		var valueLen uint32
		var valueStart int
		if explicitVR {
			vr := string(data[pos+4 : pos+6])
			if !knownVRs[vr] {
				break
			}
			if longVRs[vr] {
				if pos+12 > len(data) {
					break
				}
				valueLen = binary.LittleEndian.Uint32(data[pos+8:])
				valueStart = pos + 12
			} else {
				valueLen = uint32(binary.LittleEndian.Uint16(data[pos+6:]))
				valueStart = pos + 8
			}
			if vr == "SQ" {
				break
			}
		} else {
			valueLen = binary.LittleEndian.Uint32(data[pos+4:])
			valueStart = pos + 8
		}

		if valueLen == 0xFFFFFFFF {
			break
		}
		valueEnd := valueStart + int(valueLen)
		if valueEnd > len(data) {
			break
		}

		t := tag.Tag{Group: group, Element: element}
		if identifyingTags[t] {
			value := strings.TrimRight(string(data[valueStart:valueEnd]), " \x00")
			if value != "" {
				ids[t] = value
			}
		}

		parsed++
		pos = valueEnd
	}

	return ids, parsed > 0
}
