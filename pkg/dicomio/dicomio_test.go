package dicomio

// Test fixtures are synthesized byte-by-byte in explicit VR little endian
// rather than shipped as binary testdata, so each test controls exactly
// which headers and tags a file carries.

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeElement encodes one data element in explicit VR little endian.
// The value must already be padded to even length.
func encodeElement(group, element uint16, vr string, value []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, group)
	binary.Write(&buf, binary.LittleEndian, element)
	buf.WriteString(vr)
	if longVRs[vr] {
		buf.Write([]byte{0, 0})
		binary.Write(&buf, binary.LittleEndian, uint32(len(value)))
	} else {
		binary.Write(&buf, binary.LittleEndian, uint16(len(value)))
	}
	buf.Write(value)
	return buf.Bytes()
}

// uiValue pads a UID string to even length with a NUL byte.
func uiValue(s string) []byte {
	if len(s)%2 != 0 {
		s += "\x00"
	}
	return []byte(s)
}

// textValue pads a string value to even length with a space.
func textValue(s string) []byte {
	if len(s)%2 != 0 {
		s += " "
	}
	return []byte(s)
}

// usValue encodes an unsigned short value.
func usValue(n uint16) []byte {
	v := make([]byte, 2)
	binary.LittleEndian.PutUint16(v, n)
	return v
}

// fileMeta encodes the DICM preamble plus the group-2 file meta header
// for explicit VR little endian.
func fileMeta() []byte {
	var meta bytes.Buffer
	meta.Write(encodeElement(0x0002, 0x0001, "OB", []byte{0x00, 0x01}))
	meta.Write(encodeElement(0x0002, 0x0002, "UI", uiValue("1.2.840.10008.5.1.4.1.1.4")))
	meta.Write(encodeElement(0x0002, 0x0003, "UI", uiValue("1.2.826.0.1.3680043.2.1125.1")))
	meta.Write(encodeElement(0x0002, 0x0010, "UI", uiValue("1.2.840.10008.1.2.1")))

	groupLen := make([]byte, 4)
	binary.LittleEndian.PutUint32(groupLen, uint32(meta.Len()))

	var out bytes.Buffer
	out.Write(make([]byte, 128))
	out.WriteString("DICM")
	out.Write(encodeElement(0x0002, 0x0000, "UL", groupLen))
	out.Write(meta.Bytes())
	return out.Bytes()
}

// mrDatasetOptions controls the synthetic MR image written by writeMRFile.
type mrDatasetOptions struct {
	rows, cols int
	spacing    string // DS value, e.g. "1.0\\1.0"; empty omits the tag
	thickness  string // DS value, e.g. "5.0"; empty omits the tag
	pixel      func(r, c int) uint16
	omitPixels bool
}

// writeMRFile writes a complete, standard-conformant MR DICOM file.
func writeMRFile(t *testing.T, path string, opts mrDatasetOptions) {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(fileMeta())
	buf.Write(encodeElement(0x0008, 0x0016, "UI", uiValue("1.2.840.10008.5.1.4.1.1.4")))
	buf.Write(encodeElement(0x0008, 0x0018, "UI", uiValue("1.2.826.0.1.3680043.2.1125.1")))
	buf.Write(encodeElement(0x0008, 0x0060, "CS", textValue("MR")))
	if opts.thickness != "" {
		buf.Write(encodeElement(0x0018, 0x0050, "DS", textValue(opts.thickness)))
	}
	buf.Write(encodeElement(0x0020, 0x000D, "UI", uiValue("1.2.826.0.1.3680043.2.1125.2")))
	buf.Write(encodeElement(0x0020, 0x000E, "UI", uiValue("1.2.826.0.1.3680043.2.1125.3")))
	buf.Write(encodeElement(0x0028, 0x0002, "US", usValue(1)))
	buf.Write(encodeElement(0x0028, 0x0004, "CS", textValue("MONOCHROME2")))
	buf.Write(encodeElement(0x0028, 0x0010, "US", usValue(uint16(opts.rows))))
	buf.Write(encodeElement(0x0028, 0x0011, "US", usValue(uint16(opts.cols))))
	if opts.spacing != "" {
		buf.Write(encodeElement(0x0028, 0x0030, "DS", textValue(opts.spacing)))
	}
	buf.Write(encodeElement(0x0028, 0x0100, "US", usValue(16)))
	buf.Write(encodeElement(0x0028, 0x0101, "US", usValue(16)))
	buf.Write(encodeElement(0x0028, 0x0102, "US", usValue(15)))
	buf.Write(encodeElement(0x0028, 0x0103, "US", usValue(0)))

	if !opts.omitPixels {
		pixels := make([]byte, opts.rows*opts.cols*2)
		for r := 0; r < opts.rows; r++ {
			for c := 0; c < opts.cols; c++ {
				binary.LittleEndian.PutUint16(pixels[(r*opts.cols+c)*2:], opts.pixel(r, c))
			}
		}
		buf.Write(encodeElement(0x7FE0, 0x0010, "OW", pixels))
	}

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// writeHeaderlessFile writes a DICOM file with no preamble and no DICM
// marker, the shape of export the metadata fallback exists for.
func writeHeaderlessFile(t *testing.T, path string, elements ...[]byte) {
	t.Helper()

	var buf bytes.Buffer
	for _, e := range elements {
		buf.Write(e)
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// writeMagicOnlyFile writes a file carrying the DICM marker at offset 128
// followed by unparseable bytes.
func writeMagicOnlyFile(t *testing.T, path string) {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(make([]byte, 128))
	buf.WriteString("DICM")
	buf.WriteString("garbage that is not a valid element stream")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func writeTextFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
