package dxf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// Tag is one group code / value pair of an ASCII DXF file.
type Tag struct {
	Code  int
	Value string
}

const binarySentinel = "AutoCAD Binary DXF"

// decode returns the text of an ASCII DXF file and the code page it was
// stored in. Files that are not valid UTF-8 are read as Shift-JIS (ANSI_932),
// the code page Japanese AutoCAD writes before R2007.
func decode(data []byte) (string, string, error) {
	if bytes.HasPrefix(data, []byte(binarySentinel)) {
		return "", "", fmt.Errorf("binary DXF is not supported")
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if utf8.Valid(data) {
		return string(data), CodePageUTF8, nil
	}

	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("decode ANSI_932: %w", err)
	}
	return string(out), CodePageShiftJIS, nil
}

// readTags splits decoded DXF text into group code / value pairs.
func readTags(text string) ([]Tag, string, error) {
	newline := "\n"
	if strings.Contains(text, "\r\n") {
		newline = "\r\n"
	}

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	// trailing newline after EOF
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines)%2 != 0 {
		return nil, "", fmt.Errorf("odd number of lines (%d): truncated file", len(lines))
	}

	tags := make([]Tag, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		code, err := strconv.Atoi(strings.TrimSpace(lines[i]))
		if err != nil {
			return nil, "", fmt.Errorf("line %d: invalid group code %q", i+1, lines[i])
		}
		tags = append(tags, Tag{Code: code, Value: lines[i+1]})
	}
	return tags, newline, nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
