package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PlainText decodes UTF-8 text files. Invalid byte sequences are
// replaced rather than failing the whole document.
type PlainText struct{}

var _ Extractor = PlainText{}

// Extract returns the bytes as a string with invalid UTF-8 replaced.
func (PlainText) Extract(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrExtractionFailed)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	return strings.ToValidUTF8(string(raw), "�"), nil
}
