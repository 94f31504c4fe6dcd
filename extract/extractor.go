package extract

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported input format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Extractor produces plain text from raw document bytes of one format.
// Implementations must be safe for concurrent use.
type Extractor interface {
	// Extract decodes the raw bytes into plain text.
	// Returns ErrExtractionFailed (wrapped) when decoding fails.
	Extract(raw []byte) (string, error)
}

// Registry maps input formats to extractors. The zero value is not
// usable; create one with NewRegistry.
type Registry struct {
	extractors map[Format]Extractor
}

// NewRegistry creates a registry with the built-in extractors: plain
// text, markdown, and HTML. PDF and DOCX decoding live behind an
// external boundary and are reported unsupported here.
func NewRegistry() *Registry {
	return &Registry{
		extractors: map[Format]Extractor{
			FormatText:     PlainText{},
			FormatMarkdown: PlainText{},
			FormatHTML:     HTML{},
		},
	}
}

// Register adds or replaces the extractor for a format.
func (r *Registry) Register(format Format, extractor Extractor) {
	r.extractors[format] = extractor
}

// Detect resolves a filename to a supported format. The boolean is
// false when no extractor is registered for the file's extension,
// letting callers reject input before any document state is created.
func (r *Registry) Detect(filename string) (Format, bool) {
	format, ok := formatForExtension(strings.ToLower(filepath.Ext(filename)))
	if !ok {
		return "", false
	}
	_, registered := r.extractors[format]
	return format, registered
}

// Extract decodes raw bytes using the extractor registered for format.
func (r *Registry) Extract(raw []byte, format Format) (string, error) {
	extractor, ok := r.extractors[format]
	if !ok {
		return "", &UnsupportedFormatError{Format: string(format)}
	}
	return extractor.Extract(raw)
}

func formatForExtension(ext string) (Format, bool) {
	switch ext {
	case ".txt", ".text":
		return FormatText, true
	case ".md", ".markdown":
		return FormatMarkdown, true
	case ".html", ".htm":
		return FormatHTML, true
	default:
		return "", false
	}
}
