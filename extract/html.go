package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTML extracts visible text from crawled precedent pages. Script and
// style contents are stripped before the text is flattened.
type HTML struct{}

var _ Extractor = HTML{}

// Extract parses the bytes as HTML and returns the body text with
// whitespace collapsed per line.
func (HTML) Extract(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
	})

	text := b.String()
	if text == "" {
		// Fragment without a body element; fall back to the whole tree.
		text = doc.Text()
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}

	if len(out) == 0 {
		return "", fmt.Errorf("%w: no text content", ErrExtractionFailed)
	}
	return strings.Join(out, "\n"), nil
}
