package enrich

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/veritaslegal/casetrace/core"
)

// Per-document caps on extracted values, a safety bound against
// pathological inputs. Caps apply after deduplication.
const (
	maxCitations      = 50
	maxSections       = 50
	maxActs           = 50
	maxDates          = 100
	maxParties        = 20
	maxJudges         = 20
	maxLocalCitations = 10
	maxLocalSections  = 10
)

// Enricher extracts structured legal signal from document text using
// the data-driven rule registry. It is stateless and safe for
// concurrent use.
type Enricher struct {
	rules  []Rule
	logger *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithRules replaces the default rule registry.
func WithRules(rules []Rule) Option {
	return func(e *Enricher) {
		e.rules = rules
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewEnricher creates an enricher with the default rule registry.
func NewEnricher(opts ...Option) *Enricher {
	e := &Enricher{
		rules:  DefaultRules,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnrichDocument runs every rule plus date extraction against the full
// text once. Scanning the whole text also catches patterns spanning
// chunk boundaries, so the result is a superset of the chunks' local
// records.
func (e *Enricher) EnrichDocument(text string) core.EnrichmentRecord {
	record := core.EnrichmentRecord{
		Citations: e.findAll(core.EntityCitation, text, maxCitations),
		Sections:  e.findAll(core.EntitySection, text, maxSections),
		Acts:      e.findAll(core.EntityAct, text, maxActs),
		Parties:   e.findAll(core.EntityParty, text, maxParties),
		Judges:    e.findAll(core.EntityJudge, text, maxJudges),
		Dates:     extractDates(text, maxDates),
	}
	return record
}

// EnrichChunk runs the cheap localized rules only: citations and
// sections. Everything else is document-level signal.
func (e *Enricher) EnrichChunk(text string) core.EnrichmentRecord {
	return core.EnrichmentRecord{
		Citations: e.findAll(core.EntityCitation, text, maxLocalCitations),
		Sections:  e.findAll(core.EntitySection, text, maxLocalSections),
	}
}

func (e *Enricher) findAll(entityType core.EntityType, text string, max int) []string {
	pattern := e.pattern(entityType)
	if pattern == nil {
		return nil
	}
	return Dedupe(pattern.FindAllString(text, -1), max)
}

func (e *Enricher) pattern(entityType core.EntityType) *regexp.Regexp {
	for _, rule := range e.rules {
		if rule.Type == entityType {
			return rule.Pattern
		}
	}
	return nil
}

// Dedupe trims each value and removes duplicates by normalized string,
// preserving first-seen order. Normalization collapses internal
// whitespace so "State  of Kerala" and "State of Kerala" are one value.
// At most max values are returned when max > 0.
func Dedupe(values []string, max int) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := NormalizeValue(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// NormalizeValue produces the canonical comparison form of an entity
// value: lowercased, trimmed, inner whitespace collapsed to single
// spaces. Displayed values keep their original casing; this form is
// only for keying and comparison.
func NormalizeValue(v string) string {
	return strings.ToLower(strings.Join(strings.Fields(v), " "))
}
