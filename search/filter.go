package search

import (
	"time"

	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/enrich"
)

// Filter narrows search results after similarity ranking. Zero-valued
// fields are inactive; set fields must all match for a result to be
// kept. String fields match case-insensitively with whitespace
// collapsed.
type Filter struct {
	Citation string
	Section  string
	Party    string
	Judge    string

	// DateFrom and DateTo bound the document's normalized date
	// mentions, inclusive. A set bound requires at least one mention
	// inside the range.
	DateFrom time.Time
	DateTo   time.Time
}

// IsZero reports whether no filter field is set.
func (f *Filter) IsZero() bool {
	return f == nil || (f.Citation == "" && f.Section == "" && f.Party == "" &&
		f.Judge == "" && f.DateFrom.IsZero() && f.DateTo.IsZero())
}

// matches evaluates the filter against a chunk's local enrichment and
// its document's record. Citations and sections are satisfied by
// either level; parties, judges, and dates only exist document-level.
func (f *Filter) matches(local core.EnrichmentRecord, doc *core.Document) bool {
	if f.IsZero() {
		return true
	}
	if f.Citation != "" &&
		!containsNormalized(local.Citations, f.Citation) &&
		!containsNormalized(doc.Enrichment.Citations, f.Citation) {
		return false
	}
	if f.Section != "" &&
		!containsNormalized(local.Sections, f.Section) &&
		!containsNormalized(doc.Enrichment.Sections, f.Section) {
		return false
	}
	if f.Party != "" && !containsNormalized(doc.Enrichment.Parties, f.Party) {
		return false
	}
	if f.Judge != "" && !containsNormalized(doc.Enrichment.Judges, f.Judge) {
		return false
	}
	if !f.DateFrom.IsZero() || !f.DateTo.IsZero() {
		if !anyDateInRange(doc.Enrichment.Dates, f.DateFrom, f.DateTo) {
			return false
		}
	}
	return true
}

func containsNormalized(values []string, want string) bool {
	key := enrich.NormalizeValue(want)
	for _, v := range values {
		if enrich.NormalizeValue(v) == key {
			return true
		}
	}
	return false
}

func anyDateInRange(dates []core.NormalizedDate, from, to time.Time) bool {
	for _, d := range dates {
		if !from.IsZero() && d.Time.Before(from) {
			continue
		}
		if !to.IsZero() && d.Time.After(to) {
			continue
		}
		return true
	}
	return false
}
