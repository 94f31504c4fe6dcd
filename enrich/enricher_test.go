package enrich

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritaslegal/casetrace/core"
)

const sampleJudgment = `STATE OF KERALA v. RAMESH KUMAR

Before Justice A. K. Sharma

This appeal arises under Section 4 of the Land Acquisition Act, 1894.
The notification dated 12/03/2001 was challenged. Reliance was placed
on AIR 1996 SC 123 and (2013) 5 SCC 488. See also 2001 Cri LJ 455.
Compensation was enhanced per Section 23(1A) on 5 March 2002.`

func TestEnrichDocument(t *testing.T) {
	e := NewEnricher()
	record := e.EnrichDocument(sampleJudgment)

	assert.Contains(t, record.Citations, "AIR 1996 SC 123")
	assert.Contains(t, record.Citations, "(2013) 5 SCC 488")
	assert.Contains(t, record.Citations, "2001 Cri LJ 455")

	assert.Contains(t, record.Sections, "Section 4")
	assert.Contains(t, record.Sections, "Section 23(1A)")

	require.NotEmpty(t, record.Acts)
	assert.Contains(t, record.Acts[0], "Land Acquisition Act, 1894")

	require.NotEmpty(t, record.Parties)
	assert.Contains(t, record.Parties[0], "v.")

	require.NotEmpty(t, record.Judges)
	assert.Contains(t, record.Judges[0], "Justice")

	require.Len(t, record.Dates, 2)
	assert.Equal(t, "12/03/2001", record.Dates[0].Raw)
	assert.Equal(t, core.DateConfidenceHigh, record.Dates[0].Confidence)
	assert.Equal(t, time.Date(2001, time.March, 12, 0, 0, 0, 0, time.UTC), record.Dates[0].Time)
	assert.Equal(t, core.DateConfidenceLow, record.Dates[1].Confidence)
	assert.Equal(t, time.Date(2002, time.March, 5, 0, 0, 0, 0, time.UTC), record.Dates[1].Time)
}

func TestEnrichChunk_LocalizedRulesOnly(t *testing.T) {
	e := NewEnricher()
	record := e.EnrichChunk(sampleJudgment)

	assert.NotEmpty(t, record.Citations)
	assert.NotEmpty(t, record.Sections)
	assert.Empty(t, record.Acts)
	assert.Empty(t, record.Parties)
	assert.Empty(t, record.Judges)
	assert.Empty(t, record.Dates)
}

func TestEnrichDocument_DeduplicatesByNormalizedString(t *testing.T) {
	e := NewEnricher()
	text := "See AIR 1996 SC 123. Again AIR 1996 SC 123. And AIR  1996  SC 123."
	record := e.EnrichDocument(text)

	assert.Len(t, record.Citations, 1)
}

func TestEnrichDocument_Caps(t *testing.T) {
	var b strings.Builder
	for i := 0; i < maxSections+25; i++ {
		b.WriteString("Section ")
		b.WriteString(strings.Repeat("1", 1+i%4))
		b.WriteString(string(rune('A'+i%26)) + " applies. ")
	}

	e := NewEnricher()
	record := e.EnrichDocument(b.String())
	assert.LessOrEqual(t, len(record.Sections), maxSections)
}

func TestDedupe(t *testing.T) {
	values := []string{" a ", "a", "b", "", "b ", "c"}
	assert.Equal(t, []string{"a", "b", "c"}, Dedupe(values, 0))
	assert.Equal(t, []string{"a", "b"}, Dedupe(values, 2))
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "state of kerala", NormalizeValue("  State   of\tKerala "))
	assert.Equal(t, NormalizeValue("SECTION 302"), NormalizeValue("Section  302"))
}

func TestExtractDates_DropsUnparseable(t *testing.T) {
	// 31/02/2001 matches the numeric pattern but is not a real day.
	dates := extractDates("signed on 31/02/2001 and again on 12/03/2001", 0)
	require.Len(t, dates, 1)
	assert.Equal(t, "12/03/2001", dates[0].Raw)
}

func TestNormalizeNumericDate_TwoDigitYearPivot(t *testing.T) {
	early, ok := normalizeNumericDate("1/1/49")
	require.True(t, ok)
	assert.Equal(t, 2049, early.Year())

	late, ok := normalizeNumericDate("1/1/50")
	require.True(t, ok)
	assert.Equal(t, 1950, late.Year())
}

func TestNormalizeMonthDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"12 March 2001", time.Date(2001, time.March, 12, 0, 0, 0, 0, time.UTC), true},
		{"3rd January, 1998", time.Date(1998, time.January, 3, 0, 0, 0, 0, time.UTC), true},
		{"21st August 2020", time.Date(2020, time.August, 21, 0, 0, 0, 0, time.UTC), true},
		{"45 March 2001", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := normalizeMonthDate(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestUnionInvariant_CitationsAndSections(t *testing.T) {
	// Chunks sized so no citation straddles a boundary.
	chunks := []string{
		"First part cites AIR 1996 SC 123 and Section 4 of the Act.",
		"Second part cites (2013) 5 SCC 488 and Section 4 again.",
		"Third part repeats AIR 1996 SC 123 with Section 23(1A).",
	}
	full := strings.Join(chunks, "\n")

	e := NewEnricher()
	doc := e.EnrichDocument(full)

	var localCitations, localSections []string
	for _, c := range chunks {
		local := e.EnrichChunk(c)
		localCitations = append(localCitations, local.Citations...)
		localSections = append(localSections, local.Sections...)
	}

	assert.ElementsMatch(t, doc.Citations, Dedupe(localCitations, 0))
	assert.ElementsMatch(t, doc.Sections, Dedupe(localSections, 0))
}
