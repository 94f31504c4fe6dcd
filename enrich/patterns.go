package enrich

import (
	"regexp"

	"github.com/veritaslegal/casetrace/core"
)

// Rule pairs a compiled pattern with the entity type it extracts.
// The rule set is data, not dispatch: it can be inspected and tested
// independently of the pipeline.
type Rule struct {
	Type    core.EntityType
	Pattern *regexp.Regexp
}

// Citation patterns cover common Indian law report formats.
var citationPatterns = []string{
	`AIR\s*\d{4}\s*[A-Z]{2,}[^\s]*\s*\d+`, // AIR 1996 SC 123
	`\(\d{4}\)\s*\d+\s*SCC\s*\d+`,         // (2013) 5 SCC 488
	`\d{4}\s*SCC\s*\d+`,                   // 2012 SCC 455
	`\d{4}\s*Cri\s*LJ\s*\d+`,              // 2001 Cri LJ 455
}

var (
	citationRegex = regexp.MustCompile(joinAlternates(citationPatterns))
	sectionRegex  = regexp.MustCompile(`(?:Section|Sec\.)\s+\d+[A-Za-z0-9()/-]*`)
	actRegex      = regexp.MustCompile(`[A-Z][A-Za-z ]+ Act,? \d{4}`)
	partyRegex    = regexp.MustCompile(`[A-Z][A-Z .&']+\s+v\.\s+[A-Z][A-Z .&']+`)
	judgeRegex    = regexp.MustCompile(`Justice\s+[A-Z][A-Za-z. ]+|[A-Z][A-Za-z]+\s+J\.`)

	// Strict numeric dates: 12/03/2001, 3-1-98.
	numericDateRegex = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)

	// Looser month-name dates: 12 March 2001, 3rd January, 1998.
	monthDateRegex = regexp.MustCompile(`\b\d{1,2}(?:st|nd|rd|th)?\s+` +
		`(?:January|February|March|April|May|June|July|August|September|October|November|December)` +
		`,?\s+\d{4}\b`)
)

// DefaultRules is the registry of extraction rules applied at document
// level. Chunk-level enrichment uses only the citation and section rules.
// Dates are handled separately because normalization needs positions.
var DefaultRules = []Rule{
	{Type: core.EntityCitation, Pattern: citationRegex},
	{Type: core.EntitySection, Pattern: sectionRegex},
	{Type: core.EntityAct, Pattern: actRegex},
	{Type: core.EntityParty, Pattern: partyRegex},
	{Type: core.EntityJudge, Pattern: judgeRegex},
}

func joinAlternates(patterns []string) string {
	joined := ""
	for i, p := range patterns {
		if i > 0 {
			joined += "|"
		}
		joined += "(?:" + p + ")"
	}
	return joined
}
