// Package timeline synthesizes chronological case timelines from the
// normalized date mentions captured during enrichment. Dates that
// failed normalization are dropped at enrichment time, never defaulted,
// so everything on a timeline maps to a real calendar day.
package timeline
