// Package section locates 10-K item sections inside normalized filing text.
// The hard part is not matching "Item 1A" — it is refusing to match it inside
// the table of contents, where the same anchor text appears with a page
// number next to it.
package section

import (
	"errors"
	"regexp"
)

// ErrNotFound is returned when no start pattern matches anywhere in the text.
// Callers must treat this as extraction failure, not as an empty section.
var ErrNotFound = errors.New("section anchor not found")

// Span is a located character range. Start points just past the matched
// section header so the span covers body text only.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

const (
	// tocWindow is how far past a candidate anchor we scan for TOC density.
	tocWindow = 2000
	// tocItemLimit: more than this many "Item N" hits inside the window
	// means the candidate landed in a table of contents.
	tocItemLimit = 5
	// endContext is how much preceding text is checked before accepting an
	// end anchor, so a TOC reference to Item 1B does not truncate the section.
	endContext = 200
	// minEndOffset keeps the end search from matching the section's own header.
	minEndOffset = 500
	// maxSectionLen bounds pathological inputs with no end anchor.
	maxSectionLen = 250000
)

var itemRefRe = regexp.MustCompile(`(?i)\bitem\s*\d`)

// Item1AStart matches "Item 1A ... Risk Factors" with punctuation and dash
// variants seen across EDGAR filings.
var Item1AStart = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bitem\s*1\s*a[.:\s—\-–]+risk\s+factors`),
	regexp.MustCompile(`(?i)\bitem\s*1a\b[.:\s—\-–]*risk\s*factors`),
}

// Item1AEnd matches the anchors that terminate Item 1A.
var Item1AEnd = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bitem\s*1\s*b[.:\s—\-–]`),
	regexp.MustCompile(`(?i)\bitem\s*2[.:\s—\-–]`),
	regexp.MustCompile(`(?i)\bpart\s+ii\b`),
}

// Item1Start matches "Item 1 ... Business".
var Item1Start = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bitem\s*1[.:\s—\-–]+bus(?:iness)?`),
}

// IsTOCRegion reports whether a text window looks like a table of contents:
// a dense cluster of "Item N" references.
func IsTOCRegion(s string) bool {
	if len(s) > tocWindow {
		s = s[:tocWindow]
	}
	return len(itemRefRe.FindAllStringIndex(s, -1)) > tocItemLimit
}

// Locate finds the character range of a section delimited by startPatterns
// and endPatterns. Candidate starts inside a TOC region are skipped; when
// every candidate is rejected the last one found is used as a fallback.
func Locate(text string, startPatterns, endPatterns []*regexp.Regexp) (Span, error) {
	starts := findAll(text, startPatterns)
	if len(starts) == 0 {
		return Span{}, ErrNotFound
	}

	start := -1
	for _, m := range starts {
		tail := text[m[1]:]
		if !IsTOCRegion(tail) {
			start = m[1]
			break
		}
	}
	if start < 0 {
		// Every candidate looked like a TOC entry; the last match is the
		// closest thing to the section body we have.
		start = starts[len(starts)-1][1]
	}

	end := len(text)
	for _, m := range findAll(text, endPatterns) {
		if m[0] <= start+minEndOffset {
			continue
		}
		pre := text[max(0, m[0]-endContext):m[0]]
		if IsTOCRegion(pre) {
			continue
		}
		if m[0] < end {
			end = m[0]
		}
		break
	}
	if end-start > maxSectionLen {
		end = start + maxSectionLen
	}
	return Span{Start: start, End: end}, nil
}

// findAll merges matches from every pattern and returns them sorted by
// position, deduplicating overlapping starts.
func findAll(text string, patterns []*regexp.Regexp) [][]int {
	var all [][]int
	for _, re := range patterns {
		all = append(all, re.FindAllStringIndex(text, -1)...)
	}
	// insertion sort by match start: the lists are tiny
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j][0] < all[j-1][0]; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	dedup := all[:0]
	lastStart := -1
	for _, m := range all {
		if m[0] == lastStart {
			continue
		}
		dedup = append(dedup, m)
		lastStart = m[0]
	}
	return dedup
}

// LocateItem1A finds the Risk Factors section body.
func LocateItem1A(text string) (Span, error) {
	return Locate(text, Item1AStart, Item1AEnd)
}

// LocateItem1 finds the Business section body; Item 1A serves as its end
// anchor.
func LocateItem1(text string) (Span, error) {
	return Locate(text, Item1Start, Item1AStart)
}

// Extract returns the text covered by a span.
func Extract(text string, sp Span) string {
	if sp.Start < 0 || sp.Start >= len(text) {
		return ""
	}
	end := sp.End
	if end > len(text) {
		end = len(text)
	}
	return text[sp.Start:end]
}
