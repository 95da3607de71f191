// Package segment splits a located Risk Factors section into discrete risk
// blocks. Two interchangeable strategies exist: a typographic one that reads
// bold/italic signals from the HTML, and a paragraph-heuristic fallback that
// works on plain text. Both feed a shared finishing step so the pipeline
// never returns a hard empty result when any text existed.
package segment

import (
	"fmt"
	"strings"

	"riskdelta/pkg/core/theme"
)

// RiskBlock is one semantically distinct disclosed risk. Blocks are immutable
// once produced: identity across filings is established only by the diff
// engine, never stored.
type RiskBlock struct {
	BlockID         string      `json:"block_id,omitempty"`
	BlockIndex      int         `json:"block_index"`
	Title           string      `json:"title"`
	Content         string      `json:"content"`
	Theme           theme.Theme `json:"risk_theme,omitempty"`
	EvidencePointer string      `json:"evidence_pointer,omitempty"`
}

const (
	maxTitleLen      = 150
	minParagraphLen  = 40
	shortParagraph   = 300
	headingMaxLen    = 150
	fallbackLen      = 6000
	minBoldTitles    = 3
	minBlockContent  = 30
	minBlockTitleLen = 10
)

// boilerplateHints are generic SEC disclaimer phrases. Paragraphs containing
// them carry no risk-specific information and are filtered regardless of
// length.
var boilerplateHints = []string{
	"forward-looking statements",
	"should be read in conjunction with",
	"not be considered to be a reliable indicator",
	"may be materially and adversely affected",
}

// IsBoilerplate reports whether a paragraph is generic disclaimer text.
func IsBoilerplate(par string) bool {
	p := strings.ToLower(par)
	for _, h := range boilerplateHints {
		if strings.Contains(p, h) {
			return true
		}
	}
	return false
}

// Segmenter is the strategy interface. Implementations return nil when they
// cannot find enough structure; callers then fall through to the next
// strategy.
type Segmenter interface {
	Segment(sectionText string) []RiskBlock
}

// Finish applies the universal finishing step: title truncation, block index
// assignment, and the single-fallback-block guarantee. rawSection is the
// unsegmented section text used when every block was filtered away.
func Finish(blocks []RiskBlock, rawSection string) []RiskBlock {
	if len(blocks) == 0 {
		raw := strings.TrimSpace(rawSection)
		if raw == "" {
			return nil
		}
		if len(raw) > fallbackLen {
			raw = raw[:fallbackLen]
		}
		blocks = []RiskBlock{{
			Title:           "Risk Factors (unsegmented)",
			Content:         raw,
			EvidencePointer: "fallback_raw_section",
		}}
	}
	for i := range blocks {
		blocks[i].BlockIndex = i
		blocks[i].Title = TruncateTitle(blocks[i].Title)
		if blocks[i].EvidencePointer == "" {
			blocks[i].EvidencePointer = fmt.Sprintf("paragraph_%d", i)
		}
	}
	return blocks
}

// TruncateTitle caps a title at the maximum length, cutting at a word
// boundary when one is close enough.
func TruncateTitle(title string) string {
	title = strings.TrimSpace(title)
	if len(title) <= maxTitleLen {
		return title
	}
	cut := title[:maxTitleLen]
	if idx := strings.LastIndex(cut, " "); idx > maxTitleLen/2 {
		cut = cut[:idx]
	}
	return cut + " …"
}

// synthesizeTitle derives a title from body text: the first sentence when it
// is a sensible length, otherwise a truncated prefix.
func synthesizeTitle(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	if idx := strings.Index(flat, "."); idx > minBlockTitleLen && idx < maxTitleLen {
		return flat[:idx]
	}
	if len(flat) > 100 {
		return strings.TrimSpace(flat[:100]) + " …"
	}
	return flat
}

// splitParagraphs breaks text on blank-line boundaries and trims each part.
func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}
