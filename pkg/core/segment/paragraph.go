package segment

import "strings"

// ParagraphSegmenter is the plain-text fallback strategy. It needs no
// structural signal: blocks are carved out of blank-line-separated
// paragraphs using length and punctuation heuristics.
type ParagraphSegmenter struct{}

var _ Segmenter = ParagraphSegmenter{}

// isHeadingLine decides whether a paragraph introduces the block that
// follows it: short, no trailing period, not boilerplate, and not mostly
// numbers (page references and dollar figures are never headings).
func isHeadingLine(p string) bool {
	if len(p) < 6 || len(p) > headingMaxLen {
		return false
	}
	if strings.HasSuffix(p, ".") {
		return false
	}
	if IsBoilerplate(p) {
		return false
	}
	digits := 0
	for _, ch := range p {
		if ch >= '0' && ch <= '9' {
			digits++
		}
	}
	return digits <= 4
}

// Segment splits on blank lines, drops near-certain noise (paragraphs under
// 40 chars), filters boilerplate, merges runs of short paragraphs, and
// treats qualifying short lines as headings for the body text after them.
func (ParagraphSegmenter) Segment(sectionText string) []RiskBlock {
	paras := splitParagraphs(sectionText)

	kept := make([]string, 0, len(paras))
	for _, p := range paras {
		// Short fragments are near-certain noise, unless they qualify as a
		// heading for the body text that follows.
		if len(p) < minParagraphLen && !isHeadingLine(p) {
			continue
		}
		if IsBoilerplate(p) {
			continue
		}
		kept = append(kept, p)
	}

	// Merge consecutive short paragraphs so bullet fragments do not each
	// become their own block.
	merged := make([]string, 0, len(kept))
	buf := ""
	for _, p := range kept {
		if isHeadingLine(p) {
			if buf != "" {
				merged = append(merged, buf)
				buf = ""
			}
			merged = append(merged, p)
			continue
		}
		if buf != "" && len(buf)+len(p) < shortParagraph {
			buf += "\n\n" + p
			continue
		}
		if buf != "" {
			merged = append(merged, buf)
		}
		buf = p
	}
	if buf != "" {
		merged = append(merged, buf)
	}

	var blocks []RiskBlock
	var cur *RiskBlock
	flush := func() {
		if cur == nil {
			return
		}
		cur.Content = strings.TrimSpace(cur.Content)
		if cur.Content == "" {
			// Heading with no body: the title is all we have.
			cur.Content = cur.Title
		}
		blocks = append(blocks, *cur)
		cur = nil
	}

	for _, p := range merged {
		if isHeadingLine(p) {
			flush()
			cur = &RiskBlock{Title: strings.TrimRight(p, ". ")}
			continue
		}
		if cur == nil {
			cur = &RiskBlock{Title: synthesizeTitle(p)}
		}
		if cur.Content != "" {
			cur.Content += "\n\n"
		}
		cur.Content += p
	}
	flush()

	return blocks
}
