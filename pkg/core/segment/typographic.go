package segment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	boldSpanMin     = 12
	boldSpanMax     = 500
	ancestorLevels  = 3
	generalCategory = "General Risk Factors"
)

// TypographicSegmenter reads heading structure from the filing's HTML:
// bold spans are risk titles or category headers, italic-bold spans are
// sub-risk titles. It only succeeds on filings that carry real typographic
// signal; callers fall back to ParagraphSegmenter otherwise.
type TypographicSegmenter struct {
	Doc *goquery.Document
}

var _ Segmenter = TypographicSegmenter{}

type typoSpan struct {
	text   string
	pos    int // position within the section text
	italic bool
}

func styleIsBold(style string) bool {
	s := strings.ToLower(style)
	return strings.Contains(s, "font-weight:bold") ||
		strings.Contains(s, "font-weight: bold") ||
		strings.Contains(s, "font-weight:700") ||
		strings.Contains(s, "font-weight: 700")
}

func styleIsItalic(style string) bool {
	s := strings.ToLower(style)
	return strings.Contains(s, "font-style:italic") ||
		strings.Contains(s, "font-style: italic")
}

// selHasTrait checks the selection and up to ancestorLevels of its parents
// for a tag or style declaration matching the trait.
func selHasTrait(sel *goquery.Selection, tags map[string]bool, styleMatch func(string) bool) bool {
	cur := sel
	for i := 0; i <= ancestorLevels && cur.Length() > 0; i++ {
		if tags[goquery.NodeName(cur)] {
			return true
		}
		if style, ok := cur.Attr("style"); ok && styleMatch(style) {
			return true
		}
		cur = cur.Parent()
	}
	return false
}

var boldTags = map[string]bool{"b": true, "strong": true}
var italicTags = map[string]bool{"i": true, "em": true}

// collectSpans walks text-bearing candidates and returns bold spans located
// within sectionText, annotated with italic-ness and position.
func (s TypographicSegmenter) collectSpans(sectionText string) []typoSpan {
	var spans []typoSpan
	seen := map[int]bool{}

	s.Doc.Find("b, strong, i, em, span[style], p[style]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) <= boldSpanMin || len(text) >= boldSpanMax {
			return
		}
		if !selHasTrait(sel, boldTags, styleIsBold) {
			return
		}
		// Locate the span inside the section; a fuzzy prefix search covers
		// spans that whitespace normalization reflowed.
		needle := strings.Join(strings.Fields(text), " ")
		pos := strings.Index(sectionText, needle)
		if pos < 0 && len(needle) > 40 {
			pos = strings.Index(sectionText, needle[:40])
		}
		if pos < 0 || seen[pos] {
			return
		}
		seen[pos] = true
		// The italic marker can sit above the span (<i><b>…) or inside it
		// (<b><i>…), so check both directions.
		italic := selHasTrait(sel, italicTags, styleIsItalic) ||
			sel.Find("i, em").Length() > 0
		spans = append(spans, typoSpan{text: needle, pos: pos, italic: italic})
	})

	sort.Slice(spans, func(i, j int) bool { return spans[i].pos < spans[j].pos })
	return dedupeSpans(spans)
}

// dedupeSpans drops spans whose text is a pure substring of an overlapping
// retained span, keeping the more specific (longer) one.
func dedupeSpans(spans []typoSpan) []typoSpan {
	out := make([]typoSpan, 0, len(spans))
	for i, sp := range spans {
		sub := false
		for j, other := range spans {
			if i == j || len(other.text) <= len(sp.text) {
				continue
			}
			overlap := sp.pos >= other.pos && sp.pos < other.pos+len(other.text)
			if overlap && strings.Contains(other.text, sp.text) {
				sub = true
				break
			}
		}
		if !sub {
			out = append(out, sp)
		}
	}
	return out
}

// Segment carves blocks out of the section using bold spans as delimiters.
// When italic-bold sub-titles exist they become the block titles, grouped
// under the nearest preceding plain-bold category header; without any
// italics every bold span is a title in its own right.
func (s TypographicSegmenter) Segment(sectionText string) []RiskBlock {
	if s.Doc == nil {
		return nil
	}
	spans := s.collectSpans(sectionText)

	hasItalic := false
	for _, sp := range spans {
		if sp.italic {
			hasItalic = true
			break
		}
	}

	var blocks []RiskBlock
	category := generalCategory
	titles := 0
	for i, sp := range spans {
		isTitle := sp.italic || !hasItalic
		if !isTitle {
			category = sp.text
			continue
		}
		titles++

		contentStart := sp.pos + len(sp.text)
		contentEnd := len(sectionText)
		if i+1 < len(spans) {
			contentEnd = spans[i+1].pos
		}
		if contentStart > contentEnd {
			continue
		}
		content := strings.TrimSpace(sectionText[contentStart:contentEnd])
		title := strings.TrimSpace(strings.TrimRight(sp.text, ". "))
		if len(content) <= minBlockContent || len(title) <= minBlockTitleLen {
			continue
		}
		blocks = append(blocks, RiskBlock{
			Title:   title,
			Content: content,
			// Opaque audit locator: section-relative offset plus the
			// category header this title was grouped under.
			EvidencePointer: fmt.Sprintf("char_offset_%d category=%q", sp.pos, category),
		})
	}

	if titles < minBoldTitles || len(blocks) < minBoldTitles {
		return nil
	}
	return blocks
}
