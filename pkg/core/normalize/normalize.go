// Package normalize converts raw filing bytes into clean, line-oriented text.
// SEC EDGAR HTML is noisy: inline-styled markup, non-breaking spaces, page
// number footers and table-of-contents leader lines all have to go before
// section location can work on the text.
package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrUnsupportedInput is returned for extensions the normalizer cannot read.
var ErrUnsupportedInput = errors.New("unsupported input format")

var (
	pageNumberRe = regexp.MustCompile(`^[\dF][\d\-]*$`)
	tocItemRe    = regexp.MustCompile(`(?i)^item\s*\d`)
	leaderRe     = regexp.MustCompile(`^[\.\s_\-–—]{5,}$`)
	hspaceRe     = regexp.MustCompile(`[ \t]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// blockTags are elements that imply a line break when flattening HTML.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true,
	"table": true, "section": true, "article": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
}

// ParseHTML builds a goquery document from raw bytes. Malformed markup is
// tolerated: the underlying parser produces a best-effort tree.
func ParseHTML(raw []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// HTMLToText flattens HTML to text, preserving block-level line breaks and
// dropping script/style/noscript subtrees.
func HTMLToText(raw []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	var sb strings.Builder
	flatten(root, &sb)
	return NormalizeText(sb.String()), nil
}

func flatten(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skipTags[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flatten(c, sb)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteString("\n")
	}
}

// NormalizeText applies whitespace normalization: non-breaking spaces become
// plain spaces, runs of horizontal whitespace collapse to one space, runs of
// 3+ newlines collapse to exactly two, and the result is trimmed. Running it
// on already-normalized text is a no-op.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = hspaceRe.ReplaceAllString(s, " ")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// CleanLines removes per-line noise: pure page numbers ("42", "F-3"), short
// standalone "Item N" table-of-contents lines, and dot/underscore leader
// lines. Blank-line structure is preserved (capped at one empty line).
func CleanLines(s string) string {
	lines := strings.Split(s, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		if pageNumberRe.MatchString(t) {
			continue
		}
		if tocItemRe.MatchString(t) && len(t) < 60 {
			continue
		}
		if t != "" && leaderRe.MatchString(t) {
			continue
		}
		cleaned = append(cleaned, t)
	}
	out := strings.Join(cleaned, "\n")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// ReadFileToText converts raw bytes with a declared extension into normalized
// text. HTML is flattened via the parser; txt is decoded as-is. PDF is not
// handled here: callers route it through the OCR collaborator first.
func ReadFileToText(raw []byte, ext string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "html", "htm":
		return HTMLToText(raw)
	case "txt":
		return NormalizeText(string(raw)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedInput, ext)
	}
}
