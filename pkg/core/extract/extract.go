// Package extract orchestrates the filing analysis pipeline: read bytes to
// text, locate Item 1A, segment into risk blocks, classify themes, and
// assemble the report. It also derives the Item 1 business overview and a
// coarse sector when the caller supplied no industry.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"riskdelta/pkg/core/diff"
	"riskdelta/pkg/core/normalize"
	"riskdelta/pkg/core/ocr"
	"riskdelta/pkg/core/report"
	"riskdelta/pkg/core/section"
	"riskdelta/pkg/core/segment"
	"riskdelta/pkg/core/tables"
	"riskdelta/pkg/core/theme"
)

// ErrInsufficientData marks a comparison against a report whose extraction
// produced nothing. An empty block list is not "zero risks"; comparing it
// would report every risk on the other side as NEW or REMOVED.
var ErrInsufficientData = errors.New("insufficient data for comparison")

// Segmentation strategies, recorded on the analysis for observability.
const (
	StrategyTypographic = "typographic"
	StrategyParagraph   = "paragraph"
	StrategyFallback    = "fallback"
)

const overviewMaxChars = 1800

// Input is one uploaded filing plus its caller-supplied metadata. Metadata
// is taken as-is; nothing is looked up externally.
type Input struct {
	Raw        []byte
	Ext        string // html, htm, pdf, txt
	Company    string
	Year       int
	Industry   string
	FilingType string
}

// Analysis is the outcome of one pipeline run.
type Analysis struct {
	Report report.FilingReport
	// Strategy names the segmentation path that produced the blocks.
	Strategy string
	// Degraded is set when segmentation fell back past the typographic
	// strategy; the report is still valid, confidence is just lower.
	Degraded bool
	// SectorInferred is set when the industry came from the SIC heuristic
	// rather than the caller.
	SectorInferred bool
}

// Pipeline wires the extraction steps together. OCR may be nil, in which
// case PDF inputs fail with ocr.ErrUnavailable.
type Pipeline struct {
	OCR ocr.TextExtractor
}

// NewPipeline creates a pipeline with the given PDF text extractor.
func NewPipeline(textExtractor ocr.TextExtractor) *Pipeline {
	return &Pipeline{OCR: textExtractor}
}

// Analyze runs the full extraction on one filing.
func (p *Pipeline) Analyze(ctx context.Context, in Input) (Analysis, error) {
	text, err := p.readText(ctx, in)
	if err != nil {
		return Analysis{}, err
	}

	// Locate on the full normalized text; CleanLines would strip the very
	// "Item 1A" header lines the locator anchors on, so it runs on the
	// extracted section body only.
	span, err := section.LocateItem1A(text)
	if err != nil {
		return Analysis{}, fmt.Errorf("locate risk factors: %w", err)
	}
	sectionText := normalize.CleanLines(section.Extract(text, span))

	isHTML := in.Ext == "html" || in.Ext == "htm"
	blocks, strategy := p.segmentBlocks(in.Raw, isHTML, sectionText)
	blocks = segment.Finish(blocks, sectionText)
	if len(blocks) == 1 && blocks[0].EvidencePointer == "fallback_raw_section" {
		strategy = StrategyFallback
	}
	for i := range blocks {
		blocks[i].Theme = theme.Classify(blocks[i].Title + " " + blocks[i].Content)
	}
	log.Printf("[Extract] %s %d: %d risk blocks via %s strategy", in.Company, in.Year, len(blocks), strategy)

	industry := in.Industry
	sectorInferred := false
	if industry == "" {
		industry = InferSector(text)
		sectorInferred = true
	}

	rep := report.Assemble(report.Meta{
		Company:    in.Company,
		Year:       in.Year,
		Industry:   industry,
		FilingType: in.FilingType,
	}, blocks)

	if sp, err := section.LocateItem1(text); err == nil {
		rep.BusinessOverview = BusinessOverview(section.Extract(text, sp))
	}
	if isHTML {
		if doc, err := normalize.ParseHTML(in.Raw); err == nil {
			rep.FinancialTables = tables.FromDocument(doc)
		}
	}

	return Analysis{
		Report:         rep,
		Strategy:       strategy,
		Degraded:       strategy != StrategyTypographic,
		SectorInferred: sectorInferred,
	}, nil
}

// readText converts the raw upload to normalized text. PDFs go through the
// external extractor; everything else is handled locally.
func (p *Pipeline) readText(ctx context.Context, in Input) (string, error) {
	if strings.ToLower(in.Ext) == "pdf" {
		if p.OCR == nil {
			return "", fmt.Errorf("%w: no PDF extractor configured", ocr.ErrUnavailable)
		}
		text, err := p.OCR.ExtractText(ctx, in.Raw)
		if err != nil {
			return "", fmt.Errorf("pdf extraction: %w", err)
		}
		return normalize.NormalizeText(text), nil
	}
	return normalize.ReadFileToText(in.Raw, in.Ext)
}

// segmentBlocks tries the typographic strategy on HTML input, then the
// paragraph heuristic.
func (p *Pipeline) segmentBlocks(raw []byte, isHTML bool, sectionText string) ([]segment.RiskBlock, string) {
	if isHTML {
		if doc, err := normalize.ParseHTML(raw); err == nil {
			if blocks := (segment.TypographicSegmenter{Doc: doc}).Segment(sectionText); blocks != nil {
				return blocks, StrategyTypographic
			}
		}
	}
	return segment.ParagraphSegmenter{}.Segment(sectionText), StrategyParagraph
}

// Compare diffs two extracted reports of the same company. Empty reports
// short-circuit: their absence of blocks is an extraction outcome, not a
// statement that the company disclosed no risks.
func Compare(prior, latest report.FilingReport, cfg diff.Config) (report.DiffReport, error) {
	if prior.Empty() {
		return report.DiffReport{}, fmt.Errorf("%w: prior filing (%d) has no risk blocks",
			ErrInsufficientData, prior.CompanyOverview.Year)
	}
	if latest.Empty() {
		return report.DiffReport{}, fmt.Errorf("%w: latest filing (%d) has no risk blocks",
			ErrInsufficientData, latest.CompanyOverview.Year)
	}

	res := diff.Diff(prior.RiskBlocks, latest.RiskBlocks, cfg)
	return report.AssembleDiff(
		latest.CompanyOverview.Company,
		prior.CompanyOverview.Year,
		latest.CompanyOverview.Year,
		res.Changes(),
	), nil
}

// BusinessOverview reduces Item 1 text to a short background blurb:
// disclaimer lines dropped, whitespace flattened, cut at a sentence
// boundary near the cap.
func BusinessOverview(item1 string) string {
	if item1 == "" {
		return ""
	}
	var kept []string
	for _, line := range strings.Split(item1, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(strings.ToLower(line), "forward-looking") {
			continue
		}
		kept = append(kept, line)
	}
	blob := strings.Join(strings.Fields(strings.Join(kept, " ")), " ")
	if len(blob) <= overviewMaxChars {
		return blob
	}
	cut := blob[:overviewMaxChars]
	if idx := strings.LastIndex(cut, ". "); idx > overviewMaxChars/2 {
		cut = cut[:idx+1]
	}
	return cut
}

var sicRe = regexp.MustCompile(`(?is)\bSIC\b.{0,40}?(\d{4})`)

// InferSector maps the filing's SIC code to a coarse sector. Returns
// "Unknown" when no code is found.
func InferSector(fullText string) string {
	m := sicRe.FindStringSubmatch(fullText)
	if m == nil {
		return "Unknown"
	}
	var sic int
	fmt.Sscanf(m[1], "%d", &sic)

	switch {
	case sic >= 3570 && sic <= 3579, sic >= 7370 && sic <= 7379:
		return "Technology"
	case sic >= 2000 && sic <= 3999:
		return "Manufacturing"
	case sic >= 5200 && sic <= 5999:
		return "Retail"
	case sic >= 4900 && sic <= 4999:
		return "Utilities"
	case sic >= 1300 && sic <= 1399:
		return "Energy"
	}
	return "Other"
}
