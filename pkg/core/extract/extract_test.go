package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"riskdelta/pkg/core/diff"
	"riskdelta/pkg/core/normalize"
	"riskdelta/pkg/core/ocr"
	"riskdelta/pkg/core/report"
	"riskdelta/pkg/core/section"
	"riskdelta/pkg/core/segment"
	"riskdelta/pkg/core/theme"
)

// filingHTML is a miniature 10-K: table of contents up front, Item 1 with a
// SIC code, Item 1A with bold-italic risk titles, Item 1B terminator.
const filingHTML = `<html><body>
<p>ACME CORP - ANNUAL REPORT ON FORM 10-K</p>
<p>TABLE OF CONTENTS</p>
<p>Item 1. Business 3</p>
<p>Item 1A. Risk Factors 10</p>
<p>Item 1B. Unresolved Staff Comments 25</p>
<p>Item 2. Properties 26</p>
<p>Item 3. Legal Proceedings 27</p>
<p>Item 5. Market for Registrant's Common Equity 28</p>
<p>Item 7. Management's Discussion and Analysis 30</p>
<p>Item 8. Financial Statements and Supplementary Data 40</p>
<p>Item 1. Business</p>
<p>Acme Corp designs, manufactures, and sells network monitoring appliances
and related subscription software to enterprise customers worldwide. The
company was incorporated in Delaware in 1998 and operates under SIC code
7372. Our products are sold through a direct sales force and a network of
channel partners across North America, Europe, and Asia.</p>
<p>We generate revenue primarily from hardware sales and recurring
subscription fees. Our engineering organization is headquartered in Austin,
Texas, with additional development centers in Dublin and Singapore. As of
the end of the fiscal year we employed approximately 4,200 people across
all functions and geographies worldwide.</p>
<p>Item 1A. Risk Factors</p>
<p><b><i>Cyberattacks and security incidents could harm our operations</i></b></p>
<p>A successful cyber attack on our network infrastructure could expose
confidential customer information, interrupt service availability, and
require costly remediation. Ransomware incidents targeting companies like
ours have increased in frequency and severity in recent years.</p>
<p><b><i>We depend on a limited number of suppliers for key components</i></b></p>
<p>The loss of a significant supplier, shortages of raw materials, or a
breakdown in our logistics network could delay manufacturing and reduce
shipment volumes. Qualifying alternative suppliers requires long lead
times and substantial engineering effort on our part.</p>
<p><b><i>Pending litigation could result in significant liability</i></b></p>
<p>We are party to various lawsuits and class action proceedings arising in
the ordinary course of business. Adverse outcomes could require substantial
payments and divert management attention from operating the business.</p>
<p>Item 1B. Unresolved Staff Comments</p>
<p>None.</p>
</body></html>`

func analyzeFixture(t *testing.T, industry string) Analysis {
	t.Helper()
	an, err := NewPipeline(nil).Analyze(context.Background(), Input{
		Raw:        []byte(filingHTML),
		Ext:        "html",
		Company:    "Acme Corp",
		Year:       2024,
		Industry:   industry,
		FilingType: "10-K",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return an
}

func TestAnalyzeEndToEnd(t *testing.T) {
	an := analyzeFixture(t, "")

	if an.Strategy != StrategyTypographic || an.Degraded {
		t.Errorf("strategy = %q degraded = %v", an.Strategy, an.Degraded)
	}

	blocks := an.Report.RiskBlocks
	if len(blocks) != 3 {
		t.Fatalf("expected 3 risk blocks, got %d: %+v", len(blocks), blocks)
	}
	wantThemes := []theme.Theme{theme.Cybersecurity, theme.SupplyChain, theme.Litigation}
	for i, want := range wantThemes {
		if blocks[i].Theme != want {
			t.Errorf("block %d theme = %q, want %q (title %q)", i, blocks[i].Theme, want, blocks[i].Title)
		}
		if blocks[i].BlockIndex != i {
			t.Errorf("block %d index = %d", i, blocks[i].BlockIndex)
		}
		if blocks[i].BlockID == "" {
			t.Errorf("block %d missing id", i)
		}
	}
	if !strings.Contains(blocks[0].Content, "interrupt service availability") {
		t.Errorf("block 0 content = %q", blocks[0].Content)
	}
	// The Item 1B terminator must not leak into the last block.
	if strings.Contains(blocks[2].Content, "Unresolved Staff Comments") {
		t.Errorf("section end leaked into content: %q", blocks[2].Content)
	}
}

func TestAnalyzeSectorInference(t *testing.T) {
	an := analyzeFixture(t, "")
	if !an.SectorInferred {
		t.Error("sector should have been inferred")
	}
	if got := an.Report.CompanyOverview.Industry; got != "Technology" {
		t.Errorf("industry = %q, want Technology (SIC 7372)", got)
	}

	an = analyzeFixture(t, "Networking")
	if an.SectorInferred || an.Report.CompanyOverview.Industry != "Networking" {
		t.Errorf("caller industry must win: %+v", an.Report.CompanyOverview)
	}
}

func TestAnalyzeBusinessOverview(t *testing.T) {
	an := analyzeFixture(t, "")
	ov := an.Report.BusinessOverview
	if !strings.Contains(ov, "network monitoring appliances") {
		t.Errorf("overview missing Item 1 text: %q", ov)
	}
	if strings.Contains(ov, "Ransomware") {
		t.Errorf("overview bled into Item 1A: %q", ov)
	}
	if len(ov) > overviewMaxChars {
		t.Errorf("overview length %d exceeds cap", len(ov))
	}
}

func TestAnalyzeMissingSection(t *testing.T) {
	_, err := NewPipeline(nil).Analyze(context.Background(), Input{
		Raw:     []byte("<html><body><p>Nothing resembling a filing.</p></body></html>"),
		Ext:     "html",
		Company: "Acme",
		Year:    2024,
	})
	if !errors.Is(err, section.ErrNotFound) {
		t.Errorf("want section.ErrNotFound, got %v", err)
	}
}

func TestAnalyzeUnsupportedExtension(t *testing.T) {
	_, err := NewPipeline(nil).Analyze(context.Background(), Input{
		Raw: []byte("x"), Ext: "docx", Company: "Acme", Year: 2024,
	})
	if !errors.Is(err, normalize.ErrUnsupportedInput) {
		t.Errorf("want ErrUnsupportedInput, got %v", err)
	}
}

func TestAnalyzePDFWithoutExtractor(t *testing.T) {
	_, err := NewPipeline(nil).Analyze(context.Background(), Input{
		Raw: []byte("%PDF-"), Ext: "pdf", Company: "Acme", Year: 2024,
	})
	if !errors.Is(err, ocr.ErrUnavailable) {
		t.Errorf("want ocr.ErrUnavailable, got %v", err)
	}
}

type fixedExtractor struct {
	text string
	err  error
}

func (f fixedExtractor) ExtractText(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

func TestAnalyzePDFPath(t *testing.T) {
	pdfText := `Item 1A. Risk Factors

Risks Related to Cybersecurity Threats

A successful cyber attack or ransomware incident could interrupt service
availability for our customers and expose confidential information held in
our systems, leading to remediation costs and loss of business.

Risks Related to Our Workforce

Our success depends on the retention of key personnel and skilled employees
across engineering and sales. Competition for talent in our labor markets
remains intense, and losing critical members of the workforce would slow
product development considerably.

Item 1B. Unresolved Staff Comments

None.`

	an, err := NewPipeline(fixedExtractor{text: pdfText}).Analyze(context.Background(), Input{
		Raw: []byte("%PDF-"), Ext: "pdf", Company: "Acme", Year: 2024, FilingType: "10-K",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if an.Strategy != StrategyParagraph || !an.Degraded {
		t.Errorf("pdf path should use the paragraph strategy: %+v", an)
	}
	if len(an.Report.RiskBlocks) < 2 {
		t.Fatalf("blocks = %+v", an.Report.RiskBlocks)
	}
}

func TestAnalyzePDFServiceFailure(t *testing.T) {
	_, err := NewPipeline(fixedExtractor{err: ocr.ErrJobFailed}).Analyze(context.Background(), Input{
		Raw: []byte("%PDF-"), Ext: "pdf", Company: "Acme", Year: 2024,
	})
	if !errors.Is(err, ocr.ErrJobFailed) {
		t.Errorf("service failure must propagate typed, got %v", err)
	}
}

func TestCompareShortCircuitsOnEmptyReport(t *testing.T) {
	full := report.Assemble(report.Meta{Company: "Acme", Year: 2024},
		[]segment.RiskBlock{{Title: "A", Content: "some risk content"}})
	empty := report.Assemble(report.Meta{Company: "Acme", Year: 2023}, nil)

	if _, err := Compare(empty, full, diff.DefaultConfig()); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty prior: want ErrInsufficientData, got %v", err)
	}
	if _, err := Compare(full, empty, diff.DefaultConfig()); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty latest: want ErrInsufficientData, got %v", err)
	}
}

func TestCompareProducesDiffReport(t *testing.T) {
	prior := report.Assemble(report.Meta{Company: "Acme", Year: 2023},
		[]segment.RiskBlock{{Title: "Cyber", Content: "cyber attacks threaten data security daily", Theme: theme.Cybersecurity}})
	latest := report.Assemble(report.Meta{Company: "Acme", Year: 2024},
		[]segment.RiskBlock{
			{Title: "Cyber", Content: "cyber attacks threaten data security daily", Theme: theme.Cybersecurity},
			{Title: "Climate", Content: "severe weather events could damage facilities", Theme: theme.Environmental},
		})

	d, err := Compare(prior, latest, diff.DefaultConfig())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if d.Company != "Acme" || d.PriorYear != 2023 || d.LatestYear != 2024 {
		t.Errorf("diff header = %+v", d)
	}
	if len(d.RiskChanges) != 1 || d.RiskChanges[0].ChangeType != diff.ChangeNew {
		t.Errorf("changes = %+v", d.RiskChanges)
	}
}

func TestInferSector(t *testing.T) {
	cases := map[string]string{
		"Standard Industrial Classification (SIC): 7372": "Technology",
		"SIC Code 2834":     "Manufacturing",
		"SIC: 5411":         "Retail",
		"SIC 4911":          "Utilities",
		"SIC 1311":          "Energy",
		"SIC 6021":          "Other",
		"no classification": "Unknown",
	}
	for in, want := range cases {
		if got := InferSector(in); got != want {
			t.Errorf("InferSector(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBusinessOverviewTrimsAtSentence(t *testing.T) {
	long := strings.Repeat("This sentence pads the business overview well past the cap. ", 60)
	got := BusinessOverview(long)
	if len(got) > overviewMaxChars {
		t.Errorf("overview length %d exceeds cap", len(got))
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("overview should end at a sentence boundary: %q", got[len(got)-20:])
	}

	withDisclaimer := "We make widgets.\nThis report contains forward-looking statements.\nOur widgets are popular."
	got = BusinessOverview(withDisclaimer)
	if strings.Contains(got, "forward-looking") {
		t.Errorf("disclaimer not filtered: %q", got)
	}
}
