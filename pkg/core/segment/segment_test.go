package segment

import (
	"strings"
	"testing"
)

func TestParagraphSegmenterHeadings(t *testing.T) {
	section := strings.Join([]string{
		"Risks Related to Cybersecurity Threats",
		"",
		"A successful attack on our systems could expose customer data and interrupt operations for an extended period of time.",
		"",
		"Risks Related to Government Regulation",
		"",
		"New legislation could require costly changes to our products and delay launches in key markets around the world.",
	}, "\n")

	blocks := ParagraphSegmenter{}.Segment(section)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Title != "Risks Related to Cybersecurity Threats" {
		t.Errorf("block 0 title = %q", blocks[0].Title)
	}
	if !strings.Contains(blocks[0].Content, "expose customer data") {
		t.Errorf("block 0 content wrong: %q", blocks[0].Content)
	}
	if blocks[1].Title != "Risks Related to Government Regulation" {
		t.Errorf("block 1 title = %q", blocks[1].Title)
	}
}

func TestParagraphSegmenterSynthesizesTitles(t *testing.T) {
	body := "Demand for our products may decline. Consumer spending is cyclical and a downturn would reduce our revenue significantly across all operating segments."
	blocks := ParagraphSegmenter{}.Segment(body)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Title != "Demand for our products may decline" {
		t.Errorf("first-sentence title expected, got %q", blocks[0].Title)
	}
}

func TestParagraphSegmenterFiltersBoilerplate(t *testing.T) {
	section := strings.Join([]string{
		"This report contains forward-looking statements within the meaning of the securities laws and should not be relied upon.",
		"",
		"Supply shortages of key components could materially delay production schedules and increase our unit costs in future periods.",
	}, "\n")
	blocks := ParagraphSegmenter{}.Segment(section)
	if len(blocks) != 1 {
		t.Fatalf("expected boilerplate filtered, got %d blocks", len(blocks))
	}
	if strings.Contains(blocks[0].Content, "forward-looking") {
		t.Errorf("boilerplate survived: %q", blocks[0].Content)
	}
}

func TestFinishFallbackBlock(t *testing.T) {
	// Every paragraph under 40 chars: segmentation yields nothing, the
	// finishing step must emit a single raw-text fallback block.
	raw := "Short one.\n\nTiny.\n\nAlso small."
	blocks := ParagraphSegmenter{}.Segment(raw)
	if len(blocks) != 0 {
		t.Fatalf("expected zero blocks before finish, got %d", len(blocks))
	}
	finished := Finish(blocks, raw)
	if len(finished) != 1 {
		t.Fatalf("expected exactly one fallback block, got %d", len(finished))
	}
	if finished[0].Content != raw {
		t.Errorf("fallback should carry the raw section text")
	}
	if finished[0].EvidencePointer != "fallback_raw_section" {
		t.Errorf("fallback evidence pointer = %q", finished[0].EvidencePointer)
	}
}

func TestFinishTruncatesLongFallback(t *testing.T) {
	raw := strings.Repeat("x", 9000)
	finished := Finish(nil, raw)
	if len(finished) != 1 || len(finished[0].Content) != 6000 {
		t.Fatalf("fallback must carry the first 6000 chars, got %d", len(finished[0].Content))
	}
}

func TestFinishAssignsIndexesAndTruncatesTitles(t *testing.T) {
	long := strings.Repeat("risk factors and more ", 20)
	blocks := Finish([]RiskBlock{
		{Title: "First", Content: "a"},
		{Title: long, Content: "b"},
	}, "irrelevant")
	if blocks[0].BlockIndex != 0 || blocks[1].BlockIndex != 1 {
		t.Errorf("indexes not assigned in order: %+v", blocks)
	}
	if len(blocks[1].Title) > maxTitleLen+4 {
		t.Errorf("title not truncated: %d chars", len(blocks[1].Title))
	}
}

func TestFinishEmptySection(t *testing.T) {
	if got := Finish(nil, "   "); got != nil {
		t.Errorf("blank section must yield nil, got %+v", got)
	}
}

func TestCoverageInvariant(t *testing.T) {
	// Concatenated block contents must preserve at least 90% of the
	// non-boilerplate characters of the section.
	var sb strings.Builder
	paras := []string{
		"Risks Related to Competition",
		"Our industry is intensely competitive and rivals may introduce products that make ours obsolete before we can respond effectively.",
		"Risks Related to International Operations",
		"Tariffs, sanctions, and political instability in the regions where we manufacture could interrupt our ability to deliver products on schedule.",
		"A natural disaster affecting our data centers could degrade service for a prolonged period and harm our reputation with customers.",
	}
	for _, p := range paras {
		sb.WriteString(p + "\n\n")
	}
	section := sb.String()

	blocks := Finish(ParagraphSegmenter{}.Segment(section), section)
	if len(blocks) == 0 {
		t.Fatal("no blocks produced")
	}
	var kept int
	for _, b := range blocks {
		kept += len(b.Content)
		if !strings.HasPrefix(b.Title, "Risks Related") && b.Title == "" {
			t.Errorf("block without title: %+v", b)
		}
	}
	// Title paragraphs become titles, not content, so compare against the
	// body paragraphs only.
	var body int
	for _, p := range paras {
		if !strings.HasPrefix(p, "Risks Related") {
			body += len(p)
		}
	}
	if float64(kept) < 0.9*float64(body) {
		t.Errorf("coverage %d of %d body chars (<90%%)", kept, body)
	}
}
