package report

import (
	"encoding/json"
	"strings"
	"testing"

	"riskdelta/pkg/core/segment"
	"riskdelta/pkg/core/theme"
)

func TestAssembleFieldNames(t *testing.T) {
	rep := Assemble(Meta{Company: "Acme", Year: 2024, Industry: "Technology", FilingType: "10-K"},
		[]segment.RiskBlock{{Title: "Cyber", Content: "attacks happen", Theme: theme.Cybersecurity}})

	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, field := range []string{
		`"company_overview"`, `"company"`, `"industry"`, `"year"`,
		`"filing_type"`, `"source"`, `"scope"`, `"risk_blocks"`,
		`"title"`, `"content"`, `"risk_theme"`, `"block_id"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("payload missing field %s: %s", field, data)
		}
	}
}

func TestAssembleAssignsBlockIDs(t *testing.T) {
	blocks := []segment.RiskBlock{
		{Title: "A", Content: "a"},
		{Title: "B", Content: "b", BlockID: "keep-me"},
	}
	rep := Assemble(Meta{Company: "Acme", Year: 2024}, blocks)

	if rep.RiskBlocks[0].BlockID == "" {
		t.Error("missing block id was not assigned")
	}
	if rep.RiskBlocks[1].BlockID != "keep-me" {
		t.Errorf("existing block id overwritten: %q", rep.RiskBlocks[1].BlockID)
	}
	// Assembly never mutates the caller's blocks.
	if blocks[0].BlockID != "" {
		t.Error("input slice was mutated")
	}
}

func TestAssembleZeroBlocksFlagged(t *testing.T) {
	rep := Assemble(Meta{Company: "Acme", Year: 2024, FilingType: "10-K"}, nil)
	if !rep.Empty() {
		t.Fatal("report should be empty")
	}
	if !strings.Contains(rep.CompanyOverview.Scope, "no risk blocks") {
		t.Errorf("empty extraction must be visible in the scope notice: %q", rep.CompanyOverview.Scope)
	}

	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"risk_blocks": []`) && !strings.Contains(string(data), `"risk_blocks":[]`) {
		t.Errorf("risk_blocks must serialize as [], got %s", data)
	}
}

func TestAssembleDefaultSource(t *testing.T) {
	rep := Assemble(Meta{Company: "Acme", Year: 2024}, nil)
	if rep.CompanyOverview.Source != DefaultSource {
		t.Errorf("source = %q", rep.CompanyOverview.Source)
	}
	rep = Assemble(Meta{Company: "Acme", Year: 2024, Source: "manual upload"}, nil)
	if rep.CompanyOverview.Source != "manual upload" {
		t.Errorf("caller source ignored: %q", rep.CompanyOverview.Source)
	}
}

func TestAssembleDiffFieldNames(t *testing.T) {
	d := AssembleDiff("Acme", 2023, 2024, nil)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, field := range []string{`"company"`, `"latest_year":2024`, `"prior_year":2023`, `"risk_changes":[]`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("diff payload missing %s: %s", field, data)
		}
	}
}

func TestValidate(t *testing.T) {
	good := Assemble(Meta{Company: "Acme", Year: 2024}, []segment.RiskBlock{{Title: "A", Content: "a"}})
	if err := good.Validate(); err != nil {
		t.Errorf("valid report rejected: %v", err)
	}

	bad := good
	bad.CompanyOverview.Company = ""
	if err := bad.Validate(); err == nil {
		t.Error("missing company accepted")
	}

	bad = good
	bad.RiskBlocks = []segment.RiskBlock{{Title: "A"}}
	if err := bad.Validate(); err == nil {
		t.Error("empty block content accepted")
	}
}
