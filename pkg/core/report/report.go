// Package report assembles extraction and comparison results into the
// canonical JSON payloads the API and exporters emit. Assembly is pure:
// no I/O, no mutation of the input blocks.
package report

import (
	"fmt"

	"github.com/google/uuid"

	"riskdelta/pkg/core/diff"
	"riskdelta/pkg/core/segment"
	"riskdelta/pkg/core/tables"
)

const (
	// DefaultSource identifies where filings come from when the caller
	// does not say otherwise.
	DefaultSource = "SEC EDGAR (HTML filing)"

	scopeNotice      = "Item 1A - Risk Factors (text-only)"
	scopeNoticeEmpty = "Item 1A - Risk Factors (text-only); extraction produced no risk blocks"
)

// CompanyOverview carries caller-supplied filing metadata. Values are
// accepted as-is; nothing here is derived from external lookups.
type CompanyOverview struct {
	Company    string `json:"company"`
	Industry   string `json:"industry"`
	Year       int    `json:"year"`
	FilingType string `json:"filing_type"`
	Source     string `json:"source"`
	Scope      string `json:"scope"`
}

// FilingReport is the per-filing analysis payload.
type FilingReport struct {
	CompanyOverview CompanyOverview     `json:"company_overview"`
	RiskBlocks      []segment.RiskBlock `json:"risk_blocks"`

	// BusinessOverview is the trimmed Item 1 text, when available.
	BusinessOverview string `json:"business_overview,omitempty"`
	// FinancialTables is the classified table bundle, when extracted.
	FinancialTables *tables.Bundle `json:"financial_tables,omitempty"`
}

// DiffReport is the year-over-year comparison payload.
type DiffReport struct {
	Company     string              `json:"company"`
	LatestYear  int                 `json:"latest_year"`
	PriorYear   int                 `json:"prior_year"`
	RiskChanges []diff.ChangeRecord `json:"risk_changes"`
}

// Meta is the caller-supplied identity of a filing.
type Meta struct {
	Company    string
	Year       int
	Industry   string
	FilingType string
	Source     string
}

// Assemble builds a FilingReport from extracted blocks. Blocks get fresh
// ids where missing; a zero-block report is valid but the scope notice
// says so, because a silent empty report looks like a successful one.
func Assemble(meta Meta, blocks []segment.RiskBlock) FilingReport {
	source := meta.Source
	if source == "" {
		source = DefaultSource
	}
	scope := scopeNotice
	if len(blocks) == 0 {
		scope = scopeNoticeEmpty
	}

	out := make([]segment.RiskBlock, len(blocks))
	copy(out, blocks)
	for i := range out {
		if out[i].BlockID == "" {
			out[i].BlockID = uuid.NewString()
		}
	}

	return FilingReport{
		CompanyOverview: CompanyOverview{
			Company:    meta.Company,
			Industry:   meta.Industry,
			Year:       meta.Year,
			FilingType: meta.FilingType,
			Source:     source,
			Scope:      scope,
		},
		RiskBlocks: out,
	}
}

// AssembleDiff wraps a change list in the comparison payload.
func AssembleDiff(company string, priorYear, latestYear int, changes []diff.ChangeRecord) DiffReport {
	if changes == nil {
		changes = []diff.ChangeRecord{}
	}
	return DiffReport{
		Company:     company,
		LatestYear:  latestYear,
		PriorYear:   priorYear,
		RiskChanges: changes,
	}
}

// Validate rejects payloads that cannot have come from the pipeline.
func (r FilingReport) Validate() error {
	if r.CompanyOverview.Company == "" {
		return fmt.Errorf("report: missing company")
	}
	if r.CompanyOverview.Year <= 0 {
		return fmt.Errorf("report: missing or invalid year %d", r.CompanyOverview.Year)
	}
	for i, b := range r.RiskBlocks {
		if b.Content == "" {
			return fmt.Errorf("report: risk block %d has empty content", i)
		}
	}
	return nil
}

// Empty reports whether extraction produced no blocks.
func (r FilingReport) Empty() bool { return len(r.RiskBlocks) == 0 }
