// Package export renders reports as Markdown for download and review.
package export

import (
	"fmt"
	"strings"

	"riskdelta/pkg/core/report"
	"riskdelta/pkg/core/utils"
)

// ReportMarkdown renders a filing report as a Markdown document.
func ReportMarkdown(rep report.FilingReport) string {
	ov := rep.CompanyOverview
	var b strings.Builder

	fmt.Fprintf(&b, "# %s — %s %d Risk Factors\n\n", ov.Company, orDash(ov.FilingType), ov.Year)
	fmt.Fprintf(&b, "- **Industry:** %s\n", orDash(ov.Industry))
	fmt.Fprintf(&b, "- **Source:** %s\n", orDash(ov.Source))
	fmt.Fprintf(&b, "- **Scope:** %s\n\n", orDash(ov.Scope))

	if rep.BusinessOverview != "" {
		b.WriteString("## Business Overview\n\n")
		b.WriteString(rep.BusinessOverview)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "## Risk Blocks (%d)\n\n", len(rep.RiskBlocks))
	if rep.Empty() {
		b.WriteString("_No risk blocks were extracted from this filing._\n")
	}
	for _, blk := range rep.RiskBlocks {
		fmt.Fprintf(&b, "### %d. %s\n\n", blk.BlockIndex+1, blk.Title)
		if blk.Theme != "" {
			fmt.Fprintf(&b, "*Theme: %s*\n\n", blk.Theme)
		}
		b.WriteString(blk.Content)
		b.WriteString("\n\n")
	}

	if rep.FinancialTables != nil && rep.FinancialTables.Count() > 0 {
		ft := rep.FinancialTables
		b.WriteString("## Financial Tables\n\n")
		fmt.Fprintf(&b, "- Balance sheet: %d\n", len(ft.BalanceSheet))
		fmt.Fprintf(&b, "- Income statement: %d\n", len(ft.IncomeStatement))
		fmt.Fprintf(&b, "- Cash flow: %d\n", len(ft.CashFlow))
		fmt.Fprintf(&b, "- Other: %d\n\n", len(ft.OtherTables))
	}

	return utils.CleanMarkdown(b.String()) + "\n"
}

// DiffMarkdown renders a year-over-year comparison as a Markdown document.
// topN caps the listed changes; topN <= 0 lists everything.
func DiffMarkdown(d report.DiffReport, topN int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s — Risk Factor Changes %d vs %d\n\n", d.Company, d.PriorYear, d.LatestYear)

	changes := d.RiskChanges
	if topN > 0 && len(changes) > topN {
		fmt.Fprintf(&b, "Showing top %d of %d changes.\n\n", topN, len(changes))
		changes = changes[:topN]
	} else {
		fmt.Fprintf(&b, "%d changes.\n\n", len(changes))
	}

	if len(changes) == 0 {
		b.WriteString("_No material changes between the two filings._\n")
	}
	for i, c := range changes {
		fmt.Fprintf(&b, "## %d. [%s] score %d — %s\n\n", i+1, c.ChangeType, c.ChangeScore, c.RiskTheme)
		fmt.Fprintf(&b, "%s\n\n", c.ShortExplanation)
		if c.OldText != nil {
			fmt.Fprintf(&b, "**Prior wording:**\n\n> %s\n\n", quote(*c.OldText))
		}
		if c.NewText != nil {
			fmt.Fprintf(&b, "**Latest wording:**\n\n> %s\n\n", quote(*c.NewText))
		}
	}

	return utils.CleanMarkdown(b.String()) + "\n"
}

// quote keeps multi-line excerpts inside one blockquote.
func quote(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n> ")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
