// Package tables pulls financial tables out of filing HTML and sorts them
// into the three primary statements. Classification is weighted keyword
// scoring over the table's own cell text; it is a heuristic, so everything
// below the confidence threshold lands in other_tables rather than being
// guessed at.
package tables

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxTables bounds how many tables a single filing contributes. Large
	// 10-Ks carry hundreds of layout tables and only the first portion of
	// the document holds the statements.
	MaxTables = 40

	minScore = 4.0
)

// Table is a parsed HTML table: header row plus string cells.
type Table struct {
	Shape   [2]int     `json:"shape"`
	Columns []string   `json:"columns"`
	Data    [][]string `json:"data"`
}

// Bundle groups a filing's tables by statement kind.
type Bundle struct {
	BalanceSheet    []Table `json:"balance_sheet"`
	IncomeStatement []Table `json:"income_statement"`
	CashFlow        []Table `json:"cash_flow"`
	OtherTables     []Table `json:"other_tables"`
	Note            string  `json:"note,omitempty"`
}

// Count returns the total number of tables across all categories.
func (b Bundle) Count() int {
	return len(b.BalanceSheet) + len(b.IncomeStatement) + len(b.CashFlow) + len(b.OtherTables)
}

type weightedKeyword struct {
	phrase string
	weight float64
}

var categoryKeywords = map[string][]weightedKeyword{
	"income_statement": {
		{"statement of operations", 5.0},
		{"statements of operations", 5.0},
		{"income statement", 5.0},
		{"statements of income", 5.0},
		{"statement of earnings", 5.0},
		{"results of operations", 4.0},
		{"net sales", 2.0},
		{"net revenue", 2.0},
		{"cost of sales", 2.0},
		{"cost of goods sold", 2.0},
		{"gross profit", 2.0},
		{"gross margin", 2.0},
		{"earnings per share", 2.0},
		{"operating income", 1.5},
		{"operating expenses", 1.5},
		{"net income", 1.5},
		{"income tax", 1.0},
	},
	"balance_sheet": {
		{"balance sheet", 5.0},
		{"balance sheets", 5.0},
		{"statement of financial position", 5.0},
		{"financial position", 4.0},
		{"total assets", 3.0},
		{"total liabilities", 3.0},
		{"stockholders equity", 2.5},
		{"shareholders equity", 2.5},
		{"current assets", 2.0},
		{"current liabilities", 2.0},
		{"total equity", 2.0},
		{"accounts receivable", 1.5},
		{"accounts payable", 1.5},
		{"retained earnings", 1.5},
		{"property plant and equipment", 1.5},
		{"goodwill", 1.0},
	},
	"cash_flow": {
		{"statement of cash flows", 5.0},
		{"statements of cash flows", 5.0},
		{"cash flow statement", 5.0},
		{"cash flows", 4.0},
		{"operating activities", 3.0},
		{"investing activities", 3.0},
		{"financing activities", 3.0},
		{"cash and cash equivalents", 2.0},
		{"net cash", 2.0},
		{"depreciation and amortization", 1.5},
		{"capital expenditures", 1.5},
		{"dividends paid", 1.0},
	},
}

// FromHTML parses the raw filing and classifies up to MaxTables tables.
func FromHTML(raw []byte) (*Bundle, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("tables: parse html: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument classifies the tables of an already-parsed filing.
func FromDocument(doc *goquery.Document) *Bundle {
	bundle := &Bundle{
		BalanceSheet:    []Table{},
		IncomeStatement: []Table{},
		CashFlow:        []Table{},
		OtherTables:     []Table{},
	}

	doc.Find("table").EachWithBreak(func(n int, sel *goquery.Selection) bool {
		if bundle.Count() >= MaxTables {
			return false
		}
		tbl, ok := parseTable(sel)
		if !ok {
			return true
		}
		switch classify(tbl) {
		case "balance_sheet":
			bundle.BalanceSheet = append(bundle.BalanceSheet, tbl)
		case "income_statement":
			bundle.IncomeStatement = append(bundle.IncomeStatement, tbl)
		case "cash_flow":
			bundle.CashFlow = append(bundle.CashFlow, tbl)
		default:
			bundle.OtherTables = append(bundle.OtherTables, tbl)
		}
		return true
	})

	bundle.Note = fmt.Sprintf("extracted %d tables from HTML", bundle.Count())
	return bundle
}

// parseTable reads a <table>: the first row becomes the header, the rest
// become data. Tables with no cells at all are skipped.
func parseTable(sel *goquery.Selection) (Table, bool) {
	var rows [][]string
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	if len(rows) == 0 {
		return Table{}, false
	}

	columns := rows[0]
	data := rows[1:]
	if data == nil {
		data = [][]string{}
	}
	width := len(columns)
	for _, r := range data {
		if len(r) > width {
			width = len(r)
		}
	}
	return Table{
		Shape:   [2]int{len(data), width},
		Columns: columns,
		Data:    data,
	}, true
}

// classify scores the flattened cell text against each category's weighted
// keywords. Larger tables get a small bonus since real statements are long.
func classify(t Table) string {
	var parts []string
	parts = append(parts, t.Columns...)
	for _, row := range t.Data {
		parts = append(parts, row...)
	}
	text := strings.ToLower(strings.Join(parts, " "))

	best, bestScore := "other_tables", 0.0
	for _, cat := range []string{"income_statement", "balance_sheet", "cash_flow"} {
		score := 0.0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(text, kw.phrase) {
				score += kw.weight
			}
		}
		if len(t.Data) >= 10 {
			score += 1.0
		}
		if len(t.Data) >= 20 {
			score += 1.0
		}
		if score >= minScore && score > bestScore {
			best, bestScore = cat, score
		}
	}
	return best
}
