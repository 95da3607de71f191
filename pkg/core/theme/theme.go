// Package theme assigns coarse risk categories to text via keyword scoring.
// This is a deliberately simple heuristic: accuracy is bounded by keyword
// coverage, and unknown text falls through to "other".
package theme

import "strings"

// Theme is a risk category label from the fixed taxonomy.
type Theme string

const (
	Cybersecurity Theme = "cybersecurity"
	Regulatory    Theme = "regulatory"
	SupplyChain   Theme = "supply_chain"
	Geopolitical  Theme = "geopolitical"
	Competition   Theme = "competition"
	Macro         Theme = "macro"
	Financial     Theme = "financial"
	Technology    Theme = "technology"
	Environmental Theme = "environmental"
	Talent        Theme = "talent"
	Litigation    Theme = "litigation"
	Reputational  Theme = "reputational"
	Other         Theme = "other"
)

// Taxonomy lists every theme in declaration order. Order matters: it breaks
// ties when two themes reach the same keyword score.
var Taxonomy = []Theme{
	Cybersecurity, Regulatory, SupplyChain, Geopolitical, Competition,
	Macro, Financial, Technology, Environmental, Talent, Litigation,
	Reputational,
}

// keywords maps each theme to its marker substrings. Matching is
// case-insensitive; entries with leading/trailing spaces are word-boundary
// approximations (" ai " must not match "repair"). The table is static
// configuration: loaded once, never mutated, safe for concurrent use.
var keywords = map[Theme][]string{
	Cybersecurity: {
		"cyber", "data breach", "information security", "hacking",
		"ransomware", "data protection", "phishing", "malware",
	},
	Regulatory: {
		"regulat", "compliance", "government", "legislation",
		"law ", " legal", "sec ", "fda ", "antitrust", "enforcement",
	},
	SupplyChain: {
		"supply chain", "supplier", "logistics", "procurement",
		"shortage", "inventory", "raw material",
	},
	Geopolitical: {
		"geopolit", "sanction", "tariff", "trade war",
		"international conflict", "foreign government", "political instability",
	},
	Competition: {
		"competi", "market share", "rival", "pricing pressure",
		"new entrant", "disrupt",
	},
	Macro: {
		"macroeconom", "recession", "inflation", "interest rate",
		"economic downturn", "gdp", "unemployment", "monetary policy",
	},
	Financial: {
		"liquidity", "credit risk", "debt", "capital adequacy",
		"financial condition", "cash flow", "impairment", "goodwill",
	},
	Technology: {
		"technolog", "innovation", "obsolescence", "digital transformation",
		"artificial intelligence", " ai ", "cloud computing",
	},
	Environmental: {
		"climate", "environmental", "sustainability", "emission",
		"carbon", " esg", "natural disaster", "weather",
	},
	Talent: {
		"talent", "employee", "workforce", "labor",
		"retention", "hiring", "key personnel", "human capital",
	},
	Litigation: {
		"litigation", "lawsuit", "legal proceeding", "class action",
		"patent", "intellectual property",
	},
	Reputational: {
		"reputation", "brand", "public perception", "media",
		"social media", "consumer trust",
	},
}

// Classify scores each theme by the count of its keywords present in the
// text and returns the highest-scoring theme. Ties go to the theme declared
// first in the taxonomy; a zero score everywhere yields Other.
func Classify(text string) Theme {
	lower := strings.ToLower(text)

	best := Other
	bestScore := 0
	for _, th := range Taxonomy {
		score := 0
		for _, kw := range keywords[th] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = th
			bestScore = score
		}
	}
	return best
}

// Keywords returns the marker list for a theme. Exposed for tests and for
// report tooling that explains why a theme was chosen.
func Keywords(th Theme) []string {
	return keywords[th]
}
