// Package diff matches risk blocks across two filings of the same company
// and classifies every block as NEW, REMOVED, or MODIFIED. Matching is
// greedy best-first over a similarity matrix: deterministic, no recursion,
// and each block is consumed at most once.
package diff

import (
	"math"
	"sort"

	"riskdelta/pkg/core/segment"
	"riskdelta/pkg/core/theme"
)

// ChangeType classifies a block's fate across two filings.
type ChangeType string

const (
	ChangeNew      ChangeType = "NEW"
	ChangeRemoved  ChangeType = "REMOVED"
	ChangeModified ChangeType = "MODIFIED"
)

// Config holds the tunable matching parameters. The source material for this
// pipeline never settled on single canonical values, so everything is
// explicit configuration with documented defaults.
type Config struct {
	// Threshold is the minimum similarity for a prior/latest pair to be
	// considered the same risk at all.
	Threshold float64 `yaml:"threshold" json:"threshold"`
	// IdenticalThreshold marks near-duplicates; pairs at or above it are
	// suppressed from the change list.
	IdenticalThreshold float64 `yaml:"identical_threshold" json:"identical_threshold"`
	// OrphanScore is assigned to NEW/REMOVED blocks with no counterpart on
	// the other side at all.
	OrphanScore int `yaml:"orphan_score" json:"orphan_score"`
	// MinModifiedScore floors MODIFIED scores so a barely-changed block
	// never reads as zero change.
	MinModifiedScore int `yaml:"min_modified_score" json:"min_modified_score"`
	// TopChanges caps the ranked change list in the top-changes view.
	TopChanges int `yaml:"top_changes" json:"top_changes"`
}

// DefaultConfig returns the defaults: 0.55 acceptance, 0.85 near-identical,
// orphan score 90, modified floor 5, top 15 changes.
func DefaultConfig() Config {
	return Config{
		Threshold:          0.55,
		IdenticalThreshold: 0.85,
		OrphanScore:        90,
		MinModifiedScore:   5,
		TopChanges:         15,
	}
}

// MatchedPair is an accepted prior/latest pairing.
type MatchedPair struct {
	PriorIndex  int     `json:"prior_index"`
	LatestIndex int     `json:"latest_index"`
	Similarity  float64 `json:"similarity"`
	// Identical marks pairs at or above the identical threshold; they are
	// matched but not reported as MODIFIED.
	Identical bool `json:"identical"`
}

// Result holds the full matching outcome. Matched, New, and Removed
// partition both block sets: every prior index lands in exactly one of
// Matched/Removed and every latest index in exactly one of Matched/New.
type Result struct {
	Prior   []segment.RiskBlock `json:"-"`
	Latest  []segment.RiskBlock `json:"-"`
	Matched []MatchedPair       `json:"matched"`
	New     []int               `json:"new"`
	Removed []int               `json:"removed"`

	cfg Config
	// best similarity seen per unmatched index, used for scoring orphans
	bestForPrior  []float64
	bestForLatest []float64
}

// ChangeRecord is one entry in the ranked change list. Field names follow
// the report JSON contract.
type ChangeRecord struct {
	RiskTheme        theme.Theme `json:"risk_theme"`
	ChangeType       ChangeType  `json:"change_type"`
	ChangeScore      int         `json:"change_score"`
	ShortExplanation string      `json:"short_explanation"`
	OldText          *string     `json:"old_text"`
	NewText          *string     `json:"new_text"`
	PriorBlockID     string      `json:"prior_block_id,omitempty"`
	LatestBlockID    string      `json:"latest_block_id,omitempty"`
}

type candidate struct {
	i, j int
	sim  float64
}

// Diff computes the similarity matrix, greedily accepts the best pairs above
// the threshold, and classifies the leftovers.
func Diff(prior, latest []segment.RiskBlock, cfg Config) Result {
	if cfg.Threshold == 0 && cfg.IdenticalThreshold == 0 {
		cfg = DefaultConfig()
	}

	res := Result{
		Prior:         prior,
		Latest:        latest,
		cfg:           cfg,
		bestForPrior:  make([]float64, len(prior)),
		bestForLatest: make([]float64, len(latest)),
	}

	var candidates []candidate
	for i := range prior {
		for j := range latest {
			sim := Similarity(blockText(prior[i]), blockText(latest[j]))
			if sim > res.bestForPrior[i] {
				res.bestForPrior[i] = sim
			}
			if sim > res.bestForLatest[j] {
				res.bestForLatest[j] = sim
			}
			if sim >= cfg.Threshold {
				candidates = append(candidates, candidate{i: i, j: j, sim: sim})
			}
		}
	}

	// Best-first, with a lexicographic tie-break for deterministic output.
	sort.Slice(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.sim != cb.sim {
			return ca.sim > cb.sim
		}
		if ca.i != cb.i {
			return ca.i < cb.i
		}
		return ca.j < cb.j
	})

	usedPrior := make([]bool, len(prior))
	usedLatest := make([]bool, len(latest))
	for _, c := range candidates {
		if usedPrior[c.i] || usedLatest[c.j] {
			continue
		}
		usedPrior[c.i] = true
		usedLatest[c.j] = true
		res.Matched = append(res.Matched, MatchedPair{
			PriorIndex:  c.i,
			LatestIndex: c.j,
			Similarity:  c.sim,
			Identical:   c.sim >= cfg.IdenticalThreshold,
		})
	}

	for j := range latest {
		if !usedLatest[j] {
			res.New = append(res.New, j)
		}
	}
	for i := range prior {
		if !usedPrior[i] {
			res.Removed = append(res.Removed, i)
		}
	}
	return res
}

// blockText is the representation fed to the similarity function: title and
// content together, so retitled-but-unchanged blocks still match.
func blockText(b segment.RiskBlock) string {
	return b.Title + "\n" + b.Content
}

// orphanScore scores a NEW/REMOVED block: total change unless a
// sub-threshold best similarity is known.
func (r Result) orphanScore(best float64, otherSideEmpty bool) int {
	if otherSideEmpty || best == 0 {
		return r.cfg.OrphanScore
	}
	return int(math.Round((1 - best) * 100))
}

// Changes produces the ranked change list: NEW first, then REMOVED, then
// MODIFIED, each group ordered by descending score. Near-identical matched
// pairs are suppressed; use Matched on the Result to see them.
func (r Result) Changes() []ChangeRecord {
	var out []ChangeRecord

	newRecs := make([]ChangeRecord, 0, len(r.New))
	for _, j := range r.New {
		b := r.Latest[j]
		newRecs = append(newRecs, ChangeRecord{
			RiskTheme:        themeOrOther(b.Theme),
			ChangeType:       ChangeNew,
			ChangeScore:      r.orphanScore(r.bestForLatest[j], len(r.Prior) == 0),
			ShortExplanation: "This risk block does not appear in the prior filing (or is substantially different).",
			NewText:          strPtr(b.Content),
			LatestBlockID:    b.BlockID,
		})
	}

	removedRecs := make([]ChangeRecord, 0, len(r.Removed))
	for _, i := range r.Removed {
		b := r.Prior[i]
		removedRecs = append(removedRecs, ChangeRecord{
			RiskTheme:        themeOrOther(b.Theme),
			ChangeType:       ChangeRemoved,
			ChangeScore:      r.orphanScore(r.bestForPrior[i], len(r.Latest) == 0),
			ShortExplanation: "This risk block appears in the prior filing but not in the latest filing.",
			OldText:          strPtr(b.Content),
			PriorBlockID:     b.BlockID,
		})
	}

	var modifiedRecs []ChangeRecord
	for _, m := range r.Matched {
		if m.Identical {
			continue
		}
		pb, lb := r.Prior[m.PriorIndex], r.Latest[m.LatestIndex]
		score := int(math.Round((1 - m.Similarity) * 100))
		if score < r.cfg.MinModifiedScore {
			score = r.cfg.MinModifiedScore
		}
		modifiedRecs = append(modifiedRecs, ChangeRecord{
			RiskTheme:        themeOrOther(lb.Theme),
			ChangeType:       ChangeModified,
			ChangeScore:      score,
			ShortExplanation: "This risk block exists in both filings but the wording changed materially.",
			OldText:          strPtr(pb.Content),
			NewText:          strPtr(lb.Content),
			PriorBlockID:     pb.BlockID,
			LatestBlockID:    lb.BlockID,
		})
	}

	for _, group := range [][]ChangeRecord{newRecs, removedRecs, modifiedRecs} {
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].ChangeScore > group[b].ChangeScore
		})
		out = append(out, group...)
	}
	return out
}

// TopChanges caps the ranked list at n entries (n <= 0 means the configured
// default).
func (r Result) TopChanges(n int) []ChangeRecord {
	if n <= 0 {
		n = r.cfg.TopChanges
	}
	changes := r.Changes()
	if n > 0 && len(changes) > n {
		changes = changes[:n]
	}
	return changes
}

func themeOrOther(th theme.Theme) theme.Theme {
	if th == "" {
		return theme.Other
	}
	return th
}

func strPtr(s string) *string { return &s }
