// Package compare exposes the year-over-year comparison endpoint.
package compare

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"riskdelta/pkg/core/diff"
	"riskdelta/pkg/core/export"
	"riskdelta/pkg/core/extract"
	"riskdelta/pkg/core/llm"
	"riskdelta/pkg/core/store"
)

var (
	repo      *store.ReportRepo
	cfg       diff.Config
	explainer *llm.Explainer
)

// InitHandler wires the repository, matcher configuration, and the
// optional explanation rephraser (nil disables it).
func InitHandler(r *store.ReportRepo, c diff.Config, e *llm.Explainer) {
	repo = r
	cfg = c
	explainer = e
}

type compareRequest struct {
	Company    string `json:"company"`
	PriorYear  int    `json:"prior_year"`
	LatestYear int    `json:"latest_year"`
	FilingType string `json:"filing_type"`
	// Top caps the change list; 0 means the configured default.
	Top int `json:"top"`
	// Explain asks the LLM to rephrase explanations when a provider is
	// configured. Classification and scores are never model-driven.
	Explain bool `json:"explain"`
	// Format: "json" (default) or "markdown".
	Format string `json:"format"`
}

// HandleCompare loads the two stored reports, diffs them, persists the
// result, and returns it.
func HandleCompare(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Company == "" || req.PriorYear <= 0 || req.LatestYear <= 0 {
		http.Error(w, "company, prior_year, and latest_year are required", http.StatusBadRequest)
		return
	}
	if req.PriorYear >= req.LatestYear {
		http.Error(w, "prior_year must be before latest_year", http.StatusBadRequest)
		return
	}
	if req.FilingType == "" {
		req.FilingType = "10-K"
	}

	prior, err := repo.LoadReport(r.Context(), req.Company, req.PriorYear, req.FilingType)
	if err != nil {
		reportLoadError(w, "prior", req.PriorYear, err)
		return
	}
	latest, err := repo.LoadReport(r.Context(), req.Company, req.LatestYear, req.FilingType)
	if err != nil {
		reportLoadError(w, "latest", req.LatestYear, err)
		return
	}

	d, err := extract.Compare(prior, latest, cfg)
	if err != nil {
		if errors.Is(err, extract.ErrInsufficientData) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("[Compare] %s %d vs %d: %d changes", req.Company, req.PriorYear, req.LatestYear, len(d.RiskChanges))

	if req.Explain && explainer != nil {
		explainer.Rephrase(r.Context(), d.RiskChanges)
	}

	if err := repo.SaveDiff(r.Context(), d); err != nil {
		http.Error(w, fmt.Sprintf("store diff: %v", err), http.StatusInternalServerError)
		return
	}

	top := req.Top
	if top <= 0 {
		top = cfg.TopChanges
	}

	if req.Format == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, export.DiffMarkdown(d, top))
		return
	}

	if top > 0 && len(d.RiskChanges) > top {
		d.RiskChanges = d.RiskChanges[:top]
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(d); err != nil {
		log.Printf("[Compare] encode response: %v", err)
	}
}

func reportLoadError(w http.ResponseWriter, side string, year int, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, fmt.Sprintf("no stored report for %s filing year %d; analyze it first", side, year), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
