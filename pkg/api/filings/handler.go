// Package filings exposes the filing analysis endpoints: upload/analyze,
// list, get, delete, import, and markdown export.
package filings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"riskdelta/pkg/core/export"
	"riskdelta/pkg/core/extract"
	"riskdelta/pkg/core/normalize"
	"riskdelta/pkg/core/ocr"
	"riskdelta/pkg/core/report"
	"riskdelta/pkg/core/section"
	"riskdelta/pkg/core/store"
	"riskdelta/pkg/core/utils"
)

const maxUploadBytes = 64 << 20 // 64 MB

var (
	repo     *store.ReportRepo
	pipeline *extract.Pipeline
)

// InitHandler wires the shared repository and extraction pipeline.
func InitHandler(r *store.ReportRepo, p *extract.Pipeline) {
	repo = r
	pipeline = p
}

func cors(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Filings] encode response: %v", err)
	}
}

type analyzeResponse struct {
	Report         report.FilingReport `json:"report"`
	Strategy       string              `json:"strategy"`
	Degraded       bool                `json:"degraded"`
	SectorInferred bool                `json:"sector_inferred"`
}

// HandleAnalyze accepts a multipart upload (file + metadata fields), runs
// the extraction pipeline, stores the result, and returns the report.
func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("parse upload: %v", err), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("read upload: %v", err), http.StatusBadRequest)
		return
	}

	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil || year <= 0 {
		http.Error(w, "invalid or missing year", http.StatusBadRequest)
		return
	}
	company := strings.TrimSpace(r.FormValue("company"))
	if company == "" {
		http.Error(w, "missing company", http.StatusBadRequest)
		return
	}
	filingType := r.FormValue("filing_type")
	if filingType == "" {
		filingType = "10-K"
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	log.Printf("[Filings] analyze %s %d (%s, %d bytes)", company, year, ext, len(raw))

	an, err := pipeline.Analyze(r.Context(), extract.Input{
		Raw:        raw,
		Ext:        ext,
		Company:    company,
		Year:       year,
		Industry:   r.FormValue("industry"),
		FilingType: filingType,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, normalize.ErrUnsupportedInput):
			status = http.StatusUnsupportedMediaType
		case errors.Is(err, section.ErrNotFound):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, ocr.ErrUnavailable), errors.Is(err, ocr.ErrJobFailed), errors.Is(err, ocr.ErrTimedOut):
			status = http.StatusBadGateway
		}
		http.Error(w, err.Error(), status)
		return
	}

	if err := repo.SaveReport(r.Context(), an.Report, raw, ext); err != nil {
		http.Error(w, fmt.Sprintf("store report: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Report:         an.Report,
		Strategy:       an.Strategy,
		Degraded:       an.Degraded,
		SectorInferred: an.SectorInferred,
	})
}

// HandleList returns the keys of every stored report.
func HandleList(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}
	if r.Method != "GET" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	keys, err := repo.ListReports(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": keys})
}

// filingIdentity reads the (company, year, filing_type) triple from query
// parameters.
func filingIdentity(r *http.Request) (string, int, string, error) {
	company := r.URL.Query().Get("company")
	if company == "" {
		return "", 0, "", fmt.Errorf("missing company parameter")
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year <= 0 {
		return "", 0, "", fmt.Errorf("invalid or missing year parameter")
	}
	filingType := r.URL.Query().Get("filing_type")
	if filingType == "" {
		filingType = "10-K"
	}
	return company, year, filingType, nil
}

// HandleGet returns one stored report, as JSON or as markdown with
// ?format=markdown.
func HandleGet(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}
	if r.Method != "GET" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	company, year, filingType, err := filingIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rep, err := repo.LoadReport(r.Context(), company, year, filingType)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, export.ReportMarkdown(rep))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleDelete removes every artifact of one filing identity.
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "DELETE") {
		return
	}
	if r.Method != "DELETE" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	company, year, filingType, err := filingIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := repo.DeleteFiling(r.Context(), company, year, filingType); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleImport accepts an externally produced report JSON document. Parsing
// is lenient (repair, then Hjson) so hand-edited files import cleanly; the
// result is validated before it is stored.
func HandleImport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("read body: %v", err), http.StatusBadRequest)
		return
	}

	var rep report.FilingReport
	if _, err := utils.SmartParse(string(body), &rep); err != nil {
		http.Error(w, fmt.Sprintf("unparseable report: %v", err), http.StatusBadRequest)
		return
	}
	if err := rep.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := repo.SaveReport(r.Context(), rep, nil, ""); err != nil {
		http.Error(w, fmt.Sprintf("store report: %v", err), http.StatusInternalServerError)
		return
	}
	log.Printf("[Filings] imported report %s %d", rep.CompanyOverview.Company, rep.CompanyOverview.Year)
	writeJSON(w, http.StatusOK, rep)
}
