package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"riskdelta/pkg/core/report"
)

// ReportRepo stores filing reports, raw filing bytes, and diff reports on
// top of a DocumentStore. Keys derive deterministically from the filing's
// logical identity; re-ingesting the same (company, year, filing type)
// replaces everything under that identity instead of appending.
type ReportRepo struct {
	store DocumentStore
}

// NewReportRepo wraps a document store.
func NewReportRepo(s DocumentStore) *ReportRepo {
	return &ReportRepo{store: s}
}

// Slug lowercases and collapses anything outside [a-z0-9] so company names
// produce stable key segments.
func Slug(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// FilingPrefix is the key prefix holding every artifact of one logical
// filing identity.
func FilingPrefix(company string, year int, filingType string) string {
	ft := Slug(filingType)
	if ft == "" {
		ft = "10-k"
	}
	return fmt.Sprintf("reports/%s/%d/%s/", Slug(company), year, ft)
}

func diffKey(company string, priorYear, latestYear int) string {
	return fmt.Sprintf("diffs/%s/%d-%d.json", Slug(company), priorYear, latestYear)
}

// SaveReport persists a filing report plus, when provided, the raw filing
// bytes beside it. Prior artifacts under the same identity are deleted
// first (replace-on-upsert).
func (r *ReportRepo) SaveReport(ctx context.Context, rep report.FilingReport, raw []byte, ext string) error {
	ov := rep.CompanyOverview
	prefix := FilingPrefix(ov.Company, ov.Year, ov.FilingType)

	existing, err := r.store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list prior artifacts: %w", err)
	}
	for _, key := range existing {
		if err := r.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("replace prior artifact: %w", err)
		}
	}

	suffix := uuid.NewString()[:8]

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := r.store.Put(ctx, prefix+"report-"+suffix+".json", data); err != nil {
		return err
	}

	if len(raw) > 0 {
		if ext == "" {
			ext = "html"
		}
		if err := r.store.Put(ctx, prefix+"filing-"+suffix+"."+ext, raw); err != nil {
			return err
		}
	}
	return nil
}

// LoadReport retrieves the report stored under a filing identity.
// Returns ErrNotFound when nothing is stored.
func (r *ReportRepo) LoadReport(ctx context.Context, company string, year int, filingType string) (report.FilingReport, error) {
	prefix := FilingPrefix(company, year, filingType)
	keys, err := r.store.List(ctx, prefix)
	if err != nil {
		return report.FilingReport{}, err
	}

	for _, key := range keys {
		name := key[strings.LastIndex(key, "/")+1:]
		if !strings.HasPrefix(name, "report-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := r.store.Get(ctx, key)
		if err != nil {
			return report.FilingReport{}, err
		}
		var rep report.FilingReport
		if err := json.Unmarshal(data, &rep); err != nil {
			return report.FilingReport{}, fmt.Errorf("unmarshal report %q: %w", key, err)
		}
		return rep, nil
	}
	return report.FilingReport{}, fmt.Errorf("%w: %s", ErrNotFound, prefix)
}

// DeleteFiling removes every artifact under a filing identity.
func (r *ReportRepo) DeleteFiling(ctx context.Context, company string, year int, filingType string) error {
	prefix := FilingPrefix(company, year, filingType)
	keys, err := r.store.List(ctx, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	for _, key := range keys {
		if err := r.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// ListReports returns the keys of every stored report JSON.
func (r *ReportRepo) ListReports(ctx context.Context) ([]string, error) {
	keys, err := r.store.List(ctx, "reports/")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, key := range keys {
		name := key[strings.LastIndex(key, "/")+1:]
		if strings.HasPrefix(name, "report-") && strings.HasSuffix(name, ".json") {
			out = append(out, key)
		}
	}
	return out, nil
}

// SaveDiff persists a comparison result. Diff keys are fully deterministic
// so re-running a comparison overwrites the previous result.
func (r *ReportRepo) SaveDiff(ctx context.Context, d report.DiffReport) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal diff: %w", err)
	}
	return r.store.Put(ctx, diffKey(d.Company, d.PriorYear, d.LatestYear), data)
}

// LoadDiff retrieves a stored comparison.
func (r *ReportRepo) LoadDiff(ctx context.Context, company string, priorYear, latestYear int) (report.DiffReport, error) {
	data, err := r.store.Get(ctx, diffKey(company, priorYear, latestYear))
	if err != nil {
		return report.DiffReport{}, err
	}
	var d report.DiffReport
	if err := json.Unmarshal(data, &d); err != nil {
		return report.DiffReport{}, fmt.Errorf("unmarshal diff: %w", err)
	}
	return d, nil
}
