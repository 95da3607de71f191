// Command pipeline analyzes filings from the command line: one file for a
// report, two files for a year-over-year comparison.
//
// Usage:
//
//	pipeline -company "Acme Corp" -year 2024 -file acme-2024.html
//	pipeline -company "Acme Corp" -year 2024 -file acme-2024.html \
//	         -prior-year 2023 -prior-file acme-2023.html -markdown
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"riskdelta/pkg/core/config"
	"riskdelta/pkg/core/export"
	"riskdelta/pkg/core/extract"
	"riskdelta/pkg/core/ocr"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is.")
	}

	var (
		company    = flag.String("company", "", "company name (required)")
		industry   = flag.String("industry", "", "industry; inferred from the filing when empty")
		filingType = flag.String("filing-type", "10-K", "filing type")
		year       = flag.Int("year", 0, "fiscal year of the filing (required)")
		file       = flag.String("file", "", "path to the filing (required)")
		priorYear  = flag.Int("prior-year", 0, "fiscal year of the prior filing")
		priorFile  = flag.String("prior-file", "", "path to the prior filing; enables comparison")
		markdown   = flag.Bool("markdown", false, "emit markdown instead of JSON")
	)
	flag.Parse()

	if *company == "" || *year == 0 || *file == "" {
		flag.Usage()
		os.Exit(2)
	}
	if (*priorFile == "") != (*priorYear == 0) {
		log.Fatal("-prior-file and -prior-year must be used together")
	}

	cfg, err := config.Load("config/risklens.yaml")
	if err != nil {
		log.Fatal(err)
	}

	var textExtractor ocr.TextExtractor
	if local := ocr.NewPdftotextAdapter(); local.IsAvailable() {
		textExtractor = local
	} else if cfg.OCRServiceURL != "" {
		textExtractor = ocr.NewRemoteClient(cfg.OCRServiceURL)
	}
	pipeline := extract.NewPipeline(textExtractor)

	ctx := context.Background()
	latest := analyzeFile(ctx, pipeline, *file, *company, *year, *industry, *filingType)

	if *priorFile == "" {
		if *markdown {
			fmt.Println(export.ReportMarkdown(latest.Report))
		} else {
			emitJSON(latest.Report)
		}
		return
	}

	prior := analyzeFile(ctx, pipeline, *priorFile, *company, *priorYear, *industry, *filingType)

	d, err := extract.Compare(prior.Report, latest.Report, cfg.Diff)
	if err != nil {
		log.Fatalf("compare: %v", err)
	}
	if *markdown {
		fmt.Println(export.DiffMarkdown(d, cfg.Diff.TopChanges))
	} else {
		emitJSON(d)
	}
}

func analyzeFile(ctx context.Context, pipeline *extract.Pipeline, path, company string, year int, industry, filingType string) extract.Analysis {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	an, err := pipeline.Analyze(ctx, extract.Input{
		Raw:        raw,
		Ext:        strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Company:    company,
		Year:       year,
		Industry:   industry,
		FilingType: filingType,
	})
	if err != nil {
		log.Fatalf("analyze %s: %v", path, err)
	}
	log.Printf("[Pipeline] %s: %d blocks (%s strategy)", path, len(an.Report.RiskBlocks), an.Strategy)
	return an
}

func emitJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal(err)
	}
}
