package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"riskdelta/pkg/api/compare"
	"riskdelta/pkg/api/filings"
	"riskdelta/pkg/core/config"
	"riskdelta/pkg/core/extract"
	"riskdelta/pkg/core/llm"
	"riskdelta/pkg/core/ocr"
	"riskdelta/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg, err := config.Load("config/risklens.yaml")
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	// Document store backend
	var docStore store.DocumentStore
	if cfg.Storage == "postgres" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[FATAL] postgres init: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		docStore = store.NewPGStore()
		fmt.Println("[STORE] Using postgres backend")
	} else {
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			fmt.Printf("[FATAL] file store: %v\n", err)
			os.Exit(1)
		}
		docStore = fs
		fmt.Printf("[STORE] Using file backend at %s\n", cfg.DataDir)
	}
	repo := store.NewReportRepo(docStore)

	// PDF text extraction: local pdftotext when installed, remote service
	// when configured, neither means HTML/txt only.
	var textExtractor ocr.TextExtractor
	if local := ocr.NewPdftotextAdapter(); local.IsAvailable() {
		textExtractor = local
		fmt.Println("[OCR] pdftotext available for PDF input")
	} else if cfg.OCRServiceURL != "" {
		textExtractor = ocr.NewRemoteClient(cfg.OCRServiceURL)
		fmt.Printf("[OCR] Using remote extraction service at %s\n", cfg.OCRServiceURL)
	} else {
		fmt.Println("[OCR] No PDF extractor configured; PDF uploads will be rejected")
	}

	pipeline := extract.NewPipeline(textExtractor)

	// Optional explanation rephraser
	var explainer *llm.Explainer
	if cfg.Gemini.Explain && os.Getenv("GEMINI_API_KEY") != "" {
		explainer = &llm.Explainer{Provider: &llm.GeminiProvider{Model: cfg.Gemini.Model}}
		fmt.Printf("[LLM] Explanation rephrasing enabled (%s)\n", cfg.Gemini.Model)
	}

	filings.InitHandler(repo, pipeline)
	http.HandleFunc("/api/filings/analyze", filings.HandleAnalyze)
	http.HandleFunc("/api/filings/list", filings.HandleList)
	http.HandleFunc("/api/filings/get", filings.HandleGet)
	http.HandleFunc("/api/filings/delete", filings.HandleDelete)
	http.HandleFunc("/api/filings/import", filings.HandleImport)

	compare.InitHandler(repo, cfg.Diff, explainer)
	http.HandleFunc("/api/compare", compare.HandleCompare)

	fmt.Printf("API server starting on %s...\n", cfg.Listen)
	fmt.Println("  - POST   /api/filings/analyze  (multipart: file + company/year/industry/filing_type)")
	fmt.Println("  - GET    /api/filings/list")
	fmt.Println("  - GET    /api/filings/get      (?company=&year=&filing_type=&format=)")
	fmt.Println("  - DELETE /api/filings/delete")
	fmt.Println("  - POST   /api/filings/import")
	fmt.Println("  - POST   /api/compare")

	if err := http.ListenAndServe(cfg.Listen, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
