package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// PdftotextAdapter extracts text with the poppler pdftotext CLI. It is the
// local extraction path: no credentials, no network, handles the text-layer
// PDFs that make up nearly all EDGAR filings.
type PdftotextAdapter struct {
	// Timeout for a single extraction (default: 30s)
	Timeout time.Duration
}

var _ TextExtractor = (*PdftotextAdapter)(nil)

// NewPdftotextAdapter creates an adapter with default settings.
func NewPdftotextAdapter() *PdftotextAdapter {
	return &PdftotextAdapter{
		Timeout: 30 * time.Second,
	}
}

// IsAvailable checks if pdftotext is installed and accessible.
func (p *PdftotextAdapter) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pdftotext", "-v")
	return cmd.Run() == nil
}

// GetVersion returns the installed pdftotext version string.
func (p *PdftotextAdapter) GetVersion() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// pdftotext prints its version banner on stderr.
	cmd := exec.CommandContext(ctx, "pdftotext", "-v")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("pdftotext not found: %w", err)
	}
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		return strings.TrimSpace(lines[0]), nil
	}
	return "", fmt.Errorf("unable to parse pdftotext version")
}

// ExtractText runs the PDF through pdftotext reading stdin and writing
// stdout.
//
// Options:
//   - -layout keeps the physical column layout, which keeps risk-factor
//     headings on their own lines
//   - "- -" reads from stdin and writes to stdout
func (p *PdftotextAdapter) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", "-", "-")
	cmd.Stdin = bytes.NewReader(pdf)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: pdftotext timeout after %v", ErrTimedOut, timeout)
		}
		return "", fmt.Errorf("%w: pdftotext: %v, stderr: %s", ErrJobFailed, err, stderr.String())
	}
	return stdout.String(), nil
}
