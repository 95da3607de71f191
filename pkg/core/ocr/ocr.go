// Package ocr wraps the external PDF text-extraction collaborators. The
// pipeline treats them as black boxes (bytes in, text out); what matters
// here is that a service failure surfaces as a typed error and never as an
// empty string pretending to be "no text".
package ocr

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means no extractor is installed or reachable.
	ErrUnavailable = errors.New("ocr: extractor unavailable")
	// ErrJobFailed means the remote service accepted the job and then
	// reported failure.
	ErrJobFailed = errors.New("ocr: extraction job failed")
	// ErrTimedOut means the job did not finish within the polling budget.
	ErrTimedOut = errors.New("ocr: extraction job timed out")
)

// TextExtractor converts a PDF byte buffer into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}
