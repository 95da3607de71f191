// Package llm holds the optional language-model integration. The pipeline
// never depends on a model for correctness; providers only rephrase the
// fixed change explanations into friendlier prose.
package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}
