package llm

import (
	"context"
	"log"
	"strings"

	"riskdelta/pkg/core/diff"
)

const explainSystemPrompt = `You summarize changes in SEC 10-K risk factor disclosures.
Given the change type and the old/new wording, write one plain-English sentence
describing what changed. Do not speculate beyond the provided text.`

// Explainer rephrases the fixed change explanations with a model. It only
// rewrites short_explanation; change classification and scores always come
// from the matcher and are never touched.
type Explainer struct {
	Provider Provider
}

// Rephrase rewrites the explanations of the given change records in place.
// Failures are logged and skipped: the fixed explanation is always a valid
// fallback.
func (e *Explainer) Rephrase(ctx context.Context, changes []diff.ChangeRecord) {
	if e == nil || e.Provider == nil {
		return
	}
	for i := range changes {
		text, err := e.Provider.GenerateResponse(ctx, buildExplainPrompt(changes[i]), explainSystemPrompt, nil)
		if err != nil {
			log.Printf("[Explainer] rephrase failed, keeping fixed explanation: %v", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			changes[i].ShortExplanation = text
		}
	}
}

func buildExplainPrompt(rec diff.ChangeRecord) string {
	var b strings.Builder
	b.WriteString("Change type: ")
	b.WriteString(string(rec.ChangeType))
	b.WriteString("\nTheme: ")
	b.WriteString(string(rec.RiskTheme))
	if rec.OldText != nil {
		b.WriteString("\n\nPrior wording:\n")
		b.WriteString(clip(*rec.OldText, 2000))
	}
	if rec.NewText != nil {
		b.WriteString("\n\nLatest wording:\n")
		b.WriteString(clip(*rec.NewText, 2000))
	}
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
