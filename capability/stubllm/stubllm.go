// Package stubllm is a deterministic stand-in for an llm.predict/llm.embed
// capability. No model-provider SDK appears anywhere in the retrieved
// examples, so this package — not a fabricated client — is what hosts and
// tests wire in where a real LLM capability isn't available (see
// DESIGN.md).
package stubllm

import (
	"context"
	"fmt"

	agent "github.com/tonioloewald/agent-99"
)

// LLM answers Predict from an optional canned-response table, falling back
// to echoing the prompt, and answers Embed with a small deterministic hash
// vector so equal strings always embed identically.
type LLM struct {
	Responses map[string]string
}

var _ agent.LLMCapability = (*LLM)(nil)

// New creates a stub LLM capability. responses may be nil.
func New(responses map[string]string) *LLM {
	return &LLM{Responses: responses}
}

func (l *LLM) Predict(ctx context.Context, prompt string, options map[string]any) (string, error) {
	if resp, ok := l.Responses[prompt]; ok {
		return resp, nil
	}
	return fmt.Sprintf("stub response to: %s", prompt), nil
}

const embedDims = 8

func (l *LLM) Embed(ctx context.Context, text string) ([]float64, error) {
	vec := make([]float64, embedDims)
	for i, r := range text {
		vec[i%embedDims] += float64(r)
	}
	return vec, nil
}
