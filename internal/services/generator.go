package services

import (
	"context"

	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/groq"
)

// groqGenerator adapts the Groq client to the reasoning core's Generator
// contract so the core never imports the transport package.
type groqGenerator struct {
	client groq.Client
}

func NewGroqGenerator(client groq.Client) kag.Generator {
	return &groqGenerator{client: client}
}

func (g *groqGenerator) Complete(ctx context.Context, system, user string) (kag.GenerationResult, error) {
	out, err := g.client.Complete(ctx, system, user)
	if err != nil {
		return kag.GenerationResult{}, err
	}
	return kag.GenerationResult{
		Text: out.Text,
		Usage: kag.TokenUsage{
			Prompt:     out.Usage.PromptTokens,
			Completion: out.Usage.CompletionTokens,
			Total:      out.Usage.TotalTokens,
		},
		FinishReason: out.FinishReason,
	}, nil
}

func (g *groqGenerator) Extract(ctx context.Context, prompt string) (string, error) {
	return g.client.Extract(ctx, prompt)
}
