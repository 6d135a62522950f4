package script

import (
	"context"
	"fmt"

	"github.com/mgpai22/cutaway/internal/timeline"
	"google.golang.org/genai"
)

// implements Writer using Google Gemini
type GeminiWriter struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiWriter(ctx context.Context, apiKey string, opts Options) (*GeminiWriter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiWriter{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (w *GeminiWriter) Write(ctx context.Context, brief Brief) ([]timeline.ScriptSegment, error) {
	prompt := BuildPrompt(w.options, brief)

	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(prompt)},
			genai.RoleUser,
		),
	}

	result, err := w.client.Models.GenerateContent(ctx, w.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("script generation failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			responseText += part.Text
		}
	}

	return parseResponse(responseText)
}
