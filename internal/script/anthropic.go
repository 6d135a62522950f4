package script

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mgpai22/cutaway/internal/timeline"
)

// implements Writer using Anthropic Claude
type AnthropicWriter struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicWriter(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicWriter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicWriter{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (w *AnthropicWriter) Write(
	ctx context.Context,
	brief Brief,
) ([]timeline.ScriptSegment, error) {
	prompt := BuildPrompt(w.options, brief)

	message, err := w.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     w.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("script generation failed: %w", err)
	}

	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	return parseResponse(responseText)
}
