package script

import (
	"context"
	"fmt"

	"github.com/mgpai22/cutaway/internal/timeline"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Writer using OpenAI Chat Completions
type OpenAIWriter struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAIWriter(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIWriter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAIWriter{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (w *OpenAIWriter) Write(
	ctx context.Context,
	brief Brief,
) ([]timeline.ScriptSegment, error) {
	prompt := BuildPrompt(w.options, brief)

	completion, err := w.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: w.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("script generation failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	return parseResponse(completion.Choices[0].Message.Content)
}
