package script

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mgpai22/cutaway/internal/timeline"
	"gopkg.in/yaml.v3"
)

// what the ad should say
type Brief struct {
	Topic     string
	Candidate string
	Audience  string
	Tone      string
	Seconds   int // target length of the spoken ad
}

// interface for script generation
type Writer interface {
	Write(ctx context.Context, brief Brief) ([]timeline.ScriptSegment, error)
}

// script-writing LLM provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	Model  string
	Prompt string // extra instructions appended to the prompt
}

// creates Writer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Writer, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiWriter(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIWriter(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicWriter(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported script provider: %s", provider)
	}
}

// BuildPrompt creates the script-writing prompt for LLM providers
func BuildPrompt(opts Options, brief Brief) string {
	var sb strings.Builder

	seconds := brief.Seconds
	if seconds <= 0 {
		seconds = 30
	}

	sb.WriteString(fmt.Sprintf(
		"Write a %d second political ad script about %s.\n\n",
		seconds,
		brief.Topic,
	))

	if brief.Candidate != "" {
		sb.WriteString(fmt.Sprintf("The ad supports %s.\n", brief.Candidate))
	}
	if brief.Audience != "" {
		sb.WriteString(fmt.Sprintf("The audience is %s.\n", brief.Audience))
	}
	if brief.Tone != "" {
		sb.WriteString(fmt.Sprintf("The tone is %s.\n", brief.Tone))
	}

	sb.WriteString("\nIMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Split the script into short segments of one sentence or phrase each.\n")
	sb.WriteString("2. Each segment is an object with 'spokenTranscript', 'isBRoll' and 'bRollSearchQuery'.\n")
	sb.WriteString("3. 'spokenTranscript' is exactly what the narrator says, with no stage directions.\n")
	sb.WriteString("4. Set 'isBRoll' to true when stock footage should play over the narration.\n")
	sb.WriteString("5. 'bRollSearchQuery' is a two or three word stock video search, or null when 'isBRoll' is false.\n")
	sb.WriteString("6. Return ONLY a JSON array of segments, no explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt))
	}

	sb.WriteString("Output the JSON array only:")

	return sb.String()
}

// wire form of a segment as the model writes it
type segmentJSON struct {
	SpokenTranscript string  `json:"spokenTranscript"`
	IsBRoll          bool    `json:"isBRoll"`
	BRollSearchQuery *string `json:"bRollSearchQuery"`
}

// Sanitize trims transcripts, drops empty segments and keeps a search query
// exactly when the segment is B-roll. A B-roll segment without a query
// becomes plain narration.
func Sanitize(segments []timeline.ScriptSegment) []timeline.ScriptSegment {
	out := make([]timeline.ScriptSegment, 0, len(segments))
	for _, seg := range segments {
		seg.Transcript = strings.Join(strings.Fields(seg.Transcript), " ")
		seg.Query = strings.TrimSpace(seg.Query)
		if seg.Transcript == "" {
			continue
		}
		if !seg.IsBRoll || seg.Query == "" {
			seg.IsBRoll = false
			seg.Query = ""
		}
		out = append(out, seg)
	}
	return out
}

// Load reads a hand-written script from a .json, .yaml or .yml file.
func Load(path string) ([]timeline.ScriptSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var segments []timeline.ScriptSegment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		segments, err = extractSegments(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &segments); err != nil {
			return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported script format: %s", filepath.Ext(path))
	}

	segments = Sanitize(segments)
	if len(segments) == 0 {
		return nil, fmt.Errorf("script %s has no segments", path)
	}
	return segments, nil
}

// parses model output into segments
func parseResponse(responseText string) ([]timeline.ScriptSegment, error) {
	if responseText == "" {
		return nil, fmt.Errorf("no text in response")
	}

	responseText = cleanJSONResponse(responseText)

	segments, err := extractSegments(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	segments = Sanitize(segments)
	if len(segments) == 0 {
		return nil, fmt.Errorf("response contained no usable segments")
	}
	return segments, nil
}

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// finds the first JSON array of segments, bare or under a wrapper key
func extractSegments(text string) ([]timeline.ScriptSegment, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if segments, ok := tryExtractSegments(raw); ok {
			return segments, nil
		}
	}
	return nil, fmt.Errorf("no valid script JSON found in response")
}

func tryExtractSegments(raw json.RawMessage) ([]timeline.ScriptSegment, bool) {
	if segments, ok := decodeSegments(raw); ok {
		return segments, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range []string{"script_segments", "segments", "script", "data"} {
		if fieldRaw, exists := wrapper[key]; exists {
			if segments, ok := decodeSegments(fieldRaw); ok {
				return segments, true
			}
		}
	}

	for _, fieldRaw := range wrapper {
		if segments, ok := decodeSegments(fieldRaw); ok {
			return segments, true
		}
	}

	return nil, false
}

func decodeSegments(raw json.RawMessage) ([]timeline.ScriptSegment, bool) {
	var items []segmentJSON
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	segments := make([]timeline.ScriptSegment, 0, len(items))
	for _, item := range items {
		seg := timeline.ScriptSegment{
			Transcript: item.SpokenTranscript,
			IsBRoll:    item.IsBRoll,
		}
		if item.BRollSearchQuery != nil {
			seg.Query = *item.BRollSearchQuery
		}
		segments = append(segments, seg)
	}

	for _, seg := range segments {
		if strings.TrimSpace(seg.Transcript) != "" {
			return segments, true
		}
	}
	return nil, false
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
