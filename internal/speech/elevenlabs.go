package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mgpai22/cutaway/internal/timeline"
)

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io"
	elevenLabsDefaultVoice = "21m00Tcm4TlvDq8N6r4t"
	elevenLabsDefaultModel = "eleven_multilingual_v2"
	elevenLabsOutputFormat = "mp3_44100_128"
)

// implements Synthesizer using the ElevenLabs with-timestamps endpoint
type ElevenLabsSynthesizer struct {
	apiKey  string
	voice   string
	model   string
	baseURL string
	client  *http.Client
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

type elevenLabsAlignment struct {
	Characters []string  `json:"characters"`
	Starts     []float64 `json:"character_start_times_seconds"`
	Ends       []float64 `json:"character_end_times_seconds"`
}

type elevenLabsResponse struct {
	AudioBase64 string               `json:"audio_base64"`
	Alignment   *elevenLabsAlignment `json:"alignment"`
}

func NewElevenLabsSynthesizer(apiKey string, opts Options) (*ElevenLabsSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	s := &ElevenLabsSynthesizer{
		apiKey:  apiKey,
		voice:   opts.Voice,
		model:   opts.Model,
		baseURL: opts.BaseURL,
		client:  opts.HTTPClient,
	}
	if s.voice == "" {
		s.voice = elevenLabsDefaultVoice
	}
	if s.model == "" {
		s.model = elevenLabsDefaultModel
	}
	if s.baseURL == "" {
		s.baseURL = elevenLabsBaseURL
	}
	if s.client == nil {
		s.client = http.DefaultClient
	}
	return s, nil
}

// synthesizes text to outputPath and returns per-word timings
func (s *ElevenLabsSynthesizer) Synthesize(
	ctx context.Context,
	text, outputPath string,
) (*Result, error) {
	body, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: s.model})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf(
		"%s/v1/text-to-speech/%s/with-timestamps?output_format=%s",
		strings.TrimSuffix(s.baseURL, "/"),
		url.PathEscape(s.voice),
		elevenLabsOutputFormat,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var parsed elevenLabsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse synthesis response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, audio, 0644); err != nil {
		return nil, fmt.Errorf("failed to write audio: %w", err)
	}

	chars, err := parsed.Alignment.timings()
	if err != nil {
		return nil, err
	}

	words := wordsFromChars(chars)
	result := &Result{AudioPath: outputPath, Words: words}
	if len(words) > 0 {
		result.Duration = words[len(words)-1].End
	}
	return result, nil
}

func (a *elevenLabsAlignment) timings() ([]charTiming, error) {
	if a == nil {
		return nil, fmt.Errorf("synthesis response has no alignment")
	}
	if len(a.Starts) != len(a.Characters) || len(a.Ends) != len(a.Characters) {
		return nil, fmt.Errorf(
			"alignment length mismatch: %d characters, %d starts, %d ends",
			len(a.Characters),
			len(a.Starts),
			len(a.Ends),
		)
	}

	chars := make([]charTiming, 0, len(a.Characters))
	for i, c := range a.Characters {
		r, _ := utf8.DecodeRuneInString(c)
		chars = append(chars, charTiming{
			Char:  r,
			Start: timeline.Seconds(a.Starts[i]),
			End:   timeline.Seconds(a.Ends[i]),
		})
	}
	return chars, nil
}
