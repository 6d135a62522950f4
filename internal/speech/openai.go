package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mgpai22/cutaway/internal/timeline"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Synthesizer with OpenAI text-to-speech, recovering word timings
// by transcribing the result with word granularity
type OpenAISynthesizer struct {
	client openai.Client
	voice  string
	model  string
}

// word from Whisper verbose_json response
type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string        `json:"text"`
	Words    []whisperWord `json:"words"`
	Duration float64       `json:"duration"`
}

func NewOpenAISynthesizer(apiKey string, opts Options) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	voice := opts.Voice
	if voice == "" {
		voice = "alloy"
	}
	model := opts.Model
	if model == "" {
		model = "tts-1-hd"
	}

	return &OpenAISynthesizer{
		client: openai.NewClient(reqOpts...),
		voice:  voice,
		model:  model,
	}, nil
}

// synthesizes text to outputPath and returns per-word timings
func (s *OpenAISynthesizer) Synthesize(
	ctx context.Context,
	text, outputPath string,
) (*Result, error) {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(s.model),
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("failed to write audio: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to write audio: %w", err)
	}

	words, duration, err := s.transcribeWords(ctx, outputPath, text)
	if err != nil {
		return nil, err
	}

	return &Result{
		AudioPath: outputPath,
		Words:     words,
		Duration:  duration,
	}, nil
}

func (s *OpenAISynthesizer) transcribeWords(
	ctx context.Context,
	audioPath, text string,
) ([]timeline.WordTiming, time.Duration, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	resp, err := s.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModelWhisper1,
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
		Prompt:                 openai.String(text),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("word timing transcription failed: %w", err)
	}

	return parseWordTimings(resp.RawJSON())
}

// parses Whisper verbose_json into word timings
func parseWordTimings(rawJSON string) ([]timeline.WordTiming, time.Duration, error) {
	if rawJSON == "" {
		return nil, 0, fmt.Errorf("empty response")
	}

	var verbose whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verbose); err != nil {
		return nil, 0, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}
	if len(verbose.Words) == 0 {
		return nil, 0, fmt.Errorf("no word timestamps in response")
	}

	words := make([]timeline.WordTiming, len(verbose.Words))
	for i, w := range verbose.Words {
		words[i] = timeline.WordTiming{
			Word:  w.Word,
			Start: timeline.Seconds(w.Start),
			End:   timeline.Seconds(w.End),
		}
	}

	duration := words[len(words)-1].End
	if verbose.Duration > 0 {
		duration = timeline.Seconds(verbose.Duration)
	}
	return words, duration, nil
}
