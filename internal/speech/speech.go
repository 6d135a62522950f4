package speech

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/mgpai22/cutaway/internal/timeline"
)

// synthesized narration
type Result struct {
	AudioPath string
	Words     []timeline.WordTiming
	Duration  time.Duration
}

// interface for narration synthesis; text is the space-joined script
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) (*Result, error)
}

// speech synthesis provider
type Provider string

const (
	ProviderElevenLabs Provider = "elevenlabs"
	ProviderOpenAI     Provider = "openai"
)

// synthesis options
type Options struct {
	Voice      string
	Model      string
	BaseURL    string // overrides the provider endpoint
	HTTPClient *http.Client
}

// creates Synthesizer based on provider
func Factory(provider Provider, apiKey string, opts Options) (Synthesizer, error) {
	switch provider {
	case ProviderElevenLabs:
		return NewElevenLabsSynthesizer(apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAISynthesizer(apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported speech provider: %s", provider)
	}
}

// Narration joins segment transcripts with single spaces, the text the
// aligner expects the audio to contain.
func Narration(segments []timeline.ScriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, strings.TrimSpace(seg.Transcript))
	}
	return strings.Join(parts, " ")
}

// character-level timing as reported by a synthesizer
type charTiming struct {
	Char  rune
	Start time.Duration
	End   time.Duration
}

// folds character timings into word timings, splitting on whitespace
func wordsFromChars(chars []charTiming) []timeline.WordTiming {
	var (
		words   []timeline.WordTiming
		current strings.Builder
		start   time.Duration
		end     time.Duration
	)

	flush := func() {
		if current.Len() == 0 {
			return
		}
		words = append(words, timeline.WordTiming{
			Word:  current.String(),
			Start: start,
			End:   end,
		})
		current.Reset()
	}

	for _, c := range chars {
		if unicode.IsSpace(c.Char) {
			flush()
			continue
		}
		if current.Len() == 0 {
			start = c.Start
		}
		current.WriteRune(c.Char)
		end = c.End
	}
	flush()

	return words
}
