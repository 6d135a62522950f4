package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/cutaway/internal/timeline"
)

func TestNarration(t *testing.T) {
	got := Narration([]timeline.ScriptSegment{
		{Transcript: "Go vote. "},
		{Transcript: " See the city."},
	})
	if got != "Go vote. See the city." {
		t.Errorf("got %q", got)
	}
}

func TestWordsFromChars(t *testing.T) {
	text := "Go  vote!"
	var chars []charTiming
	at := time.Duration(0)
	for _, r := range text {
		chars = append(chars, charTiming{Char: r, Start: at, End: at + 100*time.Millisecond})
		at += 100 * time.Millisecond
	}

	words := wordsFromChars(chars)
	want := []timeline.WordTiming{
		{Word: "Go", Start: 0, End: 200 * time.Millisecond},
		{Word: "vote!", Start: 400 * time.Millisecond, End: 900 * time.Millisecond},
	}
	if len(words) != len(want) {
		t.Fatalf("got %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d: got %+v, want %+v", i, words[i], want[i])
		}
	}
}

func TestWordsFromCharsEmpty(t *testing.T) {
	if words := wordsFromChars(nil); len(words) != 0 {
		t.Errorf("expected no words, got %v", words)
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	text := "Go vote"
	var (
		chars  []string
		starts []float64
		ends   []float64
	)
	for i, r := range text {
		chars = append(chars, string(r))
		starts = append(starts, float64(i)*0.25)
		ends = append(ends, float64(i+1)*0.25)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/v1/text-to-speech/voice-1/with-timestamps") {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var req elevenLabsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != text {
			t.Errorf("text: got %q", req.Text)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"audio_base64": base64.StdEncoding.EncodeToString([]byte("fake-mp3")),
			"alignment": map[string]any{
				"characters":                    chars,
				"character_start_times_seconds": starts,
				"character_end_times_seconds":   ends,
			},
		})
	}))
	defer srv.Close()

	s, err := NewElevenLabsSynthesizer("test-key", Options{Voice: "voice-1", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "narration.mp3")
	result, err := s.Synthesize(context.Background(), text, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	audio, err := os.ReadFile(out)
	if err != nil || string(audio) != "fake-mp3" {
		t.Errorf("audio file: got %q, %v", audio, err)
	}
	if len(result.Words) != 2 {
		t.Fatalf("got %d words, want 2", len(result.Words))
	}
	if result.Words[1].Word != "vote" || result.Words[1].Start != 750*time.Millisecond {
		t.Errorf("word 1: got %+v", result.Words[1])
	}
	if result.Duration != 1750*time.Millisecond {
		t.Errorf("duration: got %v, want 1.75s", result.Duration)
	}
}

func TestElevenLabsSynthesizeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s, _ := NewElevenLabsSynthesizer("test-key", Options{BaseURL: srv.URL})
	_, err := s.Synthesize(context.Background(), "hi", filepath.Join(t.TempDir(), "a.mp3"))
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected quota error, got %v", err)
	}
}

func TestElevenLabsAlignmentMismatch(t *testing.T) {
	a := &elevenLabsAlignment{
		Characters: []string{"a", "b"},
		Starts:     []float64{0},
		Ends:       []float64{0.1, 0.2},
	}
	if _, err := a.timings(); err == nil {
		t.Error("expected length mismatch error")
	}

	var missing *elevenLabsAlignment
	if _, err := missing.timings(); err == nil {
		t.Error("expected error for missing alignment")
	}
}

func TestParseWordTimings(t *testing.T) {
	words, duration, err := parseWordTimings(`{
		"text": "Go vote.",
		"duration": 2.5,
		"words": [
			{"word": "Go", "start": 0.0, "end": 0.4},
			{"word": "vote", "start": 0.4, "end": 1.1}
		]
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[1].End != 1100*time.Millisecond {
		t.Errorf("word 1 end: got %v", words[1].End)
	}
	if duration != 2500*time.Millisecond {
		t.Errorf("duration: got %v, want 2.5s", duration)
	}

	for _, raw := range []string{"", `{"text": "x"}`, `{"words": [`} {
		if _, _, err := parseWordTimings(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestFactory(t *testing.T) {
	s, err := Factory(ProviderElevenLabs, "k", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*ElevenLabsSynthesizer); !ok {
		t.Errorf("expected *ElevenLabsSynthesizer, got %T", s)
	}

	s, err = Factory(ProviderOpenAI, "k", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*OpenAISynthesizer); !ok {
		t.Errorf("expected *OpenAISynthesizer, got %T", s)
	}

	if _, err := Factory(Provider("nope"), "k", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := Factory(ProviderElevenLabs, "", Options{}); err == nil {
		t.Error("expected error for missing API key")
	}
}
