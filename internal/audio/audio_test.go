package audio

import (
	"testing"
	"time"
)

func TestParseProbeDuration(t *testing.T) {
	got, err := parseProbeDuration([]byte(`{"format": {"filename": "a.mp3", "duration": "12.500000"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 12500*time.Millisecond {
		t.Errorf("got %v, want 12.5s", got)
	}

	for _, raw := range []string{`not json`, `{"format": {}}`, `{"format": {"duration": "N/A"}}`} {
		if _, err := parseProbeDuration([]byte(raw)); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestMediaTypes(t *testing.T) {
	tests := []struct {
		path  string
		video bool
		audio bool
	}{
		{"ad.mp4", true, false},
		{"AD.MOV", true, false},
		{"narration.mp3", false, true},
		{"narration.WAV", false, true},
		{"script.yaml", false, false},
		{"noext", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsVideoFile(tt.path); got != tt.video {
				t.Errorf("IsVideoFile(%q) = %v, want %v", tt.path, got, tt.video)
			}
			if got := IsAudioFile(tt.path); got != tt.audio {
				t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.audio)
			}
		})
	}
}
