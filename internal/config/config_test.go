package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromReaderOverridesDefaults(t *testing.T) {
	t.Setenv("PEXELS_API_KEY", "from-env")

	cfg, err := LoadFromReader(strings.NewReader(`
script:
  provider: anthropic
  model: claude-haiku-4-5
broll:
  max_attempts: 5
  tolerance: 1500ms
render:
  width: 1920
  height: 1080
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Script.Provider != "anthropic" || cfg.Script.Model != "claude-haiku-4-5" {
		t.Errorf("script: got %+v", cfg.Script)
	}
	if cfg.BRoll.MaxAttempts != 5 {
		t.Errorf("max attempts: got %d, want 5", cfg.BRoll.MaxAttempts)
	}
	if cfg.BRoll.Tolerance != 1500*time.Millisecond {
		t.Errorf("tolerance: got %v, want 1.5s", cfg.BRoll.Tolerance)
	}
	if cfg.BRoll.Concurrency != 4 {
		t.Errorf("concurrency default lost: got %d", cfg.BRoll.Concurrency)
	}
	if cfg.Speech.Provider != "elevenlabs" {
		t.Errorf("speech provider default lost: got %q", cfg.Speech.Provider)
	}
	if cfg.BRoll.APIKey != "from-env" {
		t.Errorf("api key from env: got %q", cfg.BRoll.APIKey)
	}
}

func TestLoadFromReaderEmpty(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BRoll.MaxAttempts != 3 || cfg.BRoll.Tolerance != 2*time.Second {
		t.Errorf("defaults: got %+v", cfg.BRoll)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("broll:\n  retries: 3\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Script.Provider = "mystery"
	cfg.BRoll.MaxAttempts = 0
	cfg.Render.FPS = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"script.provider", "broll.max_attempts", "render.fps"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutaway.yaml")
	if err := os.WriteFile(path, []byte("speech:\n  provider: openai\n  voice: alloy\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Speech.Provider != "openai" || cfg.Speech.Voice != "alloy" {
		t.Errorf("speech: got %+v", cfg.Speech)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvKey(t *testing.T) {
	if got := EnvKey("elevenlabs"); got != "ELEVENLABS_API_KEY" {
		t.Errorf("got %q", got)
	}
	if got := EnvKey("nope"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
