// Package config holds the cutaway configuration schema and its YAML loader.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// root configuration; zero values are filled from Default
type Config struct {
	Script Script `yaml:"script"`
	Speech Speech `yaml:"speech"`
	BRoll  BRoll  `yaml:"broll"`
	Render Render `yaml:"render"`
}

// script-writing LLM
type Script struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// narration synthesis
type Speech struct {
	Provider string `yaml:"provider"`
	Voice    string `yaml:"voice"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// cutaway search and selection
type BRoll struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	PerPage     int           `yaml:"per_page"`
	Orientation string        `yaml:"orientation"`
	Concurrency int           `yaml:"concurrency"`
	MaxAttempts int           `yaml:"max_attempts"`
	Tolerance   time.Duration `yaml:"tolerance"`
}

// final video output
type Render struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	FPS         int    `yaml:"fps"`
	BaseFootage string `yaml:"base_footage"`
}

var (
	scriptProviders = []string{"gemini", "openai", "anthropic"}
	speechProviders = []string{"elevenlabs", "openai"}
	brollProviders  = []string{"pexels"}
)

// returns the built-in defaults
func Default() *Config {
	return &Config{
		Script: Script{
			Provider: "gemini",
		},
		Speech: Speech{
			Provider: "elevenlabs",
		},
		BRoll: BRoll{
			Provider:    "pexels",
			PerPage:     15,
			Orientation: "portrait",
			Concurrency: 4,
			MaxAttempts: 3,
			Tolerance:   2 * time.Second,
		},
		Render: Render{
			Width:  1080,
			Height: 1920,
			FPS:    30,
		},
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.ApplyEnv()
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults, fills API keys from the
// environment and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.ApplyEnv()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// environment variable holding the API key for a provider
func EnvKey(provider string) string {
	switch provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "elevenlabs":
		return "ELEVENLABS_API_KEY"
	case "pexels":
		return "PEXELS_API_KEY"
	}
	return ""
}

// ApplyEnv fills empty API keys from the provider's environment variable.
func (c *Config) ApplyEnv() {
	fill := func(key *string, provider string) {
		if *key != "" {
			return
		}
		if name := EnvKey(provider); name != "" {
			*key = os.Getenv(name)
		}
	}
	fill(&c.Script.APIKey, c.Script.Provider)
	fill(&c.Speech.APIKey, c.Speech.Provider)
	fill(&c.BRoll.APIKey, c.BRoll.Provider)
}

// Validate reports every invalid field at once.
func Validate(cfg *Config) error {
	var errs []error

	if !oneOf(cfg.Script.Provider, scriptProviders) {
		errs = append(errs, fmt.Errorf("script.provider %q is invalid; valid values: %v", cfg.Script.Provider, scriptProviders))
	}
	if !oneOf(cfg.Speech.Provider, speechProviders) {
		errs = append(errs, fmt.Errorf("speech.provider %q is invalid; valid values: %v", cfg.Speech.Provider, speechProviders))
	}
	if !oneOf(cfg.BRoll.Provider, brollProviders) {
		errs = append(errs, fmt.Errorf("broll.provider %q is invalid; valid values: %v", cfg.BRoll.Provider, brollProviders))
	}
	if cfg.BRoll.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("broll.concurrency must be at least 1, got %d", cfg.BRoll.Concurrency))
	}
	if cfg.BRoll.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("broll.max_attempts must be at least 1, got %d", cfg.BRoll.MaxAttempts))
	}
	if cfg.BRoll.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("broll.tolerance must not be negative, got %s", cfg.BRoll.Tolerance))
	}
	if cfg.BRoll.PerPage < 1 || cfg.BRoll.PerPage > 80 {
		errs = append(errs, fmt.Errorf("broll.per_page must be between 1 and 80, got %d", cfg.BRoll.PerPage))
	}
	switch cfg.BRoll.Orientation {
	case "", "portrait", "landscape", "square":
	default:
		errs = append(errs, fmt.Errorf("broll.orientation %q is invalid", cfg.BRoll.Orientation))
	}
	if cfg.Render.Width <= 0 || cfg.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d is invalid", cfg.Render.Width, cfg.Render.Height))
	}
	if cfg.Render.Width%2 != 0 || cfg.Render.Height%2 != 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must be even for h264", cfg.Render.Width, cfg.Render.Height))
	}
	if cfg.Render.FPS <= 0 {
		errs = append(errs, fmt.Errorf("render.fps must be positive, got %d", cfg.Render.FPS))
	}

	return errors.Join(errs...)
}

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}
