package cli

import (
	"context"
	"fmt"

	"github.com/mgpai22/cutaway/internal/broll"
	"github.com/mgpai22/cutaway/internal/config"
	"github.com/mgpai22/cutaway/internal/script"
	"github.com/mgpai22/cutaway/internal/speech"
	"github.com/mgpai22/cutaway/internal/timeline"
)

// overrideProvider switches a provider from the command line. A key set for
// the previous provider no longer applies.
func overrideProvider(cfg *config.Config, provider, key *string, value string) {
	if *provider == value {
		return
	}
	*provider = value
	*key = ""
	cfg.ApplyEnv()
}

func requireKey(provider, key string) error {
	if key != "" {
		return nil
	}
	return fmt.Errorf(
		"%s API key is required: set it in the config file or the %s environment variable",
		provider,
		config.EnvKey(provider),
	)
}

func newScriptWriter(ctx context.Context, cfg *config.Config, prompt string) (script.Writer, error) {
	if err := requireKey(cfg.Script.Provider, cfg.Script.APIKey); err != nil {
		return nil, err
	}
	return script.Factory(
		ctx,
		script.Provider(cfg.Script.Provider),
		cfg.Script.APIKey,
		script.Options{Model: cfg.Script.Model, Prompt: prompt},
	)
}

func newSynthesizer(cfg *config.Config) (speech.Synthesizer, error) {
	if err := requireKey(cfg.Speech.Provider, cfg.Speech.APIKey); err != nil {
		return nil, err
	}
	return speech.Factory(
		speech.Provider(cfg.Speech.Provider),
		cfg.Speech.APIKey,
		speech.Options{Voice: cfg.Speech.Voice, Model: cfg.Speech.Model},
	)
}

func newSearcher(cfg *config.Config) (broll.Searcher, error) {
	if err := requireKey(cfg.BRoll.Provider, cfg.BRoll.APIKey); err != nil {
		return nil, err
	}
	switch cfg.BRoll.Provider {
	case "pexels":
		return broll.NewPexelsSearcher(cfg.BRoll.APIKey, broll.PexelsOptions{
			PerPage:     cfg.BRoll.PerPage,
			Orientation: cfg.BRoll.Orientation,
		})
	default:
		return nil, fmt.Errorf("unsupported B-roll provider: %s", cfg.BRoll.Provider)
	}
}

func searchOptions(cfg *config.Config) broll.Options {
	retry := broll.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.BRoll.MaxAttempts
	return broll.Options{
		Concurrency: cfg.BRoll.Concurrency,
		Retry:       retry,
		Logger:      logger,
	}
}

func newSelector(cfg *config.Config) *timeline.Selector {
	return &timeline.Selector{Tolerance: cfg.BRoll.Tolerance}
}
