package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mgpai22/cutaway/internal/assemble"
	"github.com/mgpai22/cutaway/internal/audio"
	"github.com/mgpai22/cutaway/internal/config"
	"github.com/mgpai22/cutaway/internal/ffmpeg"
	"github.com/mgpai22/cutaway/internal/subtitle"
	"github.com/mgpai22/cutaway/internal/video"
	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [script_file]",
	Short: "Narrate a script, find B-roll and build the cut timeline",
	Long: `Assemble an ad from a script file, or from a brief when no file is given.

The narration is synthesized while stock footage is searched for every B-roll
line. Each line is then aligned to the spoken words, a clip is picked for it
and the timeline is compacted into its final cut, written as JSON.

With --render the timeline is rendered to a video with ffmpeg: B-roll clips
play over their lines and the base footage (or black) plays elsewhere, all
under the narration.

Examples:
  cutaway assemble ad.yaml -o plan.json
  cutaway assemble ad.yaml --render ad.mp4 --captions ad.srt
  cutaway assemble --topic "lower drug prices" --candidate "Jane Doe" --render ad.mp4
  cutaway assemble ad.json --words words.json --candidates candidates.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)
	addBriefFlags(assembleCmd)

	assembleCmd.Flags().
		String("narration", "", "Where to write the narration audio (default narration.mp3 next to the output)")
	assembleCmd.Flags().
		String("render", "", "Render the final video to this path")
	assembleCmd.Flags().
		String("captions", "", "Write captions to this path (.srt or .vtt)")
	assembleCmd.Flags().
		String("words", "", "Save the narration word timings as JSON")
	assembleCmd.Flags().
		String("candidates", "", "Save the B-roll search results as JSON")
	assembleCmd.Flags().
		String("base-footage", "", "Video played under narration-only parts (default from config)")
	assembleCmd.Flags().
		String("speech-provider", "", "Speech provider (elevenlabs, openai); overrides the config")
	assembleCmd.Flags().
		String("voice", "", "Voice to narrate with (provider-specific)")
	assembleCmd.Flags().
		String("script-provider", "", "Script provider when writing from a brief; overrides the config")
	assembleCmd.Flags().
		Duration("tolerance", 0, "How much shorter than its line a clip may be (default from config, 2s)")
	assembleCmd.Flags().
		Int("concurrency", 0, "Number of parallel B-roll searches (default from config)")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyAssembleFlags(cmd, cfg); err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	narrationPath, _ := cmd.Flags().GetString("narration")
	renderPath, _ := cmd.Flags().GetString("render")
	captionsPath, _ := cmd.Flags().GetString("captions")
	wordsPath, _ := cmd.Flags().GetString("words")
	candidatesPath, _ := cmd.Flags().GetString("candidates")
	prompt, _ := cmd.Flags().GetString("prompt")

	if narrationPath == "" {
		narrationPath = defaultNarrationPath(outputPath)
	}
	if !audio.IsAudioFile(narrationPath) {
		return fmt.Errorf("unsupported narration file type %q: use an audio extension such as .mp3", filepath.Ext(narrationPath))
	}

	req := assemble.Request{
		NarrationPath: narrationPath,
		VideoPath:     renderPath,
	}

	a := &assemble.Assembler{
		Selector: newSelector(cfg),
		Search:   searchOptions(cfg),
		Logger:   logger,
		OnStatus: func(s assemble.Status) {
			logger.Infow("Status", "stage", string(s.Stage), "message", s.Message)
		},
	}

	if len(args) == 1 {
		if req.Segments, err = loadScript(args[0]); err != nil {
			return err
		}
	} else {
		brief := briefFromFlags(cmd)
		if brief.Topic == "" {
			return fmt.Errorf("a script file or --topic is required")
		}
		req.Brief = &brief
		if a.Writer, err = newScriptWriter(ctx, cfg, prompt); err != nil {
			return fmt.Errorf("failed to create script writer: %w", err)
		}
	}

	if a.Synthesizer, err = newSynthesizer(cfg); err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}
	if a.Searcher, err = newSearcher(cfg); err != nil {
		return fmt.Errorf("failed to create B-roll searcher: %w", err)
	}

	if renderPath != "" {
		composer, cleanup, err := newComposer(cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		a.Composer = composer
	}

	logger.Infow("Starting assembly",
		"narration", narrationPath,
		"speech_provider", cfg.Speech.Provider,
		"broll_provider", cfg.BRoll.Provider,
		"tolerance", cfg.BRoll.Tolerance.String(),
	)

	res, err := a.Run(ctx, req)
	if err != nil {
		return err
	}

	if wordsPath != "" {
		if err := writeJSON(cmd, wordsPath, res.Narration.Words); err != nil {
			return fmt.Errorf("failed to save word timings: %w", err)
		}
	}
	if candidatesPath != "" {
		byQuery := candidatesByQuery(res.Segments, res.Candidates)
		if err := writeJSON(cmd, candidatesPath, byQuery); err != nil {
			return fmt.Errorf("failed to save candidates: %w", err)
		}
	}
	if captionsPath != "" {
		subs, err := captionsFor(res.Segments, res.Narration.Words)
		if err != nil {
			return fmt.Errorf("failed to generate captions: %w", err)
		}
		format := subtitle.GetFormatFromExtension(captionsPath)
		if err := writeCaptions(cmd, subs, format, captionsPath); err != nil {
			return fmt.Errorf("failed to write captions: %w", err)
		}
	}

	if renderPath != "" {
		reportRender(ctx, renderPath, res.Plan.Duration())
	}

	return writeOutput(cmd, outputPath, assemble.NewDocument(res.Plan).WriteJSON)
}

func applyAssembleFlags(cmd *cobra.Command, cfg *config.Config) error {
	if p, _ := cmd.Flags().GetString("speech-provider"); p != "" {
		overrideProvider(cfg, &cfg.Speech.Provider, &cfg.Speech.APIKey, p)
	}
	if p, _ := cmd.Flags().GetString("script-provider"); p != "" {
		overrideProvider(cfg, &cfg.Script.Provider, &cfg.Script.APIKey, p)
	}
	if v, _ := cmd.Flags().GetString("voice"); v != "" {
		cfg.Speech.Voice = v
	}
	if b, _ := cmd.Flags().GetString("base-footage"); b != "" {
		cfg.Render.BaseFootage = b
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.BRoll.Tolerance, _ = cmd.Flags().GetDuration("tolerance")
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.BRoll.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	return config.Validate(cfg)
}

func defaultNarrationPath(outputPath string) string {
	if outputPath == "" || outputPath == "-" {
		return "narration.mp3"
	}
	return filepath.Join(filepath.Dir(outputPath), "narration.mp3")
}

func newComposer(cfg *config.Config) (*video.Composer, func(), error) {
	if _, err := ffmpeg.Ensure(); err != nil {
		return nil, nil, fmt.Errorf("rendering needs ffmpeg: %w", err)
	}

	base := cfg.Render.BaseFootage
	if base != "" {
		if _, err := os.Stat(base); err != nil {
			return nil, nil, fmt.Errorf("base footage not found: %s", base)
		}
		if !audio.IsVideoFile(base) {
			return nil, nil, fmt.Errorf("unsupported base footage type: %s", filepath.Ext(base))
		}
	}

	tempDir, err := os.MkdirTemp("", "cutaway-*")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	composer := video.NewComposer(tempDir, video.Options{
		Width:       cfg.Render.Width,
		Height:      cfg.Render.Height,
		FPS:         cfg.Render.FPS,
		BaseFootage: base,
		Concurrency: cfg.BRoll.Concurrency,
	}, logger)

	return composer, func() { os.RemoveAll(tempDir) }, nil
}

func reportRender(ctx context.Context, path string, planned time.Duration) {
	rendered, err := audio.GetDuration(ctx, path)
	if err != nil {
		logger.Warnw("Could not probe rendered video", "path", path, "error", err)
		return
	}
	absPath, _ := filepath.Abs(path)
	logger.Infow("Video rendered",
		"path", absPath,
		"duration", rendered.String(),
		"timeline", planned.String(),
	)
}
