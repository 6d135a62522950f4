package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mgpai22/cutaway/internal/config"
	"github.com/mgpai22/cutaway/internal/script"
	"github.com/mgpai22/cutaway/internal/timeline"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Write an ad script with an LLM",
	Long: `Write a narrated ad script split into lines, each marked as narration or
B-roll with a stock footage search query.

The script is written as JSON, or YAML when --output ends in .yaml or .yml,
and can be edited by hand before running assemble.

Examples:
  cutaway script --topic "lower drug prices" --candidate "Jane Doe"
  cutaway script --topic "school funding" --seconds 60 -o ad.yaml
  cutaway script --topic "jobs" --provider anthropic --tone hopeful`,
	Args: cobra.NoArgs,
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	addBriefFlags(scriptCmd)

	scriptCmd.Flags().
		String("provider", "", "Script provider (gemini, openai, anthropic); overrides the config")
	scriptCmd.Flags().
		String("model", "", "Model to use (provider-specific, uses sensible defaults)")

	_ = scriptCmd.MarkFlagRequired("topic")
}

func addBriefFlags(cmd *cobra.Command) {
	cmd.Flags().String("topic", "", "What the ad is about")
	cmd.Flags().String("candidate", "", "Candidate or cause the ad supports")
	cmd.Flags().String("audience", "", "Target audience")
	cmd.Flags().String("tone", "", "Tone of the ad (e.g., hopeful, urgent)")
	cmd.Flags().Int("seconds", 30, "Target length of the narration in seconds")
	cmd.Flags().String("prompt", "", "Extra instructions for the script writer")
}

func briefFromFlags(cmd *cobra.Command) script.Brief {
	topic, _ := cmd.Flags().GetString("topic")
	candidate, _ := cmd.Flags().GetString("candidate")
	audience, _ := cmd.Flags().GetString("audience")
	tone, _ := cmd.Flags().GetString("tone")
	seconds, _ := cmd.Flags().GetInt("seconds")

	return script.Brief{
		Topic:     topic,
		Candidate: candidate,
		Audience:  audience,
		Tone:      tone,
		Seconds:   seconds,
	}
}

func runScript(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		overrideProvider(cfg, &cfg.Script.Provider, &cfg.Script.APIKey, p)
	}
	if m, _ := cmd.Flags().GetString("model"); m != "" {
		cfg.Script.Model = m
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	prompt, _ := cmd.Flags().GetString("prompt")
	outputPath, _ := cmd.Flags().GetString("output")

	writer, err := newScriptWriter(ctx, cfg, prompt)
	if err != nil {
		return fmt.Errorf("failed to create script writer: %w", err)
	}

	brief := briefFromFlags(cmd)
	logger.Infow("Writing script",
		"provider", cfg.Script.Provider,
		"topic", brief.Topic,
		"seconds", brief.Seconds,
	)

	segments, err := writer.Write(ctx, brief)
	if err != nil {
		return fmt.Errorf("script generation failed: %w", err)
	}

	logger.Infow("Script written", "segments", len(segments))

	return writeOutput(cmd, outputPath, func(w io.Writer) error {
		return encodeScript(w, segments, outputPath)
	})
}

// encodeScript writes YAML for .yaml/.yml paths and indented JSON otherwise.
func encodeScript(w io.Writer, segments []timeline.ScriptSegment, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(segments); err != nil {
			return fmt.Errorf("failed to encode script: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(segments); err != nil {
			return fmt.Errorf("failed to encode script: %w", err)
		}
		return nil
	}
}
