package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mgpai22/cutaway/internal/assemble"
	"github.com/mgpai22/cutaway/internal/config"
	"github.com/mgpai22/cutaway/internal/script"
	"github.com/mgpai22/cutaway/internal/timeline"
	"github.com/spf13/cobra"
)

var alignCmd = &cobra.Command{
	Use:   "align [script_file] [words_file] [candidates_file]",
	Short: "Build the cut timeline from saved inputs, without any network calls",
	Long: `Align a script against saved narration word timings and pick B-roll from
saved search results.

The words file is a JSON array of {"word", "start", "end"} objects with times
in seconds, as written by assemble --words. The optional candidates file is a
JSON object mapping each search query to its ranked results, each with a
"duration" in seconds and a "video_files" array of {"link"}.

The timeline is written as JSON.

Examples:
  cutaway align ad.yaml words.json
  cutaway align ad.yaml words.json candidates.json -o plan.json
  cutaway align ad.json words.json candidates.json --tolerance 1s`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runAlign,
}

func init() {
	rootCmd.AddCommand(alignCmd)

	alignCmd.Flags().
		Duration("tolerance", 0, "How much shorter than its line a clip may be (default from config, 2s)")
}

func runAlign(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.BRoll.Tolerance, _ = cmd.Flags().GetDuration("tolerance")
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output")

	segments, err := loadScript(args[0])
	if err != nil {
		return err
	}
	words, err := loadWords(args[1])
	if err != nil {
		return err
	}

	byQuery := map[string][]timeline.Candidate{}
	if len(args) == 3 {
		if byQuery, err = loadCandidates(args[2]); err != nil {
			return err
		}
	}

	plan, err := timeline.Build(
		segments,
		words,
		candidatesFor(segments, byQuery),
		newSelector(cfg),
	)
	if err != nil {
		return fmt.Errorf("alignment failed: %w", err)
	}

	logger.Infow("Timeline built",
		"segments", len(segments),
		"intervals", len(plan.Intervals),
		"duration", plan.Duration().String(),
	)

	return writeOutput(cmd, outputPath, assemble.NewDocument(plan).WriteJSON)
}

func loadScript(path string) ([]timeline.ScriptSegment, error) {
	segments, err := script.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}
	return segments, nil
}

func loadWords(path string) ([]timeline.WordTiming, error) {
	var words []timeline.WordTiming
	if err := readJSON(path, &words); err != nil {
		return nil, fmt.Errorf("failed to load word timings: %w", err)
	}
	return words, nil
}

func loadCandidates(path string) (map[string][]timeline.Candidate, error) {
	var byQuery map[string][]timeline.Candidate
	if err := readJSON(path, &byQuery); err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	return byQuery, nil
}

// candidatesFor lays search results out per segment.
func candidatesFor(
	segments []timeline.ScriptSegment,
	byQuery map[string][]timeline.Candidate,
) [][]timeline.Candidate {
	out := make([][]timeline.Candidate, len(segments))
	for i, seg := range segments {
		if seg.IsBRoll {
			out[i] = byQuery[seg.Query]
		}
	}
	return out
}

// candidatesByQuery is the inverse of candidatesFor.
func candidatesByQuery(
	segments []timeline.ScriptSegment,
	candidates [][]timeline.Candidate,
) map[string][]timeline.Candidate {
	out := map[string][]timeline.Candidate{}
	for i, seg := range segments {
		if seg.IsBRoll && i < len(candidates) && candidates[i] != nil {
			out[seg.Query] = candidates[i]
		}
	}
	return out
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, path string, v any) error {
	return writeOutput(cmd, path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}
