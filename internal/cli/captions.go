package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mgpai22/cutaway/internal/subtitle"
	"github.com/mgpai22/cutaway/internal/timeline"
	"github.com/spf13/cobra"
)

var captionsCmd = &cobra.Command{
	Use:   "captions [script_file] [words_file]",
	Short: "Write captions for a narrated script",
	Long: `Write SRT or WebVTT captions from a script and its narration word timings.

Each caption starts on the first spoken word it shows and ends on the last;
long lines are split between words.

Examples:
  cutaway captions ad.yaml words.json -o ad.srt
  cutaway captions ad.yaml words.json --format vtt`,
	Args: cobra.ExactArgs(2),
	RunE: runCaptions,
}

func init() {
	rootCmd.AddCommand(captionsCmd)

	captionsCmd.Flags().
		StringP("format", "f", "", "Caption format (srt, vtt); defaults to the output extension, then srt")
	captionsCmd.Flags().
		Int("max-chars", 32, "Maximum characters per caption line")
}

func runCaptions(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := captionFormat(formatStr, outputPath)
	if err != nil {
		return err
	}

	segments, err := loadScript(args[0])
	if err != nil {
		return err
	}
	words, err := loadWords(args[1])
	if err != nil {
		return err
	}

	generator := subtitle.NewGenerator()
	if maxChars > 0 {
		generator.MaxCharsPerLine = maxChars
	}

	subs, err := generator.Generate(segments, words)
	if err != nil {
		return fmt.Errorf("failed to generate captions: %w", err)
	}

	logger.Infow("Captions generated", "entries", len(subs.Entries), "format", format)

	return writeCaptions(cmd, subs, format, outputPath)
}

func captionFormat(flag, outputPath string) (subtitle.Format, error) {
	switch strings.ToLower(flag) {
	case "":
		if outputPath == "" {
			return subtitle.FormatSRT, nil
		}
		return subtitle.GetFormatFromExtension(outputPath), nil
	case "srt":
		return subtitle.FormatSRT, nil
	case "vtt":
		return subtitle.FormatVTT, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt or vtt", flag)
	}
}

func writeCaptions(
	cmd *cobra.Command,
	subs *subtitle.Subtitle,
	format subtitle.Format,
	path string,
) error {
	subs.Format = string(format)

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create caption writer: %w", err)
	}
	return writeOutput(cmd, path, func(w io.Writer) error {
		return writer.Encode(subs, w)
	})
}

// captions for an assembled ad
func captionsFor(segments []timeline.ScriptSegment, words []timeline.WordTiming) (*subtitle.Subtitle, error) {
	return subtitle.NewGenerator().Generate(segments, words)
}
