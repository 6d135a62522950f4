package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mgpai22/cutaway/internal/config"
	"github.com/mgpai22/cutaway/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cutaway",
	Short: "Cut B-roll into narrated political ads",
	Long: `Cutaway builds short political ads from a script.

It synthesizes the narration, searches stock footage for the lines marked as
B-roll, aligns every line to the spoken audio and produces the final cut
timeline, optionally rendering it with ffmpeg.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path (stdout when empty)")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "YAML configuration file")
}

// loads the config file named by --config, or the defaults
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// writeOutput calls encode with the file at path, or stdout when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, encode func(io.Writer) error) error {
	if path == "" || path == "-" {
		return encode(cmd.OutOrStdout())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
