package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writes the subtitle to an SRT file
func (w *SRTWriter) Write(sub *Subtitle, path string) error {
	return writeFile(path, func(out io.Writer) error {
		return w.Encode(sub, out)
	})
}

func (w *SRTWriter) Encode(sub *Subtitle, out io.Writer) error {
	bw := bufio.NewWriter(out)
	for i, entry := range sub.Entries {
		// timestamps: 00:00:00,000 --> 00:00:00,000
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1,
			formatTime(entry.StartTime, ','),
			formatTime(entry.EndTime, ','),
			entry.Text)
	}
	return bw.Flush()
}

// writes the subtitle to a VTT file
func (w *VTTWriter) Write(sub *Subtitle, path string) error {
	return writeFile(path, func(out io.Writer) error {
		return w.Encode(sub, out)
	})
}

func (w *VTTWriter) Encode(sub *Subtitle, out io.Writer) error {
	bw := bufio.NewWriter(out)
	bw.WriteString("WEBVTT\n\n")

	for i, entry := range sub.Entries {
		// timestamps: 00:00:00.000 --> 00:00:00.000
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1,
			formatTime(entry.StartTime, '.'),
			formatTime(entry.EndTime, '.'),
			entry.Text)
	}
	return bw.Flush()
}

func formatTime(d time.Duration, sep rune) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, seconds, sep, millis)
}

func writeFile(path string, encode func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		return FormatVTT
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	default:
		return ".srt"
	}
}
