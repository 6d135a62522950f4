package subtitle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/cutaway/internal/timeline"
)

func timings(step time.Duration, words ...string) []timeline.WordTiming {
	out := make([]timeline.WordTiming, len(words))
	for i, w := range words {
		out[i] = timeline.WordTiming{
			Word:  w,
			Start: time.Duration(i) * step,
			End:   time.Duration(i+1) * step,
		}
	}
	return out
}

func TestGenerate(t *testing.T) {
	segments := []timeline.ScriptSegment{
		{Transcript: "Vote early."},
		{Transcript: "She delivers.", IsBRoll: true},
	}
	words := timings(500*time.Millisecond, "vote", "early", "she", "delivers")

	sub, err := NewGenerator().Generate(segments, words)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(sub.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(sub.Entries))
	}

	first, second := sub.Entries[0], sub.Entries[1]
	if first.Text != "Vote early." || first.StartTime != 0 || first.EndTime != time.Second {
		t.Errorf("first entry = %+v", first)
	}
	if second.Text != "She delivers." || second.StartTime != time.Second || second.EndTime != 2*time.Second {
		t.Errorf("second entry = %+v", second)
	}
	if second.Index != 2 {
		t.Errorf("second index = %d, want 2", second.Index)
	}
}

func TestGenerateSplitsLongSegments(t *testing.T) {
	tokens := strings.Fields("one two three four five six seven eight nine ten")
	segments := []timeline.ScriptSegment{{Transcript: strings.Join(tokens, " ")}}
	words := timings(time.Second, tokens...)

	g := NewGenerator()
	g.MaxDuration = 3 * time.Second

	sub, err := g.Generate(segments, words)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(sub.Entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(sub.Entries))
	}
	for i, e := range sub.Entries {
		if e.EndTime-e.StartTime > g.MaxDuration {
			t.Errorf("entry %d lasts %v", i, e.EndTime-e.StartTime)
		}
		if i > 0 && e.StartTime != sub.Entries[i-1].EndTime {
			t.Errorf("entry %d starts at %v, previous ended at %v", i, e.StartTime, sub.Entries[i-1].EndTime)
		}
	}
}

func TestGenerateRejectsMisalignedWords(t *testing.T) {
	segments := []timeline.ScriptSegment{{Transcript: "go vote"}}

	tests := []struct {
		name  string
		words []timeline.WordTiming
		check func(t *testing.T, err error)
	}{
		{
			name:  "different script",
			words: timings(time.Second, "stay", "home", "tonight", "please"),
			check: func(t *testing.T, err error) {
				var mismatch *timeline.WordMismatchError
				if !errors.As(err, &mismatch) {
					t.Fatalf("got %v, want WordMismatchError", err)
				}
				if mismatch.Expected != "go" || mismatch.Actual != "stay" {
					t.Errorf("mismatch = %+v", mismatch)
				}
			},
		},
		{
			name:  "extra trailing word",
			words: timings(time.Second, "go", "vote", "now"),
			check: func(t *testing.T, err error) {
				if !errors.Is(err, timeline.ErrAlignmentOverrun) {
					t.Errorf("got %v, want ErrAlignmentOverrun", err)
				}
			},
		},
		{
			name:  "too few words",
			words: timings(time.Second, "go"),
			check: func(t *testing.T, err error) {
				if !errors.Is(err, timeline.ErrAlignmentUnderrun) {
					t.Errorf("got %v, want ErrAlignmentUnderrun", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := NewGenerator().Generate(segments, tt.words)
			if sub != nil {
				t.Errorf("got %d entries, want none", len(sub.Entries))
			}
			tt.check(t, err)
		})
	}
}

func TestFormatText(t *testing.T) {
	g := &Generator{MaxCharsPerLine: 10, MaxLinesPerSub: 2}

	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"a much longer line", "a much\nlonger line"},
		{"unbreakablelongword", "unbreakablelongword"},
	}

	for _, tt := range tests {
		if got := g.formatText(tt.in); got != tt.want {
			t.Errorf("formatText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriters(t *testing.T) {
	sub := &Subtitle{Entries: []Entry{
		{Index: 1, StartTime: 1500 * time.Millisecond, EndTime: time.Hour + 2*time.Second, Text: "hi"},
	}}
	dir := t.TempDir()

	tests := []struct {
		format Format
		want   string
	}{
		{FormatSRT, "1\n00:00:01,500 --> 01:00:02,000\nhi\n\n"},
		{FormatVTT, "WEBVTT\n\n1\n00:00:01.500 --> 01:00:02.000\nhi\n\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			path := filepath.Join(dir, "nested", "out"+GetExtensionForFormat(tt.format))
			if err := w.Write(sub, path); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("got %q, want %q", data, tt.want)
			}
		})
	}

	if _, err := NewWriter("ass"); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestGetFormatFromExtension(t *testing.T) {
	if got := GetFormatFromExtension("a/b.VTT"); got != FormatVTT {
		t.Errorf("got %s, want vtt", got)
	}
	if got := GetFormatFromExtension("a/b.txt"); got != FormatSRT {
		t.Errorf("got %s, want srt", got)
	}
}
