package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/cutaway/internal/script"
	"github.com/mgpai22/cutaway/internal/subtitle"
	"github.com/mgpai22/cutaway/internal/timeline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const testScript = `- spokenTranscript: Vote for change.
  isBRoll: false
- spokenTranscript: She fights for you.
  isBRoll: true
  bRollSearchQuery: rally
`

const testWords = `[
  {"word": "Vote", "start": 0, "end": 0.5},
  {"word": "for", "start": 0.5, "end": 1.0},
  {"word": "change.", "start": 1.0, "end": 1.5},
  {"word": "She", "start": 1.5, "end": 2.0},
  {"word": "fights", "start": 2.0, "end": 2.5},
  {"word": "for", "start": 2.5, "end": 3.0},
  {"word": "you.", "start": 3.0, "end": 3.5}
]`

const testCandidates = `{
  "rally": [
    {"duration": 3, "video_files": []},
    {"duration": 4, "video_files": [{"link": "https://clips.example/rally.mp4"}]}
  ]
}`

func TestAlignCommand(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "ad.yaml", testScript)
	wordsPath := writeFile(t, dir, "words.json", testWords)
	candidatesPath := writeFile(t, dir, "candidates.json", testCandidates)
	outPath := filepath.Join(dir, "out", "plan.json")

	rootCmd.SetArgs([]string{"align", scriptPath, wordsPath, candidatesPath, "-o", outPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("align: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Intervals []timeline.Interval `json:"intervals"`
		Duration  float64             `json:"duration"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []timeline.Interval{
		{Start: 0, End: 1500 * time.Millisecond},
		{Start: 1500 * time.Millisecond, End: 3500 * time.Millisecond, IsBRoll: true, BRollLink: "https://clips.example/rally.mp4"},
	}
	if len(doc.Intervals) != len(want) {
		t.Fatalf("got %v, want %v", doc.Intervals, want)
	}
	for i := range want {
		if doc.Intervals[i] != want[i] {
			t.Errorf("interval %d = %v, want %v", i, doc.Intervals[i], want[i])
		}
	}
	if doc.Duration != 3.5 {
		t.Errorf("duration = %v, want 3.5", doc.Duration)
	}
}

func TestAlignCommandRejectsNegativeTolerance(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "ad.yaml", testScript)
	wordsPath := writeFile(t, dir, "words.json", testWords)
	outPath := filepath.Join(dir, "plan.json")

	t.Cleanup(func() {
		f := alignCmd.Flags().Lookup("tolerance")
		_ = f.Value.Set("0s")
		f.Changed = false
	})

	rootCmd.SetArgs([]string{"align", scriptPath, wordsPath, "--tolerance=-1s", "-o", outPath})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "broll.tolerance") {
		t.Fatalf("got %v, want tolerance validation error", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Error("plan written despite invalid tolerance")
	}
}

func TestCaptionsCommandRejectsForeignWords(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "ad.yaml", testScript)
	wordsPath := writeFile(t, dir, "words.json", `[
  {"word": "Stay", "start": 0, "end": 0.5},
  {"word": "home", "start": 0.5, "end": 1.0}
]`)
	outPath := filepath.Join(dir, "ad.srt")

	rootCmd.SetArgs([]string{"captions", scriptPath, wordsPath, "-o", outPath})
	err := rootCmd.Execute()
	var mismatch *timeline.WordMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want WordMismatchError", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Error("captions written despite misaligned words")
	}
}

func TestCandidatesLayout(t *testing.T) {
	segments := []timeline.ScriptSegment{
		{Transcript: "a"},
		{Transcript: "b", IsBRoll: true, Query: "rally"},
		{Transcript: "c", IsBRoll: true, Query: "flag"},
	}
	rally := []timeline.Candidate{{Duration: time.Second}}
	byQuery := map[string][]timeline.Candidate{"rally": rally, "a": rally}

	per := candidatesFor(segments, byQuery)
	if len(per) != 3 || per[0] != nil || len(per[1]) != 1 || per[2] != nil {
		t.Fatalf("candidatesFor = %v", per)
	}

	back := candidatesByQuery(segments, per)
	if len(back) != 1 || len(back["rally"]) != 1 {
		t.Errorf("candidatesByQuery = %v", back)
	}
}

func TestCaptionFormat(t *testing.T) {
	tests := []struct {
		flag    string
		output  string
		want    subtitle.Format
		wantErr bool
	}{
		{"", "", subtitle.FormatSRT, false},
		{"", "ad.vtt", subtitle.FormatVTT, false},
		{"", "ad.srt", subtitle.FormatSRT, false},
		{"VTT", "ad.srt", subtitle.FormatVTT, false},
		{"srt", "", subtitle.FormatSRT, false},
		{"ass", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.flag+"/"+tt.output, func(t *testing.T) {
			got, err := captionFormat(tt.flag, tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("captionFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("captionFormat(%q, %q) = %q, want %q", tt.flag, tt.output, got, tt.want)
			}
		})
	}
}

func TestDefaultNarrationPath(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"", "narration.mp3"},
		{"-", "narration.mp3"},
		{filepath.Join("out", "plan.json"), filepath.Join("out", "narration.mp3")},
	}

	for _, tt := range tests {
		if got := defaultNarrationPath(tt.output); got != tt.want {
			t.Errorf("defaultNarrationPath(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestEncodeScript(t *testing.T) {
	segments := []timeline.ScriptSegment{
		{Transcript: "Vote for change."},
		{Transcript: "She fights for you.", IsBRoll: true, Query: "rally"},
	}
	dir := t.TempDir()

	for _, name := range []string{"ad.yaml", "ad.json"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encodeScript(&buf, segments, name); err != nil {
				t.Fatalf("encodeScript() error = %v", err)
			}
			if strings.HasSuffix(name, ".json") && !strings.Contains(buf.String(), `"bRollSearchQuery": "rally"`) {
				t.Errorf("json output missing query: %s", buf.String())
			}

			path := writeFile(t, dir, name, buf.String())
			loaded, err := script.Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(loaded) != len(segments) {
				t.Fatalf("got %d segments, want %d", len(loaded), len(segments))
			}
			for i := range segments {
				if loaded[i] != segments[i] {
					t.Errorf("segment %d = %+v, want %+v", i, loaded[i], segments[i])
				}
			}
		})
	}
}
