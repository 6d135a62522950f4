// Package timeline turns narrated script segments, per-word audio timings and
// cutaway candidates into the interval sequence handed to the video composer.
//
// The pipeline is Align → SelectClip → Adjust → Compact. Every stage is a pure
// function over its inputs; nothing here blocks, retries or logs.
package timeline

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// one narrated unit of the ad script
type ScriptSegment struct {
	Transcript string `json:"spokenTranscript" yaml:"spokenTranscript"`
	IsBRoll    bool   `json:"isBRoll" yaml:"isBRoll"`
	Query      string `json:"bRollSearchQuery,omitempty" yaml:"bRollSearchQuery,omitempty"`
}

// start/end of one spoken word in the synthesized audio
type WordTiming struct {
	Word  string
	Start time.Duration
	End   time.Duration
}

// audio time span realized by one script segment
type Span struct {
	Start time.Duration
	End   time.Duration
}

// Length is End-Start.
func (s Span) Length() time.Duration {
	return s.End - s.Start
}

// downloadable rendition of a candidate clip
type VideoFile struct {
	Link string `json:"link"`
}

// externally supplied cutaway clip, ranked by the search provider
type Candidate struct {
	Duration time.Duration
	Files    []VideoFile
}

// NonEmpty reports whether the candidate has at least one file to download.
func (c Candidate) NonEmpty() bool {
	return len(c.Files) > 0
}

// Link returns the first file variant's link, or "" when there is none.
func (c Candidate) Link() string {
	if len(c.Files) == 0 {
		return ""
	}
	return c.Files[0].Link
}

// Slot joins a segment with its aligned span and selected clip so the three
// can never drift out of step.
type Slot struct {
	Segment ScriptSegment
	Span    Span
	Clip    *Candidate
}

// one entry of the adjusted or final timeline
type Interval struct {
	Start     time.Duration
	End       time.Duration
	IsBRoll   bool
	BRollLink string
}

// Length is End-Start.
func (iv Interval) Length() time.Duration {
	return iv.End - iv.Start
}

func (iv Interval) String() string {
	if iv.IsBRoll {
		return fmt.Sprintf("[%s-%s broll %s]", iv.Start, iv.End, iv.BRollLink)
	}
	return fmt.Sprintf("[%s-%s narration]", iv.Start, iv.End)
}

// Seconds converts fractional seconds to a Duration, rounded to the
// nearest nanosecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// wire form of WordTiming, times in seconds
type wordTimingJSON struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (w WordTiming) MarshalJSON() ([]byte, error) {
	return json.Marshal(wordTimingJSON{
		Word:  w.Word,
		Start: w.Start.Seconds(),
		End:   w.End.Seconds(),
	})
}

func (w *WordTiming) UnmarshalJSON(data []byte) error {
	var raw wordTimingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = WordTiming{
		Word:  raw.Word,
		Start: Seconds(raw.Start),
		End:   Seconds(raw.End),
	}
	return nil
}

// wire form of Candidate, shaped like a stock-video search hit
type candidateJSON struct {
	Duration   float64     `json:"duration"`
	VideoFiles []VideoFile `json:"video_files"`
}

func (c Candidate) MarshalJSON() ([]byte, error) {
	files := c.Files
	if files == nil {
		files = []VideoFile{}
	}
	return json.Marshal(candidateJSON{
		Duration:   c.Duration.Seconds(),
		VideoFiles: files,
	})
}

func (c *Candidate) UnmarshalJSON(data []byte) error {
	var raw candidateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Candidate{
		Duration: Seconds(raw.Duration),
		Files:    raw.VideoFiles,
	}
	return nil
}

// wire form of Interval, times in seconds
type intervalJSON struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	IsBRoll   bool    `json:"isBRoll"`
	BRollLink *string `json:"bRollLink"`
}

func (iv Interval) MarshalJSON() ([]byte, error) {
	out := intervalJSON{
		Start:   iv.Start.Seconds(),
		End:     iv.End.Seconds(),
		IsBRoll: iv.IsBRoll,
	}
	if iv.IsBRoll {
		link := iv.BRollLink
		out.BRollLink = &link
	}
	return json.Marshal(out)
}

func (iv *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*iv = Interval{
		Start:   Seconds(raw.Start),
		End:     Seconds(raw.End),
		IsBRoll: raw.IsBRoll,
	}
	if raw.BRollLink != nil {
		iv.BRollLink = *raw.BRollLink
	}
	return nil
}
