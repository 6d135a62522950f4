package assemble

import (
	"encoding/json"
	"io"

	"github.com/mgpai22/cutaway/internal/timeline"
)

// Document is the JSON form of a built timeline. Times are in seconds.
type Document struct {
	Segments  []SegmentEntry      `json:"segments"`
	Intervals []timeline.Interval `json:"intervals"`
	Duration  float64             `json:"duration"`
}

// one script segment with its aligned span and chosen clip
type SegmentEntry struct {
	Transcript string  `json:"transcript"`
	IsBRoll    bool    `json:"isBRoll"`
	Query      string  `json:"query,omitempty"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Clip       *string `json:"clip"`
}

func NewDocument(plan *timeline.Plan) *Document {
	doc := &Document{
		Segments:  make([]SegmentEntry, len(plan.Slots)),
		Intervals: plan.Intervals,
		Duration:  plan.Duration().Seconds(),
	}
	if doc.Intervals == nil {
		doc.Intervals = []timeline.Interval{}
	}

	for i, slot := range plan.Slots {
		entry := SegmentEntry{
			Transcript: slot.Segment.Transcript,
			IsBRoll:    slot.Segment.IsBRoll,
			Query:      slot.Segment.Query,
			Start:      slot.Span.Start.Seconds(),
			End:        slot.Span.End.Seconds(),
		}
		if slot.Clip != nil {
			link := slot.Clip.Link()
			entry.Clip = &link
		}
		doc.Segments[i] = entry
	}
	return doc
}

// WriteJSON writes the document indented.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
