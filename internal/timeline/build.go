package timeline

import "time"

// result of running the whole pipeline
type Plan struct {
	Slots     []Slot
	Adjusted  []Interval
	Intervals []Interval
}

// Duration is the end of the last final interval.
func (p *Plan) Duration() time.Duration {
	if len(p.Intervals) == 0 {
		return 0
	}
	return p.Intervals[len(p.Intervals)-1].End
}

// Build aligns the words to the segments, picks a clip for every B-roll
// segment from candidates[i] (a missing entry means no candidates), and
// returns the adjusted and compacted timeline. A nil selector uses
// DefaultClipTolerance. Only alignment can fail.
func Build(
	segments []ScriptSegment,
	words []WordTiming,
	candidates [][]Candidate,
	selector *Selector,
) (*Plan, error) {
	if selector == nil {
		selector = NewSelector()
	}

	spans, err := Align(segments, words)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, len(segments))
	for i, segment := range segments {
		var found []Candidate
		if i < len(candidates) {
			found = candidates[i]
		}
		slots[i] = Slot{
			Segment: segment,
			Span:    spans[i],
			Clip:    selector.SelectFor(segment, spans[i], found),
		}
	}

	adjusted := AdjustAll(slots)

	return &Plan{
		Slots:     slots,
		Adjusted:  adjusted,
		Intervals: Compact(adjusted),
	}, nil
}
