package timeline

// Adjust turns one slot into one or two intervals. A clip shorter than the
// slot takes the front of it and narration fills the rest; a clip at least as
// long as the slot takes the whole slot (the compositor trims it). A slot is
// never stretched to fit a longer clip.
func Adjust(slot Slot) []Interval {
	start, end := slot.Span.Start, slot.Span.End

	if slot.Clip == nil {
		return []Interval{{Start: start, End: end}}
	}

	link := slot.Clip.Link()
	if end-start > slot.Clip.Duration {
		split := start + slot.Clip.Duration
		return []Interval{
			{Start: start, End: split, IsBRoll: true, BRollLink: link},
			{Start: split, End: end},
		}
	}

	return []Interval{{Start: start, End: end, IsBRoll: true, BRollLink: link}}
}

// AdjustAll applies Adjust to every slot in order.
func AdjustAll(slots []Slot) []Interval {
	out := make([]Interval, 0, len(slots)*2)
	for _, slot := range slots {
		out = append(out, Adjust(slot)...)
	}
	return out
}
