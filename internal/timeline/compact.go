package timeline

import "slices"

// Compact merges and boundary-fixes the adjusted intervals into the final
// timeline. The input is not modified.
//
// Walking current/next pairs:
//   - narration, narration: merged into one interval; runs of any length
//     collapse into one
//   - narration, B-roll: narration ends where the B-roll starts
//   - B-roll, narration: B-roll kept; unless the narration is the final
//     interval its start snaps to the B-roll's end
//   - B-roll, B-roll: kept as is, different clips never merge
func Compact(adjusted []Interval) []Interval {
	work := slices.Clone(adjusted)
	out := make([]Interval, 0, len(work))

	for i := 0; i < len(work); i++ {
		current := work[i]

		for !current.IsBRoll && i+1 < len(work) && !work[i+1].IsBRoll {
			current = Interval{Start: current.Start, End: work[i+1].End}
			i++
		}

		if i+1 >= len(work) {
			out = append(out, current)
			continue
		}

		next := &work[i+1]
		switch {
		case !current.IsBRoll:
			out = append(out, Interval{Start: current.Start, End: next.Start})
		case !next.IsBRoll:
			out = append(out, current)
			if i+2 < len(work) {
				next.Start = current.End
			}
		default:
			out = append(out, current)
		}
	}

	return out
}
