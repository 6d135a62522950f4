package timeline

import "time"

// DefaultClipTolerance is how much shorter than its slot a clip may be and
// still be picked.
const DefaultClipTolerance = 2 * time.Second

// picks a cutaway clip per B-roll segment
type Selector struct {
	// Tolerance is the allowed under-shoot; zero means no under-shoot.
	Tolerance time.Duration
}

func NewSelector() *Selector {
	return &Selector{Tolerance: DefaultClipTolerance}
}

// Select returns the first candidate, in the order given, that has a file to
// download and runs at least length-Tolerance. It returns nil when none fits.
func (s *Selector) Select(length time.Duration, candidates []Candidate) *Candidate {
	minimum := length - s.Tolerance
	for i := range candidates {
		c := candidates[i]
		if c.Duration >= minimum && c.NonEmpty() {
			return &c
		}
	}
	return nil
}

// SelectFor applies Select to a segment, returning nil for segments that are
// not eligible for B-roll.
func (s *Selector) SelectFor(
	segment ScriptSegment,
	span Span,
	candidates []Candidate,
) *Candidate {
	if !segment.IsBRoll {
		return nil
	}
	return s.Select(span.Length(), candidates)
}

// SelectClip is Select with DefaultClipTolerance.
func SelectClip(length time.Duration, candidates []Candidate) *Candidate {
	return NewSelector().Select(length, candidates)
}
