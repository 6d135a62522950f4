package timeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var (
	// ErrAlignmentOverrun is returned when the audio has more words than the
	// script accounts for.
	ErrAlignmentOverrun = errors.New("alignment overrun: audio longer than script")

	// ErrAlignmentUnderrun is returned when the audio ends before every
	// segment has been spoken.
	ErrAlignmentUnderrun = errors.New("alignment underrun: audio shorter than script")

	// ErrWordMismatch is the sentinel wrapped by every *WordMismatchError.
	ErrWordMismatch = errors.New("word mismatch")
)

// WordMismatchError reports the first spoken word that did not match the
// script. Expected and Actual are normalized; Spoken is the word as the
// synthesizer reported it. Similarity is the Jaro-Winkler score of the two
// normalized words and is diagnostic only.
type WordMismatchError struct {
	Segment    int
	Position   int
	Expected   string
	Actual     string
	Spoken     string
	Similarity float64
}

func (e *WordMismatchError) Error() string {
	return fmt.Sprintf(
		"word mismatch in segment %d at word %d: expected %q, got %q (similarity %.2f)",
		e.Segment,
		e.Position,
		e.Expected,
		e.Actual,
		e.Similarity,
	)
}

func (e *WordMismatchError) Unwrap() error {
	return ErrWordMismatch
}

var nonWordChars = regexp.MustCompile(`\W`)

// NormalizeWord strips every non-word character and lowercases the rest.
func NormalizeWord(word string) string {
	return strings.ToLower(nonWordChars.ReplaceAllString(word, ""))
}

// NormalizeTranscript splits a transcript on whitespace and normalizes each
// token.
func NormalizeTranscript(transcript string) []string {
	fields := strings.Fields(transcript)
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = NormalizeWord(f)
	}
	return words
}

// Align walks the word timings in one greedy pass and returns one span per
// segment, in segment order. Any desynchronization between the audio and the
// script is fatal: it returns ErrAlignmentOverrun, ErrAlignmentUnderrun or a
// *WordMismatchError and never a partial result.
func Align(segments []ScriptSegment, words []WordTiming) ([]Span, error) {
	spans := make([]Span, 0, len(segments))

	var (
		segmentIndex int
		wordIndex    int
		expected     []string
		current      Span
	)

	for _, timing := range words {
		if segmentIndex >= len(segments) {
			return nil, fmt.Errorf(
				"%w: unexpected word %q at %s",
				ErrAlignmentOverrun,
				timing.Word,
				timing.Start,
			)
		}

		if wordIndex == 0 {
			expected = NormalizeTranscript(segments[segmentIndex].Transcript)
			current.Start = timing.Start
		}

		actual := NormalizeWord(timing.Word)
		if wordIndex >= len(expected) || actual != expected[wordIndex] {
			want := ""
			if wordIndex < len(expected) {
				want = expected[wordIndex]
			}
			return nil, &WordMismatchError{
				Segment:    segmentIndex,
				Position:   wordIndex,
				Expected:   want,
				Actual:     actual,
				Spoken:     timing.Word,
				Similarity: matchr.JaroWinkler(want, actual, false),
			}
		}

		wordIndex++
		current.End = timing.End

		if wordIndex == len(expected) {
			spans = append(spans, current)
			segmentIndex++
			wordIndex = 0
		}
	}

	if segmentIndex < len(segments) {
		return nil, fmt.Errorf(
			"%w: %d of %d segments spoken",
			ErrAlignmentUnderrun,
			segmentIndex,
			len(segments),
		)
	}

	return spans, nil
}
