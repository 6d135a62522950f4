package subtitle

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mgpai22/cutaway/internal/timeline"
)

// Generator turns aligned script segments into caption entries.
type Generator struct {
	MaxCharsPerLine int
	MaxLinesPerSub  int
	MaxDuration     time.Duration
}

func NewGenerator() *Generator {
	return &Generator{
		MaxCharsPerLine: 32, // vertical video is narrow
		MaxLinesPerSub:  2,
		MaxDuration:     4 * time.Second,
	}
}

// Generate builds captions from segments and their narration word timings.
// The words must align with the script exactly; otherwise the alignment
// error is returned and no captions are produced. Long segments are split
// between words, each caption taking the real start of its first word and
// end of its last.
func (g *Generator) Generate(
	segments []timeline.ScriptSegment,
	words []timeline.WordTiming,
) (*Subtitle, error) {
	if _, err := timeline.Align(segments, words); err != nil {
		return nil, err
	}

	var (
		entries []Entry
		cursor  int
	)

	for _, seg := range segments {
		tokens := strings.Fields(seg.Transcript)
		timings := words[cursor : cursor+len(tokens)]
		cursor += len(tokens)

		for _, group := range g.group(tokens, timings) {
			entries = append(entries, Entry{
				Index:     len(entries) + 1,
				StartTime: group.start,
				EndTime:   group.end,
				Text:      g.formatText(strings.Join(group.tokens, " ")),
			})
		}
	}

	return &Subtitle{
		Entries: entries,
		Format:  string(FormatSRT),
	}, nil
}

type wordGroup struct {
	tokens []string
	start  time.Duration
	end    time.Duration
}

// packs tokens into caption-sized groups
func (g *Generator) group(tokens []string, timings []timeline.WordTiming) []wordGroup {
	maxChars := g.MaxCharsPerLine * g.MaxLinesPerSub

	var (
		groups  []wordGroup
		current wordGroup
		chars   int
	)

	for i, token := range tokens {
		length := utf8.RuneCountInString(token)
		if len(current.tokens) > 0 {
			tooLong := chars+1+length > maxChars
			tooSlow := g.MaxDuration > 0 && timings[i].End-current.start > g.MaxDuration
			if tooLong || tooSlow {
				groups = append(groups, current)
				current = wordGroup{}
				chars = 0
			}
		}

		if len(current.tokens) == 0 {
			current.start = timings[i].Start
		} else {
			chars++
		}
		current.tokens = append(current.tokens, token)
		current.end = timings[i].End
		chars += length
	}

	if len(current.tokens) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// formatText formats text for display with line wrapping
func (g *Generator) formatText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	if runeCount <= g.MaxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// find the best split point (closest to middle)
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		line1 := strings.Join(words[:bestSplit], " ")
		line2 := strings.Join(words[bestSplit:], " ")
		return line1 + "\n" + line2
	}

	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
