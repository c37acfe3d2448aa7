package helpers

import (
	"strings"
	"unicode/utf8"
)

// HighlightSegment is a run of text, flagged when it matches the search term.
type HighlightSegment struct {
	Text  string
	Match bool
}

// HighlightSegments splits text around every case-insensitive occurrence of term.
func HighlightSegments(text, term string) []HighlightSegment {
	term = strings.TrimSpace(term)
	if text == "" {
		return nil
	}
	if term == "" {
		return []HighlightSegment{{Text: text}}
	}

	width := utf8.RuneCountInString(term)
	var segments []HighlightSegment
	last := 0
	for i := 0; i < len(text); {
		end := advanceRunes(text, i, width)
		if end > 0 && strings.EqualFold(text[i:end], term) {
			if i > last {
				segments = append(segments, HighlightSegment{Text: text[last:i]})
			}
			segments = append(segments, HighlightSegment{Text: text[i:end], Match: true})
			i, last = end, end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	if last < len(text) {
		segments = append(segments, HighlightSegment{Text: text[last:]})
	}
	return segments
}

// advanceRunes returns the byte offset n runes after start, or -1 when text is too short.
func advanceRunes(text string, start, n int) int {
	i := start
	for ; n > 0; n-- {
		if i >= len(text) {
			return -1
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}
