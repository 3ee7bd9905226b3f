package internal

import (
	"strings"
)

// Marker characters recognized by the scanners.
const (
	markerAsterisk   = '*'
	markerUnderscore = '_'
	markerTilde      = '~'
	markerBacktick   = '`'
)

const fenceDelim = "```"

// Match describes one occurrence of a markup construct in a working
// buffer. Start/End bound the full construct including markers,
// ContentStart/ContentEnd bound the raw inner text; all four are byte
// offsets into the scanned string. Content is the markup-stripped text
// that replaces the construct (for fenced blocks it is the trimmed inner
// text and may be shorter than the raw range). Meta carries the URL for
// links and the language tag for fenced blocks.
type Match struct {
	Start        int
	End          int
	ContentStart int
	ContentEnd   int
	Content      string
	Meta         string
}

// FindWrapped locates runs wrapped in a doubled marker character, e.g.
// **bold**, ~~strike~~ or __underline__. The inner text must be non-empty
// and free of the marker character.
func FindWrapped(text string, marker byte) []Match {
	var matches []Match
	i := 0
	for i+4 <= len(text) {
		if text[i] != marker || text[i+1] != marker {
			i++
			continue
		}
		j := i + 2
		for j < len(text) && text[j] != marker {
			j++
		}
		if j == i+2 || j >= len(text) {
			i++
			continue
		}
		if j+1 < len(text) && text[j+1] == marker {
			matches = append(matches, Match{
				Start:        i,
				End:          j + 2,
				ContentStart: i + 2,
				ContentEnd:   j,
				Content:      text[i+2 : j],
			})
			i = j + 2
			continue
		}
		i++
	}
	return matches
}

// FindItalic locates *text* and _text_ runs. A marker only opens or
// closes a run when it is not adjacent to another marker of the same
// kind, so ** and __ are left for the bold and underline passes.
func FindItalic(text string) []Match {
	var matches []Match
	i := 0
	for i < len(text) {
		c := text[i]
		if c != markerAsterisk && c != markerUnderscore {
			i++
			continue
		}
		if (i > 0 && text[i-1] == c) || (i+1 < len(text) && text[i+1] == c) {
			// part of a doubled marker run, skip it whole
			for i < len(text) && text[i] == c {
				i++
			}
			continue
		}
		j := i + 1
		for j < len(text) && text[j] != c {
			j++
		}
		if j >= len(text) || j == i+1 {
			i++
			continue
		}
		if j+1 < len(text) && text[j+1] == c {
			i++
			continue
		}
		matches = append(matches, Match{
			Start:        i,
			End:          j + 1,
			ContentStart: i + 1,
			ContentEnd:   j,
			Content:      text[i+1 : j],
		})
		i = j + 1
	}
	return matches
}

// FindInlineCode locates `code` runs delimited by isolated single
// backticks. Backtick runs of two or more belong to fenced blocks and
// never open or close an inline code run.
func FindInlineCode(text string) []Match {
	var matches []Match
	i := 0
	for i < len(text) {
		if text[i] != markerBacktick {
			i++
			continue
		}
		if (i > 0 && text[i-1] == markerBacktick) || (i+1 < len(text) && text[i+1] == markerBacktick) {
			for i < len(text) && text[i] == markerBacktick {
				i++
			}
			continue
		}
		j := i + 1
		for j < len(text) && text[j] != markerBacktick {
			j++
		}
		if j >= len(text) || j == i+1 {
			i++
			continue
		}
		if j+1 < len(text) && text[j+1] == markerBacktick {
			i = j
			continue
		}
		matches = append(matches, Match{
			Start:        i,
			End:          j + 1,
			ContentStart: i + 1,
			ContentEnd:   j,
			Content:      text[i+1 : j],
		})
		i = j + 1
	}
	return matches
}

// FindLinks locates [text](url) constructs. Percent-encoded parentheses
// in the URL are decoded back before the URL lands in Match.Meta.
func FindLinks(text string) []Match {
	var matches []Match
	i := 0
	for i < len(text) {
		if text[i] != '[' {
			i++
			continue
		}
		closeBracket := strings.IndexByte(text[i+1:], ']')
		if closeBracket <= 0 {
			i++
			continue
		}
		labelEnd := i + 1 + closeBracket
		if labelEnd+1 >= len(text) || text[labelEnd+1] != '(' {
			i++
			continue
		}
		closeParen := strings.IndexByte(text[labelEnd+2:], ')')
		if closeParen <= 0 {
			i++
			continue
		}
		urlEnd := labelEnd + 2 + closeParen
		url := text[labelEnd+2 : urlEnd]
		url = strings.ReplaceAll(url, "%28", "(")
		url = strings.ReplaceAll(url, "%29", ")")
		matches = append(matches, Match{
			Start:        i,
			End:          urlEnd + 1,
			ContentStart: i + 1,
			ContentEnd:   labelEnd,
			Content:      text[i+1 : labelEnd],
			Meta:         url,
		})
		i = urlEnd + 1
	}
	return matches
}

// FindFences locates triple-backtick fenced blocks with an optional
// language tag on the opening fence. Content is trimmed of surrounding
// whitespace, matching how the block is rendered into plain text.
func FindFences(text string) []Match {
	var matches []Match
	i := 0
	for {
		rel := strings.Index(text[i:], fenceDelim)
		if rel < 0 {
			break
		}
		start := i + rel
		contentStart := start + len(fenceDelim)
		meta := ""
		j := contentStart
		for j < len(text) && isWordByte(text[j]) {
			j++
		}
		if j < len(text) && text[j] == '\n' {
			meta = text[contentStart:j]
			contentStart = j + 1
		}
		closing := strings.Index(text[contentStart:], fenceDelim)
		if closing < 0 {
			i = start + len(fenceDelim)
			continue
		}
		contentEnd := contentStart + closing
		matches = append(matches, Match{
			Start:        start,
			End:          contentEnd + len(fenceDelim),
			ContentStart: contentStart,
			ContentEnd:   contentEnd,
			Content:      strings.TrimSpace(text[contentStart:contentEnd]),
			Meta:         meta,
		})
		i = contentEnd + len(fenceDelim)
	}
	return matches
}

// isWordByte reports whether b can be part of a fence language tag.
func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
