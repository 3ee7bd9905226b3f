package telepub

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/itsatony/go-telepub/internal"
)

// Extractor turns markdown-flavored text into plain text plus an ordered
// list of formatting spans. It is pure and safe for concurrent use.
//
// Marker kinds are processed in a fixed precedence order - inline code,
// bold, italic, strikethrough, underline, links, fenced blocks,
// blockquotes - so that overlapping syntaxes (** vs *, backticks vs
// fences) resolve the same way every time. Unterminated or malformed
// markers degrade to literal text.
type Extractor struct {
	logger *zap.Logger
}

// ExtractorOption is a functional option for configuring the Extractor.
type ExtractorOption func(*extractorConfig)

type extractorConfig struct {
	logger *zap.Logger
}

// WithExtractorLogger sets the logger for the extractor.
// Default: no logging.
func WithExtractorLogger(logger *zap.Logger) ExtractorOption {
	return func(c *extractorConfig) {
		c.logger = logger
	}
}

// NewExtractor creates a markdown span extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	config := &extractorConfig{}
	for _, opt := range opts {
		opt(config)
	}
	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract parses text and returns the markup-stripped plain text with
// the spans describing its formatting. Span offsets and lengths are
// UTF-16 code-unit counts against the returned plain text, and the span
// list is sorted ascending by offset (stable for ties).
func (x *Extractor) Extract(text string) (string, []Span) {
	if text == "" {
		return "", nil
	}

	st := &extractState{text: text}
	st.pass(internal.FindInlineCode(st.text), SpanCode)
	st.pass(internal.FindWrapped(st.text, '*'), SpanBold)
	st.pass(internal.FindItalic(st.text), SpanItalic)
	st.pass(internal.FindWrapped(st.text, '~'), SpanStrike)
	st.pass(internal.FindWrapped(st.text, '_'), SpanUnderline)
	st.pass(internal.FindLinks(st.text), SpanTextLink)
	st.pass(internal.FindFences(st.text), SpanPre)
	st.blockquotes()
	st.trim()

	spans := st.spans[:0]
	for _, s := range st.spans {
		if s.Length > 0 {
			spans = append(spans, s)
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Offset < spans[j].Offset
	})

	if len(spans) == 0 {
		return st.text, nil
	}
	return st.text, spans
}

// extractState is the working buffer of one Extract call: the shrinking
// text plus every span recorded so far, kept valid against that text.
type extractState struct {
	text  string
	spans []Span
}

// pass applies one marker kind. Matches are processed right to left:
// removing markup at one match cannot move anything before it, so match
// positions found up front stay valid for the whole pass. Spans recorded
// earlier (by this pass or previous ones) are shifted to account for the
// removed markup.
func (s *extractState) pass(matches []internal.Match, kind SpanKind) {
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]

		prefixUnits := internal.UTF16Len(s.text[:m.Start])
		openUnits := internal.UTF16Len(s.text[m.Start:m.ContentStart])
		innerRaw := s.text[m.ContentStart:m.ContentEnd]
		innerUnits := internal.UTF16Len(innerRaw)
		closeUnits := internal.UTF16Len(s.text[m.ContentEnd:m.End])
		contentUnits := internal.UTF16Len(m.Content)

		// fenced blocks insert trimmed content; account for the cut
		leadingCut := 0
		if len(m.Content) < len(innerRaw) {
			leadingCut = internal.UTF16Len(innerRaw[:strings.Index(innerRaw, m.Content)])
		}

		contentStartUnits := prefixUnits + openUnits
		endUnits := prefixUnits + openUnits + innerUnits + closeUnits
		removedTotal := openUnits + closeUnits + (innerUnits - contentUnits)

		for j := range s.spans {
			switch {
			case s.spans[j].Offset >= endUnits:
				s.spans[j].Offset -= removedTotal
			case s.spans[j].Offset >= contentStartUnits:
				s.spans[j].Offset -= openUnits + leadingCut
			}
		}

		span := Span{Kind: kind, Offset: prefixUnits, Length: contentUnits}
		switch kind {
		case SpanTextLink:
			span.URL = m.Meta
		case SpanPre:
			span.Language = m.Meta
		}
		s.spans = append(s.spans, span)

		s.text = s.text[:m.Start] + m.Content + s.text[m.End:]
	}
}

// blockquotes strips the > marker from quoted lines and records a
// blockquote span per line, positioned against the de-quoted text.
func (s *extractState) blockquotes() {
	if !strings.Contains(s.text, ">") {
		return
	}

	lines := strings.Split(s.text, "\n")
	out := make([]string, 0, len(lines))
	priorSpans := len(s.spans)

	// adjustment per quoted line, in pre-pass UTF-16 coordinates
	type lineCut struct {
		start   int // line start
		end     int // line end
		leading int // units removed before the content (marker + spaces)
		total   int // units removed from the whole line
	}
	var cuts []lineCut

	oldPos := 0 // line start in the pre-pass text
	newPos := 0 // line start in the de-quoted text
	changed := false

	for _, line := range lines {
		lineUnits := internal.UTF16Len(line)
		if strings.HasPrefix(line, ">") {
			afterMarker := line[1:]
			clean := strings.TrimSpace(afterMarker)
			cleanUnits := internal.UTF16Len(clean)
			leading := lineUnits - internal.UTF16Len(strings.TrimLeft(afterMarker, " \t"))

			cuts = append(cuts, lineCut{
				start:   oldPos,
				end:     oldPos + lineUnits,
				leading: leading,
				total:   lineUnits - cleanUnits,
			})
			s.spans = append(s.spans, Span{
				Kind:   SpanBlockquote,
				Offset: newPos,
				Length: cleanUnits,
			})

			out = append(out, clean)
			newPos += cleanUnits + 1
			changed = true
		} else {
			out = append(out, line)
			newPos += lineUnits + 1
		}
		oldPos += lineUnits + 1
	}

	if !changed {
		return
	}

	for i := 0; i < priorSpans; i++ {
		offset := s.spans[i].Offset
		shift := 0
		for _, cut := range cuts {
			switch {
			case offset >= cut.end:
				shift += cut.total
			case offset >= cut.start:
				shift += cut.leading
			}
		}
		s.spans[i].Offset = offset - shift
	}

	s.text = strings.Join(out, "\n")
}

// trim removes surrounding whitespace from the final plain text,
// shifting spans left by whatever was cut from the front.
func (s *extractState) trim() {
	trimmedLeft := strings.TrimLeft(s.text, " \t\r\n")
	cut := internal.UTF16Len(s.text) - internal.UTF16Len(trimmedLeft)
	if cut > 0 {
		for i := range s.spans {
			s.spans[i].Offset -= cut
			if s.spans[i].Offset < 0 {
				s.spans[i].Offset = 0
			}
		}
	}
	s.text = strings.TrimRight(trimmedLeft, " \t\r\n")
}

var (
	asteriskRunRe   = regexp.MustCompile(`\*{3,}`)
	underscoreRunRe = regexp.MustCompile(`_{3,}`)
	tildeRunRe      = regexp.MustCompile(`~{3,}`)
	linkRe          = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// Normalize repairs markdown that trips up span extraction: marker runs
// of three or more collapse to their two-character form, parentheses in
// link URLs are percent-encoded, and excessive blank lines shrink to
// one. Run it on text of uncertain origin before Extract.
func (x *Extractor) Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = asteriskRunRe.ReplaceAllString(text, "**")
	text = underscoreRunRe.ReplaceAllString(text, "__")
	text = tildeRunRe.ReplaceAllString(text, "~~")

	text = linkRe.ReplaceAllStringFunc(text, func(link string) string {
		sub := linkRe.FindStringSubmatch(link)
		url := strings.ReplaceAll(sub[2], "(", "%28")
		url = strings.ReplaceAll(url, ")", "%29")
		return "[" + sub[1] + "](" + url + ")"
	})

	return newlineRunRe.ReplaceAllString(text, "\n\n")
}
