package telepub

import (
	"go.uber.org/zap"
)

// SpanKind identifies one rich-text formatting style.
type SpanKind int

const (
	SpanBold SpanKind = iota
	SpanItalic
	SpanCode
	SpanPre
	SpanStrike
	SpanUnderline
	SpanBlockquote
	SpanTextLink
)

// Wire names for span kinds, following the Telegram Bot API entity types.
const (
	SpanNameBold       = "bold"
	SpanNameItalic     = "italic"
	SpanNameCode       = "code"
	SpanNamePre        = "pre"
	SpanNameStrike     = "strikethrough"
	SpanNameUnderline  = "underline"
	SpanNameBlockquote = "blockquote"
	SpanNameTextLink   = "text_link"
	SpanNameUnknown    = "unknown"
)

// String returns the wire name of the span kind.
func (k SpanKind) String() string {
	switch k {
	case SpanBold:
		return SpanNameBold
	case SpanItalic:
		return SpanNameItalic
	case SpanCode:
		return SpanNameCode
	case SpanPre:
		return SpanNamePre
	case SpanStrike:
		return SpanNameStrike
	case SpanUnderline:
		return SpanNameUnderline
	case SpanBlockquote:
		return SpanNameBlockquote
	case SpanTextLink:
		return SpanNameTextLink
	default:
		return SpanNameUnknown
	}
}

// ParseSpanKind maps a wire name back to its SpanKind.
func ParseSpanKind(name string) (SpanKind, bool) {
	switch name {
	case SpanNameBold:
		return SpanBold, true
	case SpanNameItalic:
		return SpanItalic, true
	case SpanNameCode:
		return SpanCode, true
	case SpanNamePre:
		return SpanPre, true
	case SpanNameStrike:
		return SpanStrike, true
	case SpanNameUnderline:
		return SpanUnderline, true
	case SpanNameBlockquote:
		return SpanBlockquote, true
	case SpanNameTextLink:
		return SpanTextLink, true
	default:
		return 0, false
	}
}

// Span is one styled run inside plain text. Offset and Length are
// measured in UTF-16 code units of the final plain text, the addressing
// unit of rich-messaging wire protocols: characters outside the Basic
// Multilingual Plane count as two units each.
type Span struct {
	Kind     SpanKind
	Offset   int
	Length   int
	URL      string // text_link only
	Language string // pre only
}

// SpanRecord is the serialization-friendly form of a Span, used to hand
// spans across process boundaries or persist them alongside drafts.
type SpanRecord struct {
	Type     string `json:"type" yaml:"type"`
	Offset   int    `json:"offset" yaml:"offset"`
	Length   int    `json:"length" yaml:"length"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// SpansToRecords converts spans to their wire-ready record form.
func SpansToRecords(spans []Span) []SpanRecord {
	records := make([]SpanRecord, 0, len(spans))
	for _, s := range spans {
		records = append(records, SpanRecord{
			Type:     s.Kind.String(),
			Offset:   s.Offset,
			Length:   s.Length,
			URL:      s.URL,
			Language: s.Language,
		})
	}
	return records
}

// RecordsToSpans converts records back to spans. A record with an
// unknown type is skipped and a warning is logged; this keeps round
// trips safe against payloads produced by newer versions.
func RecordsToSpans(records []SpanRecord, logger *zap.Logger) []Span {
	if logger == nil {
		logger = zap.NewNop()
	}
	spans := make([]Span, 0, len(records))
	for _, rec := range records {
		kind, ok := ParseSpanKind(rec.Type)
		if !ok {
			logger.Warn("skipping span record with unknown type",
				zap.String("type", rec.Type))
			continue
		}
		spans = append(spans, Span{
			Kind:     kind,
			Offset:   rec.Offset,
			Length:   rec.Length,
			URL:      rec.URL,
			Language: rec.Language,
		})
	}
	return spans
}
