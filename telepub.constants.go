package telepub

// Template syntax tokens. The closing tag of a loop block must repeat
// the loop path literally ({#items}...{/items}).
const (
	TokenCondOpen     = "{?"
	TokenLoopOpen     = "{#"
	TokenBlockClose   = "{/"
	TokenClose        = "}"
	TokenNegate       = "!"
	TokenFilterSep    = "|"
	TokenFilterArgSep = ":"
)

// Reserved keys injected into the loop scope for each iteration.
// Collisions with keys of a mapping item resolve in favor of these.
const (
	LoopKeyItem  = "."
	LoopKeyIndex = "index"
	LoopKeyFirst = "first"
	LoopKeyLast  = "last"
)

// Built-in filter names.
const (
	FilterNameUpper      = "upper"
	FilterNameLower      = "lower"
	FilterNameTitle      = "title"
	FilterNameCapitalize = "capitalize"
	FilterNameStrip      = "strip"
	FilterNameTruncate   = "truncate"
	FilterNameDate       = "date"
	FilterNameDefault    = "default"
	FilterNameEscapeMD   = "escape_md"
)

// Filter defaults.
const (
	DefaultTruncateLength = 50
	TruncateEllipsis      = "..."
	DefaultDateLayout     = "2006-01-02"
)

// markdownEscapeChars is the set of markdown-significant characters that
// escape_md prefixes with a backslash.
const markdownEscapeChars = "*_~`[]()>#+-=|{}.!"

// Message limits enforced by the publisher before handing text to the
// sender. These mirror the Telegram wire limits: 4096 code points for a
// text message or an album caption, 1024 for a single-media caption.
const (
	MaxMessageLength       = 4096
	MaxSingleCaptionLength = 1024
)
