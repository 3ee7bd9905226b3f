package telepub

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"
)

// FilterFunc transforms a resolved template value before substitution.
// arg is the raw filter argument ("n" in {title|truncate:n}); it is the
// empty string when the filter was written without an argument.
type FilterFunc func(value any, arg string) (any, error)

// FilterRegistry maps filter names to transform functions. Each Engine
// owns one registry; the standard filters are registered at construction
// and can be replaced or removed by name.
//
// Lookups and mutations are individually guarded, but registration is
// not atomic with respect to in-flight Process calls: serialize registry
// mutation externally if templates are being processed concurrently.
type FilterRegistry struct {
	mu      sync.RWMutex
	filters map[string]FilterFunc
	logger  *zap.Logger
}

// NewFilterRegistry creates a registry pre-populated with the standard
// filters. A nil logger disables warning output.
func NewFilterRegistry(logger *zap.Logger) *FilterRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &FilterRegistry{
		filters: make(map[string]FilterFunc),
		logger:  logger,
	}
	registerBuiltinFilters(r)
	return r
}

// Register adds a filter under the given name, replacing any existing
// filter with that name. Returns an error for an empty name or nil func.
func (r *FilterRegistry) Register(name string, fn FilterFunc) error {
	if name == "" {
		return NewFilterRegistrationError(ErrMsgEmptyFilterName)
	}
	if fn == nil {
		return NewFilterRegistrationError(ErrMsgNilFilterFunc)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.filters[name] = fn
	return nil
}

// MustRegister adds a filter and panics on error.
func (r *FilterRegistry) MustRegister(name string, fn FilterFunc) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Unregister removes a filter by name.
// Returns true if the filter existed and was removed.
func (r *FilterRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.filters[name]; ok {
		delete(r.filters, name)
		return true
	}
	return false
}

// Has checks if a filter is registered under the given name.
func (r *FilterRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.filters[name]
	return ok
}

// Names returns all registered filter names in sorted order.
func (r *FilterRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs the named filter over value. It never fails: an unknown
// filter name or a filter error leaves the value untouched, and the
// condition is logged for the surrounding system to observe.
func (r *FilterRegistry) Apply(name string, value any, arg string) any {
	r.mu.RLock()
	fn, ok := r.filters[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("unknown filter, passing value through",
			zap.String(MetaKeyFilter, name))
		return value
	}

	result, err := fn(value, arg)
	if err != nil {
		r.logger.Warn("filter failed, passing value through",
			zap.String(MetaKeyFilter, name),
			zap.String(MetaKeyArgument, arg),
			zap.Error(err))
		return value
	}
	return result
}

// registerBuiltinFilters installs the standard filter set.
func registerBuiltinFilters(r *FilterRegistry) {
	r.MustRegister(FilterNameUpper, func(v any, _ string) (any, error) {
		return strings.ToUpper(stringify(v)), nil
	})

	r.MustRegister(FilterNameLower, func(v any, _ string) (any, error) {
		return strings.ToLower(stringify(v)), nil
	})

	r.MustRegister(FilterNameTitle, func(v any, _ string) (any, error) {
		return titleCase(stringify(v)), nil
	})

	r.MustRegister(FilterNameCapitalize, func(v any, _ string) (any, error) {
		return capitalize(stringify(v)), nil
	})

	r.MustRegister(FilterNameStrip, func(v any, _ string) (any, error) {
		return strings.TrimSpace(stringify(v)), nil
	})

	r.MustRegister(FilterNameTruncate, func(v any, arg string) (any, error) {
		limit := DefaultTruncateLength
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				return nil, NewFilterArgError(ErrMsgFilterArgNotInt, FilterNameTruncate, arg)
			}
			limit = n
		}
		return truncateText(stringify(v), limit), nil
	})

	r.MustRegister(FilterNameDate, func(v any, arg string) (any, error) {
		s := stringify(v)
		if s == "" {
			return "", nil
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, NewFilterValueError(ErrMsgBadTimestamp, FilterNameDate, s)
		}
		layout := arg
		if layout == "" {
			layout = DefaultDateLayout
		}
		return t.Format(layout), nil
	})

	r.MustRegister(FilterNameDefault, func(v any, arg string) (any, error) {
		if !isTruthy(v) {
			return arg, nil
		}
		return v, nil
	})

	r.MustRegister(FilterNameEscapeMD, func(v any, _ string) (any, error) {
		return EscapeMarkdown(stringify(v)), nil
	})
}

// EscapeMarkdown prefixes every markdown-significant character with a
// backslash so the text survives the extractor untouched. Applying it
// twice double-escapes.
func EscapeMarkdown(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/4)
	for _, r := range text {
		if strings.ContainsRune(markdownEscapeChars, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// truncateText cuts s to limit characters and appends an ellipsis marker
// when anything was cut.
func truncateText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + TruncateEllipsis
}

// titleCase upper-cases the first letter of every word and lower-cases
// the rest, treating any non-letter as a word boundary.
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			sb.WriteRune(r)
			prevLetter = false
		}
	}
	return sb.String()
}

// capitalize upper-cases the first character and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	out := strings.ToLower(string(runes[1:]))
	return string(unicode.ToUpper(runes[0])) + out
}

// Timestamp layouts tried in order by the date filter.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DefaultDateLayout,
}

// parseTimestamp parses an ISO-8601-flavored timestamp string.
func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
