package telepub

import (
	"strings"
)

// Context is the structured data bound to a template during expansion.
// It resolves dot-notation paths ("user.profile.name") and supports
// layered scopes: a loop iteration overlays its reserved keys and item
// values on top of the caller's data without copying or mutating it.
//
// A Context is immutable during a Process call; it needs no locking.
type Context struct {
	data   map[string]any
	parent *Context
}

// NewContext creates a root context over the given data.
// If data is nil, an empty map is used.
func NewContext(data map[string]any) *Context {
	if data == nil {
		data = make(map[string]any)
	}
	return &Context{data: data}
}

// Child creates a child context that overlays additional values.
// Lookups check the overlay first and fall back to the parent chain.
func (c *Context) Child(overlay map[string]any) *Context {
	if overlay == nil {
		overlay = make(map[string]any)
	}
	return &Context{data: overlay, parent: c}
}

// Get resolves a dot-notation path. The first path segment is looked up
// through the scope chain, the rest walk nested mappings. A missing or
// nil value anywhere along the path yields (nil, false), never an error.
func (c *Context) Get(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	if path == LoopKeyItem {
		return c.lookup(LoopKeyItem)
	}

	parts := strings.Split(path, PathSeparator)
	current, ok := c.lookup(parts[0])
	if !ok {
		return nil, false
	}
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		switch m := current.(type) {
		case map[string]any:
			current, ok = m[part]
		case map[string]string:
			current, ok = m[part]
		default:
			return nil, false
		}
		if !ok || current == nil {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// GetString resolves a path and stringifies the result.
// Missing paths yield the empty string.
func (c *Context) GetString(path string) string {
	val, ok := c.Get(path)
	if !ok {
		return ""
	}
	return stringify(val)
}

// Has reports whether a non-nil value exists at the given path.
func (c *Context) Has(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// lookup finds a single key through the scope chain, overlay first.
func (c *Context) lookup(key string) (any, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if val, ok := ctx.data[key]; ok && val != nil {
			return val, true
		}
	}
	return nil, false
}

// PathSeparator separates segments in dot-notation paths.
const PathSeparator = "."
