package telepub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterRegistry_Register(t *testing.T) {
	registry := NewFilterRegistry(nil)

	t.Run("registers custom filter", func(t *testing.T) {
		err := registry.Register("shout", func(v any, _ string) (any, error) {
			return stringify(v) + "!", nil
		})
		require.NoError(t, err)
		assert.True(t, registry.Has("shout"))
	})

	t.Run("replaces existing filter", func(t *testing.T) {
		err := registry.Register(FilterNameUpper, func(v any, _ string) (any, error) {
			return "replaced", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "replaced", registry.Apply(FilterNameUpper, "x", ""))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		err := registry.Register("", func(v any, _ string) (any, error) { return v, nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("rejects nil function", func(t *testing.T) {
		err := registry.Register("broken", nil)
		require.Error(t, err)
	})
}

func TestFilterRegistry_Unregister(t *testing.T) {
	registry := NewFilterRegistry(nil)

	assert.True(t, registry.Unregister(FilterNameUpper))
	assert.False(t, registry.Has(FilterNameUpper))
	assert.False(t, registry.Unregister(FilterNameUpper))
}

func TestFilterRegistry_Names(t *testing.T) {
	registry := NewFilterRegistry(nil)
	names := registry.Names()

	assert.Contains(t, names, FilterNameUpper)
	assert.Contains(t, names, FilterNameEscapeMD)
	assert.IsIncreasing(t, names)
}

func TestFilterRegistry_Apply(t *testing.T) {
	registry := NewFilterRegistry(nil)

	t.Run("unknown filter passes value through", func(t *testing.T) {
		assert.Equal(t, "original", registry.Apply("no_such_filter", "original", ""))
	})

	t.Run("failing filter passes value through", func(t *testing.T) {
		registry.MustRegister("boom", func(v any, _ string) (any, error) {
			return nil, errors.New("boom")
		})
		assert.Equal(t, "original", registry.Apply("boom", "original", ""))
	})
}

func TestBuiltinFilters(t *testing.T) {
	registry := NewFilterRegistry(nil)

	t.Run("upper", func(t *testing.T) {
		assert.Equal(t, "JOHN DOE", registry.Apply(FilterNameUpper, "John Doe", ""))
	})

	t.Run("lower", func(t *testing.T) {
		assert.Equal(t, "john@x.com", registry.Apply(FilterNameLower, "JOHN@X.COM", ""))
	})

	t.Run("title", func(t *testing.T) {
		assert.Equal(t, "Hello World", registry.Apply(FilterNameTitle, "hello world", ""))
		assert.Equal(t, "Over-The-Top", registry.Apply(FilterNameTitle, "OVER-THE-TOP", ""))
	})

	t.Run("capitalize", func(t *testing.T) {
		assert.Equal(t, "Hello world", registry.Apply(FilterNameCapitalize, "hello World", ""))
		assert.Equal(t, "", registry.Apply(FilterNameCapitalize, "", ""))
	})

	t.Run("strip", func(t *testing.T) {
		assert.Equal(t, "x", registry.Apply(FilterNameStrip, "  x\n", ""))
	})

	t.Run("truncate cuts long text", func(t *testing.T) {
		assert.Equal(t, "abc"+TruncateEllipsis, registry.Apply(FilterNameTruncate, "abcdef", "3"))
	})

	t.Run("truncate keeps short text", func(t *testing.T) {
		assert.Equal(t, "abc", registry.Apply(FilterNameTruncate, "abc", "10"))
	})

	t.Run("truncate counts characters not bytes", func(t *testing.T) {
		assert.Equal(t, "日本"+TruncateEllipsis, registry.Apply(FilterNameTruncate, "日本語です", "2"))
	})

	t.Run("truncate with bad argument passes through", func(t *testing.T) {
		assert.Equal(t, "abcdef", registry.Apply(FilterNameTruncate, "abcdef", "nope"))
	})

	t.Run("date reformats timestamps", func(t *testing.T) {
		assert.Equal(t, "2026-08-28", registry.Apply(FilterNameDate, "2026-08-28T12:00:00Z", ""))
		assert.Equal(t, "28.08.2026", registry.Apply(FilterNameDate, "2026-08-28 12:00:00", "02.01.2006"))
	})

	t.Run("date with unparseable value passes through", func(t *testing.T) {
		assert.Equal(t, "not a date", registry.Apply(FilterNameDate, "not a date", ""))
	})

	t.Run("default substitutes for empty", func(t *testing.T) {
		assert.Equal(t, "fallback", registry.Apply(FilterNameDefault, "", "fallback"))
		assert.Equal(t, "fallback", registry.Apply(FilterNameDefault, nil, "fallback"))
		assert.Equal(t, "value", registry.Apply(FilterNameDefault, "value", "fallback"))
	})

	t.Run("escape_md escapes markdown characters", func(t *testing.T) {
		assert.Equal(t, `\*bold\*`, registry.Apply(FilterNameEscapeMD, "*bold*", ""))
		assert.Equal(t, `a\.b\!`, registry.Apply(FilterNameEscapeMD, "a.b!", ""))
	})
}

func TestEscapeMarkdown_DoubleEscapes(t *testing.T) {
	once := EscapeMarkdown("*x*")
	twice := EscapeMarkdown(once)

	assert.Equal(t, `\*x\*`, once)
	assert.Equal(t, `\\*x\\*`, twice)
	assert.NotEqual(t, once, twice)
}
