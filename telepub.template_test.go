package telepub

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Process_Variables(t *testing.T) {
	engine := MustNew()

	t.Run("simple substitution", func(t *testing.T) {
		result := engine.Process("Hello {name}!", map[string]any{"name": "World"})
		assert.Equal(t, "Hello World!", result)
	})

	t.Run("missing variable becomes empty", func(t *testing.T) {
		result := engine.Process("Hello {name}!", nil)
		assert.Equal(t, "Hello !", result)
	})

	t.Run("dot-path resolution", func(t *testing.T) {
		result := engine.Process("{user.profile.email}", map[string]any{
			"user": map[string]any{
				"profile": map[string]any{"email": "a@b.com"},
			},
		})
		assert.Equal(t, "a@b.com", result)
	})

	t.Run("missing intermediate path becomes empty", func(t *testing.T) {
		result := engine.Process("x{user.missing.deep}y", map[string]any{
			"user": map[string]any{},
		})
		assert.Equal(t, "xy", result)
	})

	t.Run("numeric values stringify", func(t *testing.T) {
		result := engine.Process("{count} items", map[string]any{"count": 3})
		assert.Equal(t, "3 items", result)
	})

	t.Run("empty template", func(t *testing.T) {
		assert.Equal(t, "", engine.Process("", map[string]any{"x": 1}))
	})
}

func TestEngine_Process_Filters(t *testing.T) {
	engine := MustNew()

	t.Run("upper and lower", func(t *testing.T) {
		result := engine.Process("{name|upper} - {email|lower}", map[string]any{
			"name":  "John Doe",
			"email": "JOHN@X.COM",
		})
		assert.Equal(t, "JOHN DOE - john@x.com", result)
	})

	t.Run("filter with argument", func(t *testing.T) {
		result := engine.Process("{title|truncate:5}", map[string]any{
			"title": "a very long title",
		})
		assert.Equal(t, "a ver...", result)
	})

	t.Run("quoted argument unquoted", func(t *testing.T) {
		result := engine.Process(`{missing|default:"n/a"}`, nil)
		assert.Equal(t, "n/a", result)
	})

	t.Run("unknown filter passes value through", func(t *testing.T) {
		result := engine.Process("{name|sparkle}", map[string]any{"name": "x"})
		assert.Equal(t, "x", result)
	})

	t.Run("custom filter", func(t *testing.T) {
		e := MustNew()
		require.NoError(t, e.RegisterFilter("reverse", func(v any, _ string) (any, error) {
			runes := []rune(stringify(v))
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return string(runes), nil
		}))
		assert.Equal(t, "cba", e.Process("{v|reverse}", map[string]any{"v": "abc"}))
	})

	t.Run("unregister restores literal behavior", func(t *testing.T) {
		e := MustNew()
		assert.True(t, e.UnregisterFilter(FilterNameUpper))
		assert.Equal(t, "x", e.Process("{v|upper}", map[string]any{"v": "x"}))
	})
}

func TestEngine_Process_Conditionals(t *testing.T) {
	engine := MustNew()

	t.Run("false condition drops block", func(t *testing.T) {
		result := engine.Process("{?has_image}Image: {image}{/has_image}", map[string]any{
			"has_image": false,
		})
		assert.Equal(t, "", result)
	})

	t.Run("true condition keeps block", func(t *testing.T) {
		result := engine.Process("{?ok}yes{/ok}", map[string]any{"ok": true})
		assert.Equal(t, "yes", result)
	})

	t.Run("absent key is false", func(t *testing.T) {
		assert.Equal(t, "", engine.Process("{?nope}x{/nope}", nil))
	})

	t.Run("negated condition", func(t *testing.T) {
		result := engine.Process("{?!draft}published{/draft}", map[string]any{"draft": false})
		assert.Equal(t, "published", result)

		result = engine.Process("{?!draft}published{/draft}", map[string]any{"draft": true})
		assert.Equal(t, "", result)
	})

	t.Run("empty collection is false", func(t *testing.T) {
		result := engine.Process("{?items}has items{/items}", map[string]any{
			"items": []any{},
		})
		assert.Equal(t, "", result)
	})

	t.Run("nested blocks resolve innermost first", func(t *testing.T) {
		result := engine.Process("{?a}A{?b}B{/b}{/a}", map[string]any{
			"a": true,
			"b": false,
		})
		assert.Equal(t, "A", result)
	})

	t.Run("unterminated block stays literal", func(t *testing.T) {
		result := engine.Process("{?open}never closed", map[string]any{"open": true})
		assert.Equal(t, "{?open}never closed", result)
	})
}

func TestEngine_Process_Loops(t *testing.T) {
	engine := MustNew()

	t.Run("scalar list with dot item", func(t *testing.T) {
		result := engine.Process("{#items}- {.}\n{/items}", map[string]any{
			"items": []string{"Apple", "Banana"},
		})
		assert.Equal(t, "- Apple\n- Banana", result)
	})

	t.Run("mapping items expose their keys", func(t *testing.T) {
		result := engine.Process("{#users}{name},{/users}", map[string]any{
			"users": []map[string]any{
				{"name": "Ann"},
				{"name": "Ben"},
			},
		})
		assert.Equal(t, "Ann,Ben,", result)
	})

	t.Run("reserved keys", func(t *testing.T) {
		result := engine.Process("{#items}{index}:{first}:{last};{/items}", map[string]any{
			"items": []string{"a", "b", "c"},
		})
		assert.Equal(t, "0:true:false;1:false:false;2:false:true;", result)
	})

	t.Run("reserved keys win over item keys", func(t *testing.T) {
		result := engine.Process("{#rows}{index}{/rows}", map[string]any{
			"rows": []map[string]any{{"index": 99}},
		})
		assert.Equal(t, "0", result)
	})

	t.Run("outer data visible inside loop", func(t *testing.T) {
		result := engine.Process("{#items}{prefix}{.} {/items}", map[string]any{
			"prefix": ">",
			"items":  []string{"a", "b"},
		})
		assert.Equal(t, ">a >b", result)
	})

	t.Run("non-list path expands to empty", func(t *testing.T) {
		result := engine.Process("x{#items}body{/items}y", map[string]any{
			"items": "not a list",
		})
		assert.Equal(t, "xy", result)
	})

	t.Run("missing path expands to empty", func(t *testing.T) {
		assert.Equal(t, "xy", engine.Process("x{#items}body{/items}y", nil))
	})

	t.Run("unterminated loop stays literal", func(t *testing.T) {
		result := engine.Process("{#items}no closer", map[string]any{
			"items": []string{"a"},
		})
		assert.Equal(t, "{#items}no closer", result)
	})

	t.Run("closer must repeat the path", func(t *testing.T) {
		result := engine.Process("{#items}body{/other}", map[string]any{
			"items": []string{"a"},
		})
		assert.Equal(t, "{#items}body{/other}", result)
	})
}

func TestEngine_Process_LoopProperty(t *testing.T) {
	engine := MustNew()
	const n = 7

	items := make([]any, n)
	for i := range items {
		items[i] = fmt.Sprintf("item%d", i)
	}
	result := engine.Process("{#items}{index}:{first}:{last}\n{/items}", map[string]any{
		"items": items,
	})

	lines := strings.Split(result, "\n")
	require.Len(t, lines, n)
	for i, line := range lines {
		wantFirst := i == 0
		wantLast := i == n-1
		assert.Equal(t, fmt.Sprintf("%d:%t:%t", i, wantFirst, wantLast), line)
	}
}

func TestEngine_Process_Whitespace(t *testing.T) {
	engine := MustNew()

	t.Run("newline runs collapse to two", func(t *testing.T) {
		result := engine.Process("a\n\n\n\n\nb", nil)
		assert.Equal(t, "a\n\nb", result)
	})

	t.Run("result is trimmed", func(t *testing.T) {
		result := engine.Process("  {name}  ", map[string]any{"name": "x"})
		assert.Equal(t, "x", result)
	})

	t.Run("dropped blocks leave no newline pileup", func(t *testing.T) {
		result := engine.Process("a\n\n{?no}gone{/no}\n\nb", nil)
		assert.Equal(t, "a\n\nb", result)
	})
}

func TestEngine_Process_Idempotence(t *testing.T) {
	engine := MustNew()

	result := engine.Process("Hello {name}, you have {count} messages", map[string]any{
		"name":  "Ann",
		"count": 2,
	})
	again := engine.Process(result, nil)
	assert.Equal(t, result, again)
}

func TestEngine_Process_NoUnresolvedTokens(t *testing.T) {
	engine := MustNew()

	result := engine.Process("{a} {b.c} {d|upper} {e|default:f}", map[string]any{
		"a": "1",
	})
	assert.NotContains(t, result, "{")
	assert.NotContains(t, result, "}")
}

func TestEngine_Options(t *testing.T) {
	t.Run("shared filter registry", func(t *testing.T) {
		registry := NewFilterRegistry(nil)
		registry.MustRegister("tag", func(v any, _ string) (any, error) {
			return "[" + stringify(v) + "]", nil
		})

		engine := MustNew(WithFilterRegistry(registry))
		assert.Same(t, registry, engine.Filters())
		assert.Equal(t, "[x]", engine.Process("{v|tag}", map[string]any{"v": "x"}))
	})
}
