package telepub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	t.Run("memory driver registered", func(t *testing.T) {
		store, err := OpenStore(StoreDriverNameMemory, "")
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("filesystem driver registered", func(t *testing.T) {
		store, err := OpenStore(StoreDriverNameFilesystem, t.TempDir())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &FilesystemStore{}, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenStore("etcd", "")
		require.Error(t, err)
	})

	t.Run("driver names sorted", func(t *testing.T) {
		names := StoreDriverNames()
		assert.Contains(t, names, StoreDriverNameMemory)
		assert.Contains(t, names, StoreDriverNameFilesystem)
		assert.Contains(t, names, StoreDriverNamePostgres)
		assert.IsIncreasing(t, names)
	})
}

func TestMatchesQuery(t *testing.T) {
	tmpl := &StoredTemplate{
		Name: "release-notes",
		Tags: []string{"release", "public"},
	}

	t.Run("nil query matches everything", func(t *testing.T) {
		assert.True(t, matchesQuery(tmpl, nil))
	})

	t.Run("name prefix", func(t *testing.T) {
		assert.True(t, matchesQuery(tmpl, &TemplateQuery{NamePrefix: "release"}))
		assert.False(t, matchesQuery(tmpl, &TemplateQuery{NamePrefix: "notes"}))
	})

	t.Run("name contains", func(t *testing.T) {
		assert.True(t, matchesQuery(tmpl, &TemplateQuery{NameContains: "note"}))
		assert.False(t, matchesQuery(tmpl, &TemplateQuery{NameContains: "digest"}))
	})

	t.Run("all tags required", func(t *testing.T) {
		assert.True(t, matchesQuery(tmpl, &TemplateQuery{Tags: []string{"release"}}))
		assert.True(t, matchesQuery(tmpl, &TemplateQuery{Tags: []string{"release", "public"}}))
		assert.False(t, matchesQuery(tmpl, &TemplateQuery{Tags: []string{"release", "private"}}))
	})
}

func TestApplyWindow(t *testing.T) {
	results := []*StoredTemplate{
		{Name: "a"}, {Name: "b"}, {Name: "c"},
	}

	t.Run("nil query returns all", func(t *testing.T) {
		assert.Len(t, applyWindow(results, nil), 3)
	})

	t.Run("limit", func(t *testing.T) {
		windowed := applyWindow(results, &TemplateQuery{Limit: 2})
		require.Len(t, windowed, 2)
		assert.Equal(t, "a", windowed[0].Name)
	})

	t.Run("offset", func(t *testing.T) {
		windowed := applyWindow(results, &TemplateQuery{Offset: 1})
		require.Len(t, windowed, 2)
		assert.Equal(t, "b", windowed[0].Name)
	})

	t.Run("offset past end", func(t *testing.T) {
		assert.Empty(t, applyWindow(results, &TemplateQuery{Offset: 10}))
	})

	t.Run("offset and limit", func(t *testing.T) {
		windowed := applyWindow(results, &TemplateQuery{Offset: 1, Limit: 1})
		require.Len(t, windowed, 1)
		assert.Equal(t, "b", windowed[0].Name)
	})
}

func TestValidateTemplateName(t *testing.T) {
	assert.NoError(t, validateTemplateName("release-notes"))
	assert.NoError(t, validateTemplateName("digest_v2.draft"))

	assert.Error(t, validateTemplateName(""))
	assert.Error(t, validateTemplateName("a/b"))
	assert.Error(t, validateTemplateName(`a\b`))
	assert.Error(t, validateTemplateName("../escape"))
}
