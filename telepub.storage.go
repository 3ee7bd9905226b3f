package telepub

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store driver names for the built-in backends.
const (
	StoreDriverNameMemory     = "memory"
	StoreDriverNameFilesystem = "filesystem"
	StoreDriverNamePostgres   = "postgres"
)

// StoredTemplate is a named template kept in a storage backend, ready to
// be published by name.
type StoredTemplate struct {
	// Name is the unique template name used for lookups.
	Name string `json:"name" yaml:"name"`

	// Source is the raw template source.
	Source string `json:"source" yaml:"source"`

	// Description is a free-form summary (optional).
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Tags categorize the template for querying.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// CreatedAt is set by the store on first save.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is set by the store on every save.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// TemplateQuery defines filters for listing templates.
// Zero-valued fields match everything.
type TemplateQuery struct {
	// NamePrefix filters to names starting with this prefix.
	NamePrefix string

	// NameContains filters to names containing this substring.
	NameContains string

	// Tags filters to templates having ALL specified tags.
	Tags []string

	// Limit is the maximum number of results (0 = no limit).
	Limit int

	// Offset is the number of results to skip (for pagination).
	Offset int
}

// TemplateStore is the interface for pluggable template storage.
// Implementations must be safe for concurrent use.
type TemplateStore interface {
	// Get retrieves a template by name.
	Get(ctx context.Context, name string) (*StoredTemplate, error)

	// Save stores a template, replacing an existing one of the same
	// name. CreatedAt and UpdatedAt are set by the store.
	Save(ctx context.Context, tmpl *StoredTemplate) error

	// Delete removes a template by name.
	Delete(ctx context.Context, name string) error

	// List returns templates matching the query, ordered by name.
	List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error)

	// Exists checks if a template with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}

// StoreDriver is a factory for creating store instances.
// Drivers register themselves during init().
type StoreDriver interface {
	// Open creates a store from a driver-specific connection string.
	Open(connectionString string) (TemplateStore, error)
}

var (
	storeDriversMu sync.RWMutex
	storeDrivers   = make(map[string]StoreDriver)
)

// RegisterStoreDriver makes a driver available under the given name.
// A later registration under the same name replaces the earlier one.
func RegisterStoreDriver(name string, driver StoreDriver) {
	storeDriversMu.Lock()
	defer storeDriversMu.Unlock()

	storeDrivers[name] = driver
}

// OpenStore opens a template store by driver name.
func OpenStore(driver, connectionString string) (TemplateStore, error) {
	storeDriversMu.RLock()
	d, ok := storeDrivers[driver]
	storeDriversMu.RUnlock()

	if !ok {
		return nil, NewUnknownStoreDriverError(driver)
	}
	return d.Open(connectionString)
}

// StoreDriverNames returns the registered driver names in sorted order.
func StoreDriverNames() []string {
	storeDriversMu.RLock()
	defer storeDriversMu.RUnlock()

	names := make([]string, 0, len(storeDrivers))
	for name := range storeDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// matchesQuery applies TemplateQuery filters to a single template.
func matchesQuery(tmpl *StoredTemplate, query *TemplateQuery) bool {
	if query == nil {
		return true
	}
	if query.NamePrefix != "" && !strings.HasPrefix(tmpl.Name, query.NamePrefix) {
		return false
	}
	if query.NameContains != "" && !strings.Contains(tmpl.Name, query.NameContains) {
		return false
	}
	for _, want := range query.Tags {
		found := false
		for _, tag := range tmpl.Tags {
			if tag == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// applyWindow slices a result set by the query's offset and limit.
func applyWindow(results []*StoredTemplate, query *TemplateQuery) []*StoredTemplate {
	if query == nil {
		return results
	}
	if query.Offset > 0 {
		if query.Offset >= len(results) {
			return nil
		}
		results = results[query.Offset:]
	}
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results
}

// copyStoredTemplate returns a deep copy so callers cannot mutate the
// store's view of a template.
func copyStoredTemplate(tmpl *StoredTemplate) *StoredTemplate {
	if tmpl == nil {
		return nil
	}
	cp := *tmpl
	if tmpl.Tags != nil {
		cp.Tags = append([]string(nil), tmpl.Tags...)
	}
	if tmpl.Metadata != nil {
		cp.Metadata = make(map[string]string, len(tmpl.Metadata))
		for k, v := range tmpl.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// validateTemplateName rejects names that are empty or unsafe as a
// filesystem path component.
func validateTemplateName(name string) error {
	if name == "" {
		return NewInvalidTemplateNameError(name)
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return NewInvalidTemplateNameError(name)
	}
	return nil
}
