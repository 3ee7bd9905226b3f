package telepub

import (
	"strings"

	"go.uber.org/zap"
)

// Engine expands template strings against caller data. It owns a
// FilterRegistry and nothing else; every Process call is self-contained,
// so an Engine is safe for concurrent use as long as filter registration
// is serialized against in-flight calls (see FilterRegistry).
type Engine struct {
	filters *FilterRegistry
	logger  *zap.Logger
}

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	logger  *zap.Logger
	filters *FilterRegistry
}

// WithLogger sets the logger for the engine and its filter registry.
// Default: no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithFilterRegistry injects a shared filter registry instead of the
// engine building its own. The caller keeps ownership.
func WithFilterRegistry(registry *FilterRegistry) Option {
	return func(c *engineConfig) {
		c.filters = registry
	}
}

// New creates a new template Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := &engineConfig{}
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	filters := config.filters
	if filters == nil {
		filters = NewFilterRegistry(logger)
	}

	return &Engine{
		filters: filters,
		logger:  logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Filters returns the engine's filter registry.
func (e *Engine) Filters() *FilterRegistry {
	return e.filters
}

// RegisterFilter adds a custom filter to the engine's registry.
func (e *Engine) RegisterFilter(name string, fn FilterFunc) error {
	return e.filters.Register(name, fn)
}

// UnregisterFilter removes a filter from the engine's registry.
// Returns true if the filter existed and was removed.
func (e *Engine) UnregisterFilter(name string) bool {
	return e.filters.Unregister(name)
}

// Process expands a template against data and returns the result. It
// never fails: missing variables become empty strings, unknown filters
// pass values through, and malformed blocks stay literal. The stages run
// in fixed order - conditionals, loops, variables, whitespace cleanup -
// each fully resolving before the next begins.
func (e *Engine) Process(template string, data map[string]any) string {
	if template == "" {
		return ""
	}

	ctx := NewContext(data)

	result := e.processConditionals(template, ctx)
	result = e.processLoops(result, ctx)
	result = e.processVariables(result, ctx)
	result = newlineRunRe.ReplaceAllString(result, "\n\n")

	return strings.TrimSpace(result)
}
