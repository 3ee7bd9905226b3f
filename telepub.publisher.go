package telepub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SendOptions carries per-message delivery flags for the sender.
type SendOptions struct {
	// LinkPreview enables link previews for the message.
	LinkPreview bool

	// Silent delivers without a notification.
	Silent bool

	// ScheduleAt delays delivery until the given time (nil sends now).
	ScheduleAt *time.Time
}

// Sender is the messaging collaborator the publisher hands results to.
// Implementations own session handling, transport and media upload;
// this package never touches the network.
type Sender interface {
	// SendText delivers plain text with its formatting spans.
	// Returns the identifier of the created message.
	SendText(ctx context.Context, destination string, text string, spans []Span, opts SendOptions) (int64, error)

	// SendMedia delivers one or more media files with an optional
	// formatted caption. Returns the identifier of the created message.
	SendMedia(ctx context.Context, destination string, files []string, caption string, spans []Span, opts SendOptions) (int64, error)
}

// PublishRequest describes one message to publish. Exactly one content
// source applies, checked in order: Template (inline source),
// TemplateName (lookup in the configured store), Content (raw markdown).
type PublishRequest struct {
	// Destination is a channel username ("@channel") or a numeric
	// channel ID string ("-1001234...").
	Destination string

	// Content is raw markdown-flavored text.
	Content string

	// Template is an inline template source expanded with Data.
	Template string

	// TemplateName selects a stored template by name.
	TemplateName string

	// Data is the context for template expansion.
	Data map[string]any

	// Media lists file paths or URLs to attach; acquisition is the
	// sender's concern.
	Media []string

	// Options are passed through to the sender.
	Options SendOptions
}

// PublishResult reports a delivered message.
type PublishResult struct {
	MessageID int64
	URL       string
	PlainText string
	Spans     []Span
}

// Publisher runs the content pipeline: template expansion, markdown
// normalization, span extraction, then delivery through the Sender.
type Publisher struct {
	sender    Sender
	engine    *Engine
	extractor *Extractor
	store     TemplateStore
	logger    *zap.Logger
}

// PublisherOption is a functional option for configuring the Publisher.
type PublisherOption func(*publisherConfig)

type publisherConfig struct {
	engine    *Engine
	extractor *Extractor
	store     TemplateStore
	logger    *zap.Logger
}

// WithPublisherLogger sets the logger for the publisher and any
// components it builds itself. Default: no logging.
func WithPublisherLogger(logger *zap.Logger) PublisherOption {
	return func(c *publisherConfig) {
		c.logger = logger
	}
}

// WithEngine injects a template engine instead of the publisher
// building its own.
func WithEngine(engine *Engine) PublisherOption {
	return func(c *publisherConfig) {
		c.engine = engine
	}
}

// WithExtractor injects a markdown extractor instead of the publisher
// building its own.
func WithExtractor(extractor *Extractor) PublisherOption {
	return func(c *publisherConfig) {
		c.extractor = extractor
	}
}

// WithTemplateStore attaches a template store for publishing stored
// templates by name.
func WithTemplateStore(store TemplateStore) PublisherOption {
	return func(c *publisherConfig) {
		c.store = store
	}
}

// NewPublisher creates a publisher over the given sender.
func NewPublisher(sender Sender, opts ...PublisherOption) (*Publisher, error) {
	if sender == nil {
		return nil, NewNilSenderError()
	}

	config := &publisherConfig{}
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := config.engine
	if engine == nil {
		engine = MustNew(WithLogger(logger))
	}

	extractor := config.extractor
	if extractor == nil {
		extractor = NewExtractor(WithExtractorLogger(logger))
	}

	return &Publisher{
		sender:    sender,
		engine:    engine,
		extractor: extractor,
		store:     config.store,
		logger:    logger,
	}, nil
}

// Publish runs one request through the pipeline and delivers it.
func (p *Publisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	if req == nil {
		return nil, NewEmptyPublishError()
	}

	source := req.Template
	if source == "" && req.TemplateName != "" {
		if p.store == nil {
			return nil, NewNoStoreError(req.TemplateName)
		}
		stored, err := p.store.Get(ctx, req.TemplateName)
		if err != nil {
			return nil, err
		}
		source = stored.Source
	}

	content := req.Content
	if source != "" {
		content = p.engine.Process(source, req.Data)
		p.logger.Debug("expanded template",
			zap.Int("content_length", len(content)))
	}

	if content == "" && len(req.Media) == 0 {
		return nil, NewEmptyPublishError()
	}

	content = p.extractor.Normalize(content)
	content = p.enforceLimit(content, len(req.Media))
	plain, spans := p.extractor.Extract(content)

	var id int64
	var err error
	if len(req.Media) > 0 {
		id, err = p.sender.SendMedia(ctx, req.Destination, req.Media, plain, spans, req.Options)
	} else {
		id, err = p.sender.SendText(ctx, req.Destination, plain, spans, req.Options)
	}
	if err != nil {
		return nil, NewSendError(req.Destination, err)
	}

	url := BuildMessageURL(req.Destination, id)
	p.logger.Info("published",
		zap.String(MetaKeyDestination, req.Destination),
		zap.Int64("message_id", id),
		zap.String("url", url))

	return &PublishResult{
		MessageID: id,
		URL:       url,
		PlainText: plain,
		Spans:     spans,
	}, nil
}

// enforceLimit truncates content that exceeds the wire limit for its
// shape: single-media captions are much shorter than text messages.
func (p *Publisher) enforceLimit(content string, mediaCount int) string {
	limit := MaxMessageLength
	if mediaCount == 1 {
		limit = MaxSingleCaptionLength
	}
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	p.logger.Warn("content exceeds message limit, truncating",
		zap.Int("length", len(runes)),
		zap.Int("limit", limit))
	return string(runes[:limit-len(TruncateEllipsis)]) + TruncateEllipsis
}

// BuildMessageURL returns the public t.me URL for a published message.
func BuildMessageURL(destination string, messageID int64) string {
	if strings.HasPrefix(destination, "-100") {
		return fmt.Sprintf("https://t.me/c/%s/%d", strings.TrimPrefix(destination, "-100"), messageID)
	}
	return fmt.Sprintf("https://t.me/%s/%d", strings.TrimPrefix(destination, "@"), messageID)
}
