// Package telepub turns structured data into rich-messaging payloads.
//
// The package has two pure, synchronous cores. The template engine
// expands a template string against caller data:
//
//	engine := telepub.MustNew()
//	out := engine.Process("Hello {name|upper}!", map[string]any{"name": "World"})
//	// out: "Hello WORLD!"
//
// The markdown extractor turns inline markup into plain text plus an
// ordered list of formatting spans, with offsets and lengths measured in
// UTF-16 code units as rich-messaging wire protocols require:
//
//	extractor := telepub.NewExtractor()
//	plain, spans := extractor.Extract("**bold** and *italic*")
//	// plain: "bold and italic"
//	// spans: [{bold 0 4} {italic 9 6}]
//
// # Template Syntax
//
// Variable substitution with optional filters:
//
//	{name}
//	{user.email|lower}
//	{title|truncate:40}
//
// Conditional blocks, with ! negating the condition:
//
//	{?has_image}Image: {image_url}{/has_image}
//	{?!tags}no tags{/tags}
//
// Loop blocks over lists, with the reserved keys ".", "index", "first"
// and "last" available inside the body:
//
//	{#items}- {.}
//	{/items}
//
// Both cores never fail: malformed input degrades to the most literal
// reasonable interpretation and a warning is logged instead of an error
// being returned.
//
// # Custom Filters
//
// Filters are named value transforms, registrable per engine:
//
//	engine.RegisterFilter("reverse", func(v any, arg string) (any, error) {
//	    ...
//	})
//
// # Publishing
//
// Publisher glues the two cores to a messaging client. The client stays
// behind the Sender interface; this package owns no network transport:
//
//	pub, _ := telepub.NewPublisher(sender)
//	result, err := pub.Publish(ctx, &telepub.PublishRequest{
//	    Destination: "@channel",
//	    Template:    "Hi {name}!",
//	    Data:        map[string]any{"name": "Alice"},
//	})
//
// Templates can also be loaded from a TemplateStore (memory, filesystem
// or PostgreSQL backends ship with the package) by name.
package telepub
