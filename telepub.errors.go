package telepub

import (
	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Filter errors
	ErrMsgEmptyFilterName = "filter name cannot be empty"
	ErrMsgNilFilterFunc   = "filter function cannot be nil"
	ErrMsgFilterArgNotInt = "filter argument is not an integer"
	ErrMsgBadTimestamp    = "value is not a recognized timestamp"

	// Publisher errors
	ErrMsgNilSender    = "sender cannot be nil"
	ErrMsgEmptyPublish = "nothing to publish: no content, template, or media"
	ErrMsgSendFailed   = "sender rejected the message"
	ErrMsgNoStore      = "no template store configured"

	// Store errors
	ErrMsgTemplateNotFound    = "template not found"
	ErrMsgStoreClosed         = "store is closed"
	ErrMsgInvalidTemplateName = "invalid template name"
	ErrMsgEmptyStoreRoot      = "store root directory cannot be empty"
	ErrMsgCreateStoreDir      = "failed to create store directory"
	ErrMsgEmptyConnString     = "connection string cannot be empty"
	ErrMsgUnknownStoreDriver  = "unknown store driver"
	ErrMsgStoreIO             = "store operation failed"

	// Template file errors
	ErrMsgMissingFrontmatter = "template file missing frontmatter"
	ErrMsgInvalidFrontmatter = "template file frontmatter parse failed"
	ErrMsgMissingBody        = "template file missing body"
	ErrMsgEmptyTemplateName  = "template name cannot be empty"
)

// Error code constants for categorization
const (
	ErrCodeFilter       = "TELEPUB_FILTER"
	ErrCodePublish      = "TELEPUB_PUBLISH"
	ErrCodeStore        = "TELEPUB_STORE"
	ErrCodeTemplateFile = "TELEPUB_TEMPLATE_FILE"
)

// Metadata keys attached to errors
const (
	MetaKeyFilter      = "filter"
	MetaKeyArgument    = "argument"
	MetaKeyValue       = "value"
	MetaKeyTemplate    = "template"
	MetaKeyDriver      = "driver"
	MetaKeyDestination = "destination"
	MetaKeyPath        = "path"
)

// NewFilterArgError creates an error for an unusable filter argument.
func NewFilterArgError(msg, filterName, arg string) error {
	return cuserr.NewValidationError(ErrCodeFilter, msg).
		WithMetadata(MetaKeyFilter, filterName).
		WithMetadata(MetaKeyArgument, arg)
}

// NewFilterValueError creates an error for a value a filter cannot handle.
func NewFilterValueError(msg, filterName, value string) error {
	return cuserr.NewValidationError(ErrCodeFilter, msg).
		WithMetadata(MetaKeyFilter, filterName).
		WithMetadata(MetaKeyValue, value)
}

// NewFilterRegistrationError creates an error for invalid registration input.
func NewFilterRegistrationError(msg string) error {
	return cuserr.NewValidationError(ErrCodeFilter, msg)
}

// NewNilSenderError creates an error for a publisher built without a sender.
func NewNilSenderError() error {
	return cuserr.NewValidationError(ErrCodePublish, ErrMsgNilSender)
}

// NewEmptyPublishError creates an error for a request with nothing to send.
func NewEmptyPublishError() error {
	return cuserr.NewValidationError(ErrCodePublish, ErrMsgEmptyPublish)
}

// NewNoStoreError creates an error for a by-name publish without a store.
func NewNoStoreError(templateName string) error {
	return cuserr.NewValidationError(ErrCodePublish, ErrMsgNoStore).
		WithMetadata(MetaKeyTemplate, templateName)
}

// NewSendError wraps a sender failure with the destination.
func NewSendError(destination string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodePublish, ErrMsgSendFailed).
		WithMetadata(MetaKeyDestination, destination)
}

// NewTemplateNotFoundError creates a not-found error for a stored template.
func NewTemplateNotFoundError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyTemplate, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyTemplate, name)
}

// NewStoreClosedError creates an error for operations on a closed store.
func NewStoreClosedError() error {
	return cuserr.NewValidationError(ErrCodeStore, ErrMsgStoreClosed)
}

// NewInvalidTemplateNameError creates an error for an unusable template name.
func NewInvalidTemplateNameError(name string) error {
	return cuserr.NewValidationError(ErrCodeStore, ErrMsgInvalidTemplateName).
		WithMetadata(MetaKeyTemplate, name)
}

// NewUnknownStoreDriverError creates an error for an unregistered driver name.
func NewUnknownStoreDriverError(driver string) error {
	return cuserr.NewNotFoundError(MetaKeyDriver, ErrMsgUnknownStoreDriver).
		WithMetadata(MetaKeyDriver, driver)
}

// NewStoreConfigError creates an error for invalid store configuration.
func NewStoreConfigError(msg string) error {
	return cuserr.NewValidationError(ErrCodeStore, msg)
}

// NewStoreIOError wraps a backend failure (filesystem or database).
func NewStoreIOError(msg string, cause error) error {
	if cause == nil {
		return cuserr.NewInternalError(ErrCodeStore, nil)
	}
	return cuserr.WrapStdError(cause, ErrCodeStore, msg)
}

// NewTemplateFileError creates a template file parse error.
func NewTemplateFileError(msg string, cause error) error {
	if cause != nil {
		return cuserr.WrapStdError(cause, ErrCodeTemplateFile, msg)
	}
	return cuserr.NewValidationError(ErrCodeTemplateFile, msg)
}
