package errors

import (
	"fmt"
	"strings"
)

// ValidationErrors collects user-facing validation messages in the order
// they were raised. The action pipeline runs every check before failing, so
// a player sees all problems at once instead of one per attempt.
type ValidationErrors struct {
	Messages []string `json:"messages"`
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Messages) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(v.Messages, "; "))
}

// NewValidationErrors creates an empty collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add appends a message.
func (v *ValidationErrors) Add(message string) {
	v.Messages = append(v.Messages, message)
}

// Addf appends a formatted message.
func (v *ValidationErrors) Addf(format string, args ...interface{}) {
	v.Add(fmt.Sprintf(format, args...))
}

// HasErrors reports whether any messages were collected.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Messages) > 0
}

// ToError converts the collected messages to a single InvalidArgument
// error, or nil if nothing was collected.
func (v *ValidationErrors) ToError() error {
	if !v.HasErrors() {
		return nil
	}
	return InvalidArgument(v.Error()).WithMeta("validation_messages", v.Messages)
}

// ValidationMessages extracts the collected messages from an error produced
// by ToError. Returns nil for other errors.
func ValidationMessages(err error) []string {
	meta := GetMeta(err)
	if meta == nil {
		return nil
	}
	msgs, _ := meta["validation_messages"].([]string)
	return msgs
}

// ValidationBuilder is a fluent helper for dependency checks in component
// constructors.
type ValidationBuilder struct {
	errs *ValidationErrors
}

// NewValidationBuilder creates a new validation builder.
func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{errs: NewValidationErrors()}
}

// RequiredField records a missing dependency.
func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	vb.errs.Addf("%s is required", field)
	return vb
}

// Field records an arbitrary problem with a field.
func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	vb.errs.Addf("%s %s", field, message)
	return vb
}

// Build returns the accumulated error, or nil.
func (vb *ValidationBuilder) Build() error {
	return vb.errs.ToError()
}
