// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so failures in different stages of the export run can be
// categorized, logged and surfaced appropriately.
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import "fmt"

// Kind is a machine-readable error category.
type Kind string

const (
	// QueryFailed indicates a database query could not be executed.
	QueryFailed Kind = "query_failed"
	// ExportFailed indicates a batch write, merge or substitution failure.
	ExportFailed Kind = "export_failed"
	// DeliveryFailed indicates the report could not be emailed.
	DeliveryFailed Kind = "delivery_failed"
	// UploadFailed indicates artifacts could not be pushed to object storage.
	UploadFailed Kind = "upload_failed"
	// ConfigInvalid indicates missing or malformed configuration.
	ConfigInvalid Kind = "config_invalid"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }
