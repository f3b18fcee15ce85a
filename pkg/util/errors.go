// Package util provides logging, shared error types and small text helpers.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across packages
var (
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrValidationFailed = errors.New("validation failed")
)

// FieldError is one rejected field of a document. Path uses dotted field
// names (peering_lan.4, route_servers.rs1.address).
type FieldError struct {
	Path       string `json:"path"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (f FieldError) String() string {
	s := f.Reason
	if f.Path != "" {
		s = f.Path + ": " + s
	}
	if f.Suggestion != "" {
		s += " (suggested: " + f.Suggestion + ")"
	}
	return s
}

// ValidationError carries every rejected field of a document.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := e.Messages()
	if len(msgs) == 1 {
		return "validation failed: " + msgs[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Messages renders each field failure as "path: reason (suggested: x)".
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return msgs
}

// NewValidationError builds a ValidationError from pathless messages.
func NewValidationError(messages ...string) *ValidationError {
	fields := make([]FieldError, len(messages))
	for i, m := range messages {
		fields[i] = FieldError{Reason: m}
	}
	return &ValidationError{Fields: fields}
}

// ValidationBuilder accumulates field failures in the order they are found.
type ValidationBuilder struct {
	fields []FieldError
}

// Add records reason under path unless ok holds.
func (v *ValidationBuilder) Add(ok bool, path, reason string) *ValidationBuilder {
	if !ok {
		v.fields = append(v.fields, FieldError{Path: path, Reason: reason})
	}
	return v
}

// AddField records a failure with an optional suggested correction.
func (v *ValidationBuilder) AddField(path, reason, suggestion string) *ValidationBuilder {
	v.fields = append(v.fields, FieldError{Path: path, Reason: reason, Suggestion: suggestion})
	return v
}

// AddFieldf records a failure with a formatted reason.
func (v *ValidationBuilder) AddFieldf(path, format string, args ...interface{}) *ValidationBuilder {
	return v.AddField(path, fmt.Sprintf(format, args...), "")
}

func (v *ValidationBuilder) HasErrors() bool {
	return len(v.fields) > 0
}

// Build returns a *ValidationError, or nil when nothing was recorded.
func (v *ValidationBuilder) Build() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// NotFoundError reports a named resource that does not exist
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// ExistsError reports a named resource that already exists
type ExistsError struct {
	Kind string
	Name string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Kind, e.Name)
}

func (e *ExistsError) Unwrap() error {
	return ErrAlreadyExists
}

func NewExistsError(kind, name string) *ExistsError {
	return &ExistsError{Kind: kind, Name: name}
}

const maxASN = 4294967295 // 4-byte ASN range

// ValidateASN checks that a route server AS number is in 1..4294967295.
func ValidateASN(asn int64) error {
	if asn < 1 || asn > maxASN {
		return fmt.Errorf("AS number must be between 1 and %d, got %d", maxASN, asn)
	}
	return nil
}
