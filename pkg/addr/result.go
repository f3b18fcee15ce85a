// Package addr validates IPv4/IPv6 host addresses and CIDR prefixes.
//
// Validators never return an error for bad input. Malformed input is ordinary
// caller-visible data, so every validator returns a Result carrying the
// failure Kind, a human-readable reason and, when a correction exists, a
// suggested canonical form. Result.Err converts an invalid Result into an
// error for callers that want to propagate it.
package addr

import (
	"errors"
	"fmt"
)

// Kind classifies a validation outcome.
type Kind int

const (
	KindValid Kind = iota
	KindEmpty
	KindMalformed
	KindOutOfRange
	KindHostBitsSet
	KindUnrecognized
)

// Reason strings carried by invalid results.
const (
	ReasonEmpty         = "empty input"
	ReasonMalformedCIDR = "malformed CIDR"
	ReasonOctetRange    = "octet out of range"
	ReasonPrefixRange   = "prefix out of range"
	ReasonHostBitsSet   = "host bits set"
	ReasonUnrecognized  = "unrecognized address format"
)

// Sentinel errors matched by errors.Is against the error returned by Result.Err.
var (
	ErrEmptyInput         = errors.New("empty input")
	ErrMalformedInput     = errors.New("malformed input")
	ErrOutOfRange         = errors.New("value out of range")
	ErrHostBitsSet        = errors.New("host bits set")
	ErrUnrecognizedFormat = errors.New("unrecognized format")
)

var kindNames = map[Kind]string{
	KindValid:        "valid",
	KindEmpty:        "empty",
	KindMalformed:    "malformed_input",
	KindOutOfRange:   "out_of_range",
	KindHostBitsSet:  "host_bits_set",
	KindUnrecognized: "unrecognized_format",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Result is the outcome of a validation call.
type Result struct {
	Kind       Kind   `json:"kind"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Valid returns the successful result.
func Valid() Result {
	return Result{Kind: KindValid}
}

func invalid(kind Kind, reason string) Result {
	return Result{Kind: kind, Reason: reason}
}

func hostBitsSet(suggestion string) Result {
	return Result{Kind: KindHostBitsSet, Reason: ReasonHostBitsSet, Suggestion: suggestion}
}

// IsValid reports whether the input passed validation.
func (r Result) IsValid() bool {
	return r.Kind == KindValid
}

// IsEmpty reports whether the input was absent (empty or blank). Callers that
// treat a field as optional accept this outcome; required-field callers reject it.
func (r Result) IsEmpty() bool {
	return r.Kind == KindEmpty
}

// HasSuggestion reports whether the result carries a corrected form.
func (r Result) HasSuggestion() bool {
	return r.Suggestion != ""
}

func (r Result) String() string {
	if r.IsValid() {
		return "valid"
	}
	if r.HasSuggestion() {
		return fmt.Sprintf("%s (suggested: %s)", r.Reason, r.Suggestion)
	}
	return r.Reason
}

// Err returns nil for a valid result and an *Error otherwise.
func (r Result) Err() error {
	if r.IsValid() {
		return nil
	}
	return &Error{Result: r}
}

// Error wraps an invalid Result as an error.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	return e.Result.String()
}

// Unwrap maps the result kind onto its sentinel error.
func (e *Error) Unwrap() error {
	switch e.Result.Kind {
	case KindEmpty:
		return ErrEmptyInput
	case KindMalformed:
		return ErrMalformedInput
	case KindOutOfRange:
		return ErrOutOfRange
	case KindHostBitsSet:
		return ErrHostBitsSet
	default:
		return ErrUnrecognizedFormat
	}
}
