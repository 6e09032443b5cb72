package composedql

import (
	"errors"
	"fmt"
)

// Error code constants for categorizing parse failures.
const (
	ErrInvalidInput    = "INVALID_INPUT"    // query, field or scope is not a string
	ErrMalformedScope  = "MALFORMED_SCOPE"  // '(' and ')' counts differ
	ErrIncompleteParse = "INCOMPLETE_PARSE" // text after a sealed scope, or a ')' that closes nothing
)

// ParseError represents a failure found while parsing a composed query.
// Pos is zero when the input was rejected before scanning, such as a
// non-string query or an unknown kind.
type ParseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Pos     Pos    `json:"pos"`
	Got     string `json:"got,omitempty"`
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Code == ErrInvalidInput {
		if e.Got != "" {
			return fmt.Sprintf("parse error: %s (got %s)", e.Message, e.Got)
		}
		return "parse error: " + e.Message
	}
	if e.Got != "" {
		return fmt.Sprintf("parse error at %d:%d: %s (got %q)",
			e.Pos.Line, e.Pos.Column, e.Message, e.Got)
	}
	return fmt.Sprintf("parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// CodeOf returns the error code carried by err, or "" when err is nil or
// not a *ParseError.
func CodeOf(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func invalidInput(message string, v any) *ParseError {
	got := "nil"
	if v != nil {
		got = fmt.Sprintf("%T", v)
	}
	return &ParseError{Code: ErrInvalidInput, Message: message, Got: got}
}
