package lib

import (
	"context"
	"errors"
	"io/fs"
)

var (
	// ErrInvalidJSON is returned when an ABI source is not parseable JSON text.
	ErrInvalidJSON = errors.New("invalid json")
	// ErrInvalidABIShape is returned when the top-level ABI value is not an array.
	ErrInvalidABIShape = errors.New("ABI expected array")
	// ErrMalformedType is returned for a parameter type that cannot be canonicalized,
	// e.g. a tuple without components.
	ErrMalformedType = errors.New("malformed type")
	// ErrMalformedEntry is returned for an entry or parameter missing a required field.
	ErrMalformedEntry = errors.New("malformed entry")
	// ErrCorruptIndex is returned when an existing selector group file is not a JSON array.
	ErrCorruptIndex = errors.New("corrupt index")
)

// Code is a coarse error class used in log fields and run reports.
type Code string

const (
	CodeUnknown         Code = "unknown"
	CodeInvalidJSON     Code = "invalid_json"
	CodeInvalidABIShape Code = "invalid_abi_shape"
	CodeMalformed       Code = "malformed"
	CodeCorruptIndex    Code = "corrupt_index"
	CodeIO              Code = "io"
	CodeCancel          Code = "cancel"
)

// Classify maps err onto a Code using only sentinel and stdlib error types.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancel
	case errors.Is(err, ErrInvalidJSON):
		return CodeInvalidJSON
	case errors.Is(err, ErrInvalidABIShape):
		return CodeInvalidABIShape
	case errors.Is(err, ErrMalformedType), errors.Is(err, ErrMalformedEntry):
		return CodeMalformed
	case errors.Is(err, ErrCorruptIndex):
		return CodeCorruptIndex
	}

	var perr *fs.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// Recoverable reports whether err only invalidates the source file being processed.
// Corrupt output and I/O failures are never recoverable.
func Recoverable(err error) bool {
	switch Classify(err) {
	case CodeInvalidJSON, CodeInvalidABIShape, CodeMalformed:
		return true
	}
	return false
}
