// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"fmt"

	"github.com/pkg/errors"
)

// FormatError indicates that a stream is structurally invalid: an unknown
// magic header, an unrecognized record tag, or a malformed record payload.
//
// A FormatError is not retryable; the stream is unusable beyond the point
// that produced it.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "dump: " + e.Reason }

func formatErrorf(format string, args ...interface{}) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// DictionaryRefError is a FormatError flavor: a record referenced a
// dictionary entry that has not been defined, or used the null sentinel for
// a field that must not be null.
type DictionaryRefError struct {
	// Table names the dictionary ("string" or "frame").
	Table string
	// Ref is the offending reference.
	Ref int
}

func (e *DictionaryRefError) Error() string {
	return fmt.Sprintf("dump: %s reference %d is not defined", e.Table, e.Ref)
}

// IsFormatError reports whether err (or its cause) marks a stream as
// structurally unusable. DictionaryRefError counts as a format error.
func IsFormatError(err error) bool {
	switch errors.Cause(err).(type) {
	case *FormatError, *DictionaryRefError:
		return true
	}
	return false
}

// ErrOutOfRange is returned when a value cannot be represented in the
// closed 4-byte varint domain. Encoding fails before any bytes are written.
var ErrOutOfRange = errors.New("dump: value out of varint range")

// ErrNoSnapshot is the panic value raised by snapshot accessors invoked
// without a loaded snapshot (before the first successful LoadNext, or after
// exhaustion). This is a caller programming error, not an I/O fault.
var ErrNoSnapshot = errors.New("dump: no snapshot loaded")
