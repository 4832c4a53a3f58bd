// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package stacktrace defines the value types shared by thread dump
// producers and consumers: a call stack Frame and a per-thread Snapshot.
package stacktrace

import (
	"fmt"
	"strings"
	"time"
)

// Frame is a single call stack entry.
//
// Frame is a plain comparable value: two Frames are equal exactly when all
// of their fields are equal, so Frames can be used directly as map keys.
type Frame struct {
	// Package is the package portion of the declaring class name. It is
	// empty for classes in the default package.
	Package string

	// Class is the simple (package-less) name of the declaring class.
	Class string

	// Method is the method name. Empty means unknown.
	Method string

	// File is the source file name. Empty means unknown.
	File string

	// Line is the source line number. Negative values mark synthetic
	// locations; by JVM convention, -2 is a native method.
	Line int
}

// NewFrame builds a Frame from a fully qualified class name, splitting the
// package from the simple class name at the last dot.
func NewFrame(className, method, file string, line int) Frame {
	f := Frame{
		Class:  className,
		Method: method,
		File:   file,
		Line:   line,
	}
	if i := strings.LastIndexByte(className, '.'); i >= 0 {
		f.Package, f.Class = className[:i], className[i+1:]
	}
	return f
}

// ClassName returns the fully qualified class name.
func (f Frame) ClassName() string {
	if f.Package == "" {
		return f.Class
	}
	return f.Package + "." + f.Class
}

// String renders the frame the way a stack trace line would print it.
func (f Frame) String() string {
	var loc string
	switch {
	case f.Line == -2:
		loc = "Native Method"
	case f.File == "":
		loc = "Unknown Source"
	case f.Line < 0:
		loc = f.File
	default:
		loc = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return fmt.Sprintf("%s.%s(%s)", f.ClassName(), f.Method, loc)
}

// Snapshot is one captured thread state: the thread id, the capture
// timestamp, and the thread's call frames ordered outermost call first.
//
// A Snapshot is a complete, self-contained unit; codecs never surface a
// partially decoded Snapshot.
type Snapshot struct {
	// ThreadID is the capturing runtime's thread identifier.
	ThreadID int64

	// Timestamp is the capture time in milliseconds since the Unix epoch.
	Timestamp int64

	// ThreadName optionally carries the thread's name at capture time. It
	// is auxiliary metadata; codecs may record it without being able to
	// read it back.
	ThreadName string

	// Frames holds the call frames, outermost call first.
	Frames []Frame
}

// Time returns the capture timestamp as a time.Time.
func (s *Snapshot) Time() time.Time { return time.UnixMilli(s.Timestamp) }
