// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dataio exposes Reader and Writer interfaces for streams that are
// consumed and produced at byte granularity.
//
// Compression streams (notably compress/zlib) do not implement io.ByteReader
// or io.ByteWriter. MakeReader and MakeWriter adapt arbitrary streams to the
// byte-granular interfaces, simulating single-byte operations when the
// underlying stream doesn't offer them.
package dataio

import (
	"io"
)

// Reader is an io.Reader that can also read individual bytes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// MakeReader returns a Reader for r.
//
// If r already implements Reader, it is returned unmodified.
func MakeReader(r io.Reader) Reader {
	if br, ok := r.(Reader); ok {
		return br
	}
	return &simulatedByteReader{r}
}

type simulatedByteReader struct {
	io.Reader
}

func (r *simulatedByteReader) ReadByte() (byte, error) {
	// io.Reader may legally return (0, nil); keep asking until we make
	// progress or fail.
	var d [1]byte
	for {
		amt, err := r.Read(d[:])
		if amt == 1 {
			return d[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Writer is an io.Writer that can also write individual bytes.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// MakeWriter returns a Writer for w.
//
// If w already implements Writer, it is returned unmodified.
func MakeWriter(w io.Writer) Writer {
	if bw, ok := w.(Writer); ok {
		return bw
	}
	return &simulatedByteWriter{w}
}

type simulatedByteWriter struct {
	io.Writer
}

func (w *simulatedByteWriter) WriteByte(c byte) error {
	d := [1]byte{c}
	switch amt, err := w.Write(d[:]); {
	case err != nil:
		return err
	case amt != 1:
		return io.ErrShortWrite
	default:
		return nil
	}
}
