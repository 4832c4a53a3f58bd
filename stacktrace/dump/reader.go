// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"io"

	"github.com/tobert/jvm-tools/stacktrace"

	"github.com/lunixbochs/struc"
)

// Reader is a pull-based iterator over the snapshots of one logical dump
// stream.
//
// Call LoadNext until it returns false. After every true return, the
// accessor methods expose the loaded snapshot; invoking them without a
// loaded snapshot panics with ErrNoSnapshot.
//
// Readers are not safe for concurrent use.
type Reader interface {
	// LoadNext decodes records until the next snapshot is materialized. It
	// returns false with a nil error at the end of the stream; that state
	// is sticky.
	LoadNext() (bool, error)

	// IsLoaded reports whether a snapshot is currently loaded.
	IsLoaded() bool

	// ThreadID returns the loaded snapshot's thread id.
	ThreadID() int64

	// Timestamp returns the loaded snapshot's capture time in milliseconds
	// since the Unix epoch.
	Timestamp() int64

	// Trace returns the loaded call frames, outermost call first. The
	// slice is owned by the reader and is valid until the next LoadNext.
	Trace() []stacktrace.Frame

	// Snapshot materializes the loaded snapshot as a self-contained value.
	Snapshot() *stacktrace.Snapshot

	// Close releases the underlying source. Reaching the end of the stream
	// closes it implicitly; Close is idempotent.
	Close() error
}

// StreamReader decodes a single dump stream.
//
// The decode logic is shared across format versions: the version,
// established by the magic header, only selects which record tags are
// recognized.
type StreamReader struct {
	version Version

	raw *rawStreamReader
	src io.Closer // base source, when it is closeable

	// Read-side dictionary tables, 1-based: reference 0 is the null
	// sentinel. Entries appear in exact stream definition order.
	strings []string
	frames  []stacktrace.Frame

	loaded    bool
	exhausted bool

	threadID  int64
	timestamp int64
	trace     []stacktrace.Frame
}

var _ Reader = (*StreamReader)(nil)

// NewReader validates the magic header of r and returns the matching
// version's StreamReader. An unknown magic fails with a FormatError before
// any decompression is attempted.
//
// If r is an io.Closer, the reader owns it and closes it at end of stream
// or on Close.
func NewReader(r io.Reader) (*StreamReader, error) {
	raw := newRawStreamReader(r)

	magic, err := raw.header()
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, formatErrorf("stream is too short for a magic header")
		}
		return nil, err
	}
	version, ok := versionForMagic(magic)
	if !ok {
		return nil, formatErrorf("unknown magic %q", magic)
	}

	if err := raw.beginBody(); err != nil {
		return nil, err
	}

	sr := StreamReader{
		version: version,
		raw:     raw,
	}
	if c, ok := r.(io.Closer); ok {
		sr.src = c
	}
	return &sr, nil
}

// Version returns the stream's format version, as established by its magic
// header.
func (r *StreamReader) Version() Version { return r.version }

// LoadNext implements Reader.
//
// Each call consumes dictionary definition records until a trace record is
// decoded or the stream ends. A record is always decoded whole: truncation
// mid-record surfaces as io.ErrUnexpectedEOF, never as a partial snapshot.
func (r *StreamReader) LoadNext() (bool, error) {
	if r.exhausted {
		return false, nil
	}
	r.loaded = false

	for {
		tag, err := r.raw.ReadByte()
		if err == io.EOF {
			r.exhausted = true
			return false, r.Close()
		}
		if err != nil {
			return false, err
		}

		switch tag {
		case tagString:
			s, err := readUTF(r.raw)
			if err != nil {
				return false, err
			}
			r.strings = append(r.strings, s)

		case tagFrame:
			f, err := r.readFrame()
			if err != nil {
				return false, err
			}
			r.frames = append(r.frames, f)

		case tagDynString:
			if r.version < V2 {
				readerFormatErrors.Inc()
				return false, formatErrorf("unrecognized tag 0x%02x", tag)
			}
			// Rotating-dictionary strings are write-side metadata; no
			// record references them, so validate and drop.
			if _, err := readUTF(r.raw); err != nil {
				return false, err
			}

		case tagTrace:
			if err := r.readTrace(); err != nil {
				return false, err
			}
			r.loaded = true
			readerSnapshots.Inc()
			return true, nil

		default:
			readerFormatErrors.Inc()
			return false, formatErrorf("unrecognized tag 0x%02x", tag)
		}
	}
}

// IsLoaded implements Reader.
func (r *StreamReader) IsLoaded() bool { return r.loaded }

// ThreadID implements Reader.
func (r *StreamReader) ThreadID() int64 {
	r.mustBeLoaded()
	return r.threadID
}

// Timestamp implements Reader.
func (r *StreamReader) Timestamp() int64 {
	r.mustBeLoaded()
	return r.timestamp
}

// Trace implements Reader.
func (r *StreamReader) Trace() []stacktrace.Frame {
	r.mustBeLoaded()
	return r.trace
}

// Snapshot implements Reader. The frame slice is copied, so the returned
// value stays valid across LoadNext calls.
func (r *StreamReader) Snapshot() *stacktrace.Snapshot {
	r.mustBeLoaded()
	return &stacktrace.Snapshot{
		ThreadID:  r.threadID,
		Timestamp: r.timestamp,
		Frames:    append([]stacktrace.Frame(nil), r.trace...),
	}
}

// Close implements Reader. After Close, LoadNext reports end of stream.
func (r *StreamReader) Close() error {
	r.loaded = false
	r.exhausted = true

	err := r.raw.Close()
	if r.src != nil {
		src := r.src
		r.src = nil
		if closeErr := src.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

func (r *StreamReader) mustBeLoaded() {
	if !r.loaded {
		panic(ErrNoSnapshot)
	}
}

func (r *StreamReader) readFrame() (stacktrace.Frame, error) {
	var refs [4]int
	for i := range refs {
		v, err := readVarInt(r.raw)
		if err != nil {
			return stacktrace.Frame{}, err
		}
		refs[i] = v
	}
	line, err := readVarInt(r.raw)
	if err != nil {
		return stacktrace.Frame{}, err
	}

	pkg, err := r.resolveString(refs[0], false)
	if err != nil {
		return stacktrace.Frame{}, err
	}
	// The class name is the one frame field that must not be null.
	cls, err := r.resolveString(refs[1], true)
	if err != nil {
		return stacktrace.Frame{}, err
	}
	mtd, err := r.resolveString(refs[2], false)
	if err != nil {
		return stacktrace.Frame{}, err
	}
	file, err := r.resolveString(refs[3], false)
	if err != nil {
		return stacktrace.Frame{}, err
	}

	return stacktrace.Frame{
		Package: pkg,
		Class:   cls,
		Method:  mtd,
		File:    file,
		Line:    line - 2,
	}, nil
}

func (r *StreamReader) readTrace() error {
	var head traceHead
	if err := struc.Unpack(r.raw, &head); err != nil {
		return noEOF(err)
	}

	count, err := readVarInt(r.raw)
	if err != nil {
		return err
	}
	r.trace = r.trace[:0]
	for i := 0; i < count; i++ {
		ref, err := readVarInt(r.raw)
		if err != nil {
			return err
		}
		if ref <= 0 || ref > len(r.frames) {
			readerFormatErrors.Inc()
			return &DictionaryRefError{Table: "frame", Ref: ref}
		}
		r.trace = append(r.trace, r.frames[ref-1])
	}

	r.threadID, r.timestamp = head.ThreadID, head.Timestamp
	return nil
}

// resolveString maps a wire reference to its string table entry. Reference
// 0 is the null sentinel: legal for optional fields, a DictionaryRefError
// for required ones.
func (r *StreamReader) resolveString(ref int, required bool) (string, error) {
	if ref == 0 {
		if required {
			readerFormatErrors.Inc()
			return "", &DictionaryRefError{Table: "string", Ref: ref}
		}
		return "", nil
	}
	if ref > len(r.strings) {
		readerFormatErrors.Inc()
		return "", &DictionaryRefError{Table: "string", Ref: ref}
	}
	return r.strings[ref-1], nil
}
