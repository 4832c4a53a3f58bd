// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"io"

	"github.com/tobert/jvm-tools/stacktrace"
	"github.com/tobert/jvm-tools/support/dataio"
	"github.com/tobert/jvm-tools/support/logging"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// traceHead is the fixed portion of a trace record.
type traceHead struct {
	ThreadID  int64 `struc:",big"`
	Timestamp int64 `struc:",big"`
}

// Writer encodes snapshots into a dump stream.
//
// Writer is not safe for concurrent use; it is meant to be owned by a
// single producer loop.
type Writer struct {
	version Version
	logger  logging.L

	raw *rawStreamWriter
	out dataio.Writer

	strings *stringDict
	frames  *frameDict
	dyn     *rotatingDict

	closed bool
}

// NewWriter returns a Writer targeting w with the default Config.
func NewWriter(w io.Writer) (*Writer, error) {
	var cfg Config
	return cfg.NewWriter(w)
}

// NewWriter returns a Writer targeting w.
//
// The magic header for the configured version is written immediately;
// everything after it is deflated.
func (cfg *Config) NewWriter(w io.Writer) (*Writer, error) {
	version := cfg.version()
	if !version.valid() {
		return nil, errors.Errorf("dump: unknown format version %d", version)
	}

	raw, err := newRawStreamWriter(w, version.magic())
	if err != nil {
		return nil, errors.Wrap(err, "writing stream header")
	}

	sw := Writer{
		version: version,
		logger:  cfg.logger(),
		raw:     raw,
		out:     raw,
	}
	sw.strings = newStringDict(sw.emitString)
	sw.frames = newFrameDict(sw.emitFrame)
	sw.dyn = newRotatingDict(cfg.dynStringCacheSize(), sw.emitDynString, writerDynEvictions.Inc)
	return &sw, nil
}

// Version returns the format version this writer emits.
func (w *Writer) Version() Version { return w.version }

// Write encodes one snapshot.
//
// Definition records for any newly seen strings or frames are emitted ahead
// of the trace record that references them, so the wire order is always
// definitions first, references second.
func (w *Writer) Write(snap *stacktrace.Snapshot) error {
	if w.closed {
		return errors.New("dump: writer is closed")
	}

	refs := make([]int, len(snap.Frames))
	for i, f := range snap.Frames {
		ref, err := w.frames.intern(f)
		if err != nil {
			return err
		}
		refs[i] = ref
	}

	// Thread names go through the rotating dictionary. V1 readers do not
	// recognize the record, so a V1 writer leaves them out entirely.
	if snap.ThreadName != "" && w.version >= V2 {
		if _, err := w.dyn.intern(snap.ThreadName); err != nil {
			return err
		}
	}

	if err := w.out.WriteByte(tagTrace); err != nil {
		return err
	}
	if err := struc.Pack(w.out, &traceHead{snap.ThreadID, snap.Timestamp}); err != nil {
		return err
	}
	if err := writeVarInt(w.out, len(refs)); err != nil {
		return err
	}
	for _, ref := range refs {
		if err := writeVarInt(w.out, ref); err != nil {
			return err
		}
	}

	writerSnapshots.Inc()
	return nil
}

// Close finalizes the stream, closes the underlying sink and drops the
// dictionaries.
//
// Close is idempotent and never returns an error: dumps are best-effort
// diagnostic data, so flush and close failures are logged and discarded.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.raw.Close(); err != nil {
		w.logger.Warnf("discarding error closing dump stream: %v", err)
	}
	w.strings, w.frames, w.dyn = nil, nil, nil
	return nil
}

// internString interns a required string; the empty string is a legal value
// and receives a real id.
func (w *Writer) internString(s string) (int, error) {
	return w.strings.intern(s)
}

// internOptString interns a nullable string; empty means null and maps to
// the reserved reference 0 without emitting anything.
func (w *Writer) internOptString(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return w.strings.intern(s)
}

func (w *Writer) emitString(s string) error {
	if err := w.out.WriteByte(tagString); err != nil {
		return err
	}
	if err := writeUTF(w.out, s); err != nil {
		return err
	}
	writerDefinitions.WithLabelValues("string").Inc()
	return nil
}

func (w *Writer) emitDynString(s string) error {
	if err := w.out.WriteByte(tagDynString); err != nil {
		return err
	}
	if err := writeUTF(w.out, s); err != nil {
		return err
	}
	writerDefinitions.WithLabelValues("dyn_string").Inc()
	return nil
}

func (w *Writer) emitFrame(f stacktrace.Frame) error {
	// The package is always interned, even when empty: readers require a
	// non-null package string to rebuild the class name. Method and file
	// are nullable.
	pkg, err := w.internString(f.Package)
	if err != nil {
		return err
	}
	cls, err := w.internString(f.Class)
	if err != nil {
		return err
	}
	mtd, err := w.internOptString(f.Method)
	if err != nil {
		return err
	}
	file, err := w.internOptString(f.File)
	if err != nil {
		return err
	}

	// Lines are shifted by +2 to keep common sentinels (-1 unknown, -2
	// native) inside the non-negative varint domain. The clamp below loses
	// values under -2; that is the established wire behavior, kept as-is.
	line := f.Line + 2
	if line < 0 {
		line = 0
	}

	if err := w.out.WriteByte(tagFrame); err != nil {
		return err
	}
	for _, v := range [...]int{pkg, cls, mtd, file, line} {
		if err := writeVarInt(w.out, v); err != nil {
			return err
		}
	}
	writerDefinitions.WithLabelValues("frame").Inc()
	return nil
}
