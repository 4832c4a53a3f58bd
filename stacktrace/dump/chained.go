// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"io"
	"os"

	"github.com/tobert/jvm-tools/stacktrace"
	"github.com/tobert/jvm-tools/support/logging"
)

// Source names and opens one dump input.
type Source interface {
	// Name identifies the source in diagnostics.
	Name() string
	// Open returns the source's raw byte stream. The chained reader owns
	// the returned stream and closes it.
	Open() (io.ReadCloser, error)
}

// FileSource is a Source backed by a dump file on the local filesystem.
type FileSource string

// Name implements Source.
func (f FileSource) Name() string { return string(f) }

// Open implements Source.
func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// ChainedReader presents an ordered list of sources as one logical snapshot
// sequence.
//
// Sources are opened lazily, one at a time, and each is closed when
// exhausted before the next is opened. Sources that cannot be opened, or
// whose header does not validate, are skipped silently; the consumer sees
// the union of the valid sources with the boundaries invisible.
type ChainedReader struct {
	logger logging.L

	sources []Source
	cur     *StreamReader
}

var _ Reader = (*ChainedReader)(nil)

// NewChainedReader returns a ChainedReader over sources, in order, using
// the default Config.
func NewChainedReader(sources ...Source) *ChainedReader {
	var cfg Config
	return cfg.NewChainedReader(sources...)
}

// OpenFiles returns a ChainedReader over the dump files at paths, in order,
// using the default Config.
func OpenFiles(paths ...string) *ChainedReader {
	var cfg Config
	return cfg.OpenFiles(paths...)
}

// OpenFiles returns a ChainedReader over the dump files at paths, in order.
func (cfg *Config) OpenFiles(paths ...string) *ChainedReader {
	sources := make([]Source, len(paths))
	for i, p := range paths {
		sources[i] = FileSource(p)
	}
	return cfg.NewChainedReader(sources...)
}

// NewChainedReader returns a ChainedReader over sources, in order.
//
// Nothing is opened until the first LoadNext call.
func (cfg *Config) NewChainedReader(sources ...Source) *ChainedReader {
	return &ChainedReader{
		logger:  cfg.logger(),
		sources: append([]Source(nil), sources...),
	}
}

// LoadNext implements Reader, advancing across source boundaries as
// underlying streams are exhausted.
func (cr *ChainedReader) LoadNext() (bool, error) {
	for {
		if cr.cur == nil && !cr.openNext() {
			return false, nil
		}

		ok, err := cr.cur.LoadNext()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		// Exhausted. The stream closed its own source; move along.
		cr.cur = nil
	}
}

// openNext opens the next usable source, skipping the unusable ones.
//
// This is a flat loop rather than recursion so that a long run of unusable
// sources cannot grow the stack.
func (cr *ChainedReader) openNext() bool {
	for len(cr.sources) > 0 {
		src := cr.sources[0]
		cr.sources = cr.sources[1:]

		rc, err := src.Open()
		if err != nil {
			chainedSkippedSources.Inc()
			cr.logger.Debugf("skipping unreadable dump source %q: %v", src.Name(), err)
			continue
		}
		sr, err := NewReader(rc)
		if err != nil {
			_ = rc.Close()
			chainedSkippedSources.Inc()
			cr.logger.Debugf("skipping dump source %q: %v", src.Name(), err)
			continue
		}

		chainedOpenedSources.Inc()
		cr.cur = sr
		return true
	}
	return false
}

// IsLoaded implements Reader.
func (cr *ChainedReader) IsLoaded() bool {
	return cr.cur != nil && cr.cur.IsLoaded()
}

// ThreadID implements Reader.
func (cr *ChainedReader) ThreadID() int64 { return cr.current().ThreadID() }

// Timestamp implements Reader.
func (cr *ChainedReader) Timestamp() int64 { return cr.current().Timestamp() }

// Trace implements Reader.
func (cr *ChainedReader) Trace() []stacktrace.Frame { return cr.current().Trace() }

// Snapshot implements Reader.
func (cr *ChainedReader) Snapshot() *stacktrace.Snapshot { return cr.current().Snapshot() }

// Close implements Reader, releasing the current source and forgetting the
// rest. Sources that were never opened need no cleanup.
func (cr *ChainedReader) Close() error {
	cr.sources = nil
	if cr.cur == nil {
		return nil
	}
	cur := cr.cur
	cr.cur = nil
	return cur.Close()
}

func (cr *ChainedReader) current() *StreamReader {
	if cr.cur == nil {
		panic(ErrNoSnapshot)
	}
	return cr.cur
}
