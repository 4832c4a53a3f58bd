// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"io"
)

// Merge re-encodes every snapshot from the listed dump files into a single
// stream written to dst, preserving input order. Inputs that cannot be
// opened are skipped, matching chained-reader semantics. Merge returns the
// number of snapshots copied.
//
// The output stream is re-interned from scratch, so shared strings and
// frames across the inputs are deduplicated in the result. Thread names are
// not carried over: the wire format never ties a rotating-dictionary string
// to a trace record, so they cannot be recovered from the inputs.
func (cfg *Config) Merge(dst io.Writer, paths ...string) (int, error) {
	w, err := cfg.NewWriter(dst)
	if err != nil {
		return 0, err
	}

	cr := cfg.OpenFiles(paths...)
	defer func() {
		_ = cr.Close()
	}()

	n := 0
	for {
		ok, err := cr.LoadNext()
		if err != nil {
			_ = w.Close()
			return n, err
		}
		if !ok {
			// Finalization is best-effort, per the Writer.Close contract.
			return n, w.Close()
		}

		if err := w.Write(cr.Snapshot()); err != nil {
			_ = w.Close()
			return n, err
		}
		n++
	}
}

// Merge is the default-Config variant of Config.Merge.
func Merge(dst io.Writer, paths ...string) (int, error) {
	var cfg Config
	return cfg.Merge(dst, paths...)
}
