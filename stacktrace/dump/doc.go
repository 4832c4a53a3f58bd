// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dump implements the TRACEDUMP binary stream format for sequences
// of thread stack-trace snapshots.
//
// A dump stream starts with a fixed ASCII magic literal identifying the
// format version, followed by a zlib-deflated body of tagged records.
// Strings and call frames are interned: the first snapshot that needs a
// value causes its definition record to be emitted, and every later record
// refers to it by a small variable-length integer id. Definitions always
// precede their first reference, so a reader can decode in a single forward
// pass with bounded memory.
//
// Writing:
//
//	w, err := dump.NewWriter(f)
//	if err != nil { ... }
//	defer w.Close()
//	err = w.Write(&stacktrace.Snapshot{...})
//
// Reading a single stream:
//
//	r, err := dump.NewReader(f)
//	if err != nil { ... }
//	for {
//		ok, err := r.LoadNext()
//		if err != nil { ... }
//		if !ok {
//			break
//		}
//		use(r.ThreadID(), r.Timestamp(), r.Trace())
//	}
//
// Several dump files can be consumed as one logical sequence with a
// ChainedReader; sources that cannot be opened are skipped silently, so the
// consumer sees the union of the valid ones.
package dump
