// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// Record tags. A stream body is a sequence of tagged records; unknown tags
// are a format error, never skipped.
const (
	// tagString defines the next string table entry (writeUTF payload).
	tagString = 0x01
	// tagFrame defines the next frame table entry (five varints).
	tagFrame = 0x02
	// tagTrace carries one snapshot (thread id, timestamp, frame refs).
	tagTrace = 0x03
	// tagDynString defines a rotating-dictionary string (writeUTF payload).
	// Write-side metadata; no record type references these entries.
	tagDynString = 0x04
)

// Version identifies a generation of the dump stream format.
type Version int

const (
	// V1 is the original format: string, frame and trace records only.
	V1 Version = 1

	// V2 additionally understands rotating-dictionary string records.
	V2 Version = 2

	// CurrentVersion is the version that writers produce by default.
	CurrentVersion = V2
)

// magicLen is the size of every magic literal, in bytes.
const magicLen = 12

var versionMagics = map[Version]string{
	V1: "TRACEDUMP_1 ",
	V2: "TRACEDUMP_2 ",
}

func (v Version) valid() bool {
	_, ok := versionMagics[v]
	return ok
}

// magic returns the header literal for this version.
func (v Version) magic() []byte { return []byte(versionMagics[v]) }

// String returns the unpadded magic literal, e.g. "TRACEDUMP_1".
func (v Version) String() string {
	if m, ok := versionMagics[v]; ok {
		return strings.TrimSpace(m)
	}
	return "UNKNOWN"
}

// versionForMagic maps a header literal to its Version.
func versionForMagic(magic []byte) (Version, bool) {
	for v, m := range versionMagics {
		if bytes.Equal(magic, []byte(m)) {
			return v, true
		}
	}
	return 0, false
}

// Validate checks that the file at path starts with a known dump magic. The
// record body is not decoded.
func Validate(path string) error {
	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = fd.Close()
	}()

	var magic [magicLen]byte
	if _, err := io.ReadFull(fd, magic[:]); err != nil {
		return formatErrorf("stream is too short for a magic header")
	}
	if _, ok := versionForMagic(magic[:]); !ok {
		return formatErrorf("unknown magic %q", magic)
	}
	return nil
}
