// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"io"

	"github.com/tobert/jvm-tools/support/dataio"

	"github.com/pkg/errors"
)

// maxVarInt is the largest encodable value: three 7-bit groups (offsets 0,
// 7 and 14) plus a closing unrestricted byte at offset 21, 29 significant
// bits in total.
const maxVarInt = 1<<29 - 1

// writeVarInt encodes v as 1-4 bytes, low 7-bit groups first, bit 7 of each
// of the first three bytes flagging continuation. Once three groups have
// been emitted, the remaining bits are written verbatim as a single closing
// byte; values that don't fit fail with ErrOutOfRange.
func writeVarInt(w dataio.Writer, v int) error {
	if v < 0 || v > maxVarInt {
		return errors.Wrapf(ErrOutOfRange, "encoding %d", v)
	}
	for i := 0; i < 3; i++ {
		if v&^0x7F == 0 {
			return w.WriteByte(byte(v))
		}
		if err := w.WriteByte(byte(0x80 | v&0x7F)); err != nil {
			return err
		}
		v >>= 7
	}
	// Closing byte, up to 8 bits, no continuation flag.
	return w.WriteByte(byte(v))
}

// readVarInt decodes a varint written by writeVarInt. The format is closed
// at four bytes: the fourth byte, when present, is taken verbatim at bit
// offset 21 and a fifth byte is never read.
//
// End of input inside a value is reported as io.ErrUnexpectedEOF, since a
// varint only appears inside a record.
func readVarInt(r dataio.Reader) (int, error) {
	v := 0
	for shift := uint(0); ; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, noEOF(err)
		}
		if shift == 21 {
			return v | int(b)<<21, nil
		}
		v |= int(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

// noEOF converts io.EOF to io.ErrUnexpectedEOF. Used when decoding inside a
// record, where running out of input means truncation rather than a clean
// end of stream.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
