// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"io"
	"unicode/utf16"

	"github.com/tobert/jvm-tools/support/dataio"
)

// String payloads travel in the layout produced by Java's
// DataOutputStream.writeUTF: a big-endian uint16 byte count followed by
// modified UTF-8. Modified UTF-8 differs from standard UTF-8 in two ways:
// U+0000 is the two-byte sequence C0 80, and characters outside the BMP are
// encoded as UTF-16 surrogate pairs, three bytes per surrogate.

// maxUTFBytes is the largest encoded payload the 16-bit length prefix can
// describe.
const maxUTFBytes = 0xFFFF

func utfEncodedLen(units []uint16) int {
	n := 0
	for _, u := range units {
		switch {
		case u >= 0x0001 && u <= 0x007F:
			n++
		case u <= 0x07FF:
			n += 2
		default:
			n += 3
		}
	}
	return n
}

// writeUTF emits s with its length prefix.
func writeUTF(w dataio.Writer, s string) error {
	units := utf16.Encode([]rune(s))
	n := utfEncodedLen(units)
	if n > maxUTFBytes {
		return formatErrorf("string of %d encoded bytes exceeds the 16-bit length prefix", n)
	}

	buf := make([]byte, 0, n+2)
	buf = append(buf, byte(n>>8), byte(n))
	for _, u := range units {
		switch {
		case u >= 0x0001 && u <= 0x007F:
			buf = append(buf, byte(u))
		case u <= 0x07FF:
			buf = append(buf, byte(0xC0|u>>6), byte(0x80|u&0x3F))
		default:
			buf = append(buf, byte(0xE0|u>>12), byte(0x80|(u>>6)&0x3F), byte(0x80|u&0x3F))
		}
	}

	_, err := w.Write(buf)
	return err
}

// readUTF decodes one length-prefixed modified UTF-8 payload.
func readUTF(r dataio.Reader) (string, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", noEOF(err)
	}
	n := int(hdr[0])<<8 | int(hdr[1])

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", noEOF(err)
	}

	units := make([]uint16, 0, n)
	for i := 0; i < n; {
		b := buf[i]
		switch {
		case b&0x80 == 0:
			units = append(units, uint16(b))
			i++

		case b&0xE0 == 0xC0:
			if i+1 >= n || buf[i+1]&0xC0 != 0x80 {
				return "", formatErrorf("truncated modified UTF-8 sequence at byte %d", i)
			}
			units = append(units, uint16(b&0x1F)<<6|uint16(buf[i+1]&0x3F))
			i += 2

		case b&0xF0 == 0xE0:
			if i+2 >= n || buf[i+1]&0xC0 != 0x80 || buf[i+2]&0xC0 != 0x80 {
				return "", formatErrorf("truncated modified UTF-8 sequence at byte %d", i)
			}
			units = append(units,
				uint16(b&0x0F)<<12|uint16(buf[i+1]&0x3F)<<6|uint16(buf[i+2]&0x3F))
			i += 3

		default:
			return "", formatErrorf("invalid modified UTF-8 byte 0x%02x at byte %d", b, i)
		}
	}

	// Surrogate pairs combine here; unpaired surrogates become U+FFFD, the
	// same replacement Java's String constructor applies.
	return string(utf16.Decode(units)), nil
}
