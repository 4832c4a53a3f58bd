// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"bufio"
	"compress/zlib"
	"io"

	"github.com/tobert/jvm-tools/support/dataio"
)

// Buffer size for the raw stream layers. Dump bodies are read and written
// sequentially, so a generous buffer keeps syscall counts down.
const rawStreamBufferSize = 64 * 1024

// rawStreamWriter layers the stream envelope over a base sink: bufio for
// write batching, then the zlib deflate body the format mandates. The magic
// header is written through the buffer before compression begins.
type rawStreamWriter struct {
	dataio.Writer

	base io.Writer
	bw   *bufio.Writer
	zw   *zlib.Writer
}

func newRawStreamWriter(base io.Writer, magic []byte) (*rawStreamWriter, error) {
	w := rawStreamWriter{base: base}
	w.bw = bufio.NewWriterSize(base, rawStreamBufferSize)
	if _, err := w.bw.Write(magic); err != nil {
		return nil, err
	}
	w.zw = zlib.NewWriter(w.bw)
	w.Writer = dataio.MakeWriter(w.zw)
	return &w, nil
}

// Close finalizes the deflate body, flushes the buffer, and closes the base
// sink when it is an io.Closer.
func (w *rawStreamWriter) Close() (err error) {
	if c, ok := w.base.(io.Closer); ok {
		defer func() {
			closeErr := c.Close()
			if err == nil {
				err = closeErr
			}
		}()
	}

	if err = w.zw.Close(); err != nil {
		return
	}
	err = w.bw.Flush()
	return
}

// rawStreamReader layers buffering and zlib inflation over a base source.
// The magic header is consumed from the buffer before the inflater attaches.
type rawStreamReader struct {
	dataio.Reader

	br *bufio.Reader
	zr io.ReadCloser
}

func newRawStreamReader(base io.Reader) *rawStreamReader {
	return &rawStreamReader{
		br: bufio.NewReaderSize(base, rawStreamBufferSize),
	}
}

// header consumes and returns the fixed-size magic prefix.
func (r *rawStreamReader) header() ([]byte, error) {
	magic := make([]byte, magicLen)
	if _, err := io.ReadFull(r.br, magic); err != nil {
		return nil, err
	}
	return magic, nil
}

// beginBody attaches the inflater. The zlib header follows the magic
// immediately, so a corrupt prefix surfaces here as a format error.
func (r *rawStreamReader) beginBody() error {
	zr, err := zlib.NewReader(r.br)
	if err != nil {
		switch err {
		case zlib.ErrHeader, zlib.ErrChecksum, zlib.ErrDictionary:
			return formatErrorf("bad deflate body: %v", err)
		}
		return err
	}
	r.zr = zr
	r.Reader = dataio.MakeReader(zr)
	return nil
}

func (r *rawStreamReader) Close() error {
	if r.zr == nil {
		return nil
	}
	zr := r.zr
	r.zr = nil
	return zr.Close()
}
