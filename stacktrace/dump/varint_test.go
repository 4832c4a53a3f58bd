// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"bytes"
	"io"

	"github.com/tobert/jvm-tools/support/dataio"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("VarInt", func() {
	encode := func(v int) ([]byte, error) {
		var buf bytes.Buffer
		err := writeVarInt(dataio.MakeWriter(&buf), v)
		return buf.Bytes(), err
	}

	DescribeTable("encodes to the exact wire bytes and back",
		func(v int, wire []byte) {
			got, err := encode(v)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(wire))

			decoded, err := readVarInt(dataio.MakeReader(bytes.NewReader(wire)))
			Expect(err).ToNot(HaveOccurred())
			Expect(decoded).To(Equal(v))
		},
		Entry("zero", 0, []byte{0x00}),
		Entry("single-byte maximum", 127, []byte{0x7F}),
		Entry("first two-byte value", 128, []byte{0x80, 0x01}),
		Entry("two bytes", 300, []byte{0xAC, 0x02}),
		Entry("three bytes", 1<<20, []byte{0x80, 0x80, 0x40}),
		Entry("four bytes", 1<<28, []byte{0x80, 0x80, 0x80, 0x80}),
		Entry("domain maximum", maxVarInt, []byte{0xFF, 0xFF, 0xFF, 0xFF}),
	)

	It("round-trips a sweep of the domain", func() {
		for v := 0; v >= 0 && v <= maxVarInt; v += 65537 {
			wire, err := encode(v)
			Expect(err).ToNot(HaveOccurred())

			decoded, err := readVarInt(dataio.MakeReader(bytes.NewReader(wire)))
			Expect(err).ToNot(HaveOccurred())
			Expect(decoded).To(Equal(v))
		}
	})

	It("never reads a fifth byte", func() {
		wire := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F}
		r := bytes.NewReader(wire)

		decoded, err := readVarInt(dataio.MakeReader(r))
		Expect(err).ToNot(HaveOccurred())
		Expect(decoded).To(Equal(maxVarInt))
		Expect(r.Len()).To(Equal(1))
	})

	DescribeTable("rejects values outside the domain without writing",
		func(v int) {
			wire, err := encode(v)
			Expect(errors.Cause(err)).To(Equal(ErrOutOfRange))
			Expect(wire).To(BeEmpty())
		},
		Entry("one past the maximum", maxVarInt+1),
		Entry("negative", -1),
	)

	DescribeTable("reports truncation as io.ErrUnexpectedEOF",
		func(wire []byte) {
			_, err := readVarInt(dataio.MakeReader(bytes.NewReader(wire)))
			Expect(err).To(Equal(io.ErrUnexpectedEOF))
		},
		Entry("empty input", []byte(nil)),
		Entry("dangling continuation", []byte{0x80}),
		Entry("missing closing byte", []byte{0xFF, 0xFF, 0xFF}),
	)
})
