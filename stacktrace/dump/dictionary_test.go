// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"github.com/tobert/jvm-tools/stacktrace"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("stringDict", func() {
	var emitted []string
	var d *stringDict

	BeforeEach(func() {
		emitted = nil
		d = newStringDict(func(s string) error {
			emitted = append(emitted, s)
			return nil
		})
	})

	It("assigns ids in first-seen order starting at 1", func() {
		for i, s := range []string{"a", "b", "c"} {
			id, err := d.intern(s)
			Expect(err).ToNot(HaveOccurred())
			Expect(id).To(Equal(i + 1))
		}
		Expect(emitted).To(Equal([]string{"a", "b", "c"}))
	})

	It("emits each definition exactly once", func() {
		first, err := d.intern("worker")
		Expect(err).ToNot(HaveOccurred())

		second, err := d.intern("worker")
		Expect(err).ToNot(HaveOccurred())

		Expect(second).To(Equal(first))
		Expect(emitted).To(HaveLen(1))
	})

	It("interns the empty string as a real entry", func() {
		id, err := d.intern("")
		Expect(err).ToNot(HaveOccurred())
		Expect(id).To(Equal(1))
		Expect(emitted).To(Equal([]string{""}))
	})
})

var _ = Describe("frameDict", func() {
	It("deduplicates separately constructed equal frames", func() {
		emitted := 0
		d := newFrameDict(func(f stacktrace.Frame) error {
			emitted++
			return nil
		})

		a, err := d.intern(stacktrace.NewFrame("a.b.C", "run", "C.java", 42))
		Expect(err).ToNot(HaveOccurred())

		b, err := d.intern(stacktrace.NewFrame("a.b.C", "run", "C.java", 42))
		Expect(err).ToNot(HaveOccurred())

		Expect(b).To(Equal(a))
		Expect(emitted).To(Equal(1))

		c, err := d.intern(stacktrace.NewFrame("a.b.C", "run", "C.java", 43))
		Expect(err).ToNot(HaveOccurred())
		Expect(c).ToNot(Equal(a))
		Expect(emitted).To(Equal(2))
	})
})

var _ = Describe("rotatingDict", func() {
	var emitted []string
	var evictions int
	var d *rotatingDict

	BeforeEach(func() {
		emitted = nil
		evictions = 0
		d = newRotatingDict(2, func(s string) error {
			emitted = append(emitted, s)
			return nil
		}, func() { evictions++ })
	})

	intern := func(s string) int {
		id, err := d.intern(s)
		Expect(err).ToNot(HaveOccurred())
		return id
	}

	It("behaves like a plain dictionary under capacity", func() {
		Expect(intern("a")).To(Equal(1))
		Expect(intern("b")).To(Equal(2))
		Expect(intern("a")).To(Equal(1))

		Expect(emitted).To(Equal([]string{"a", "b"}))
		Expect(evictions).To(BeZero())
	})

	It("evicts FIFO and re-emits evicted values under fresh ids", func() {
		Expect(intern("a")).To(Equal(1))
		Expect(intern("b")).To(Equal(2))

		// "c" displaces "a", the oldest live entry.
		Expect(intern("c")).To(Equal(3))
		Expect(evictions).To(Equal(1))

		// "b" is still live; "a" must be re-emitted with a new id.
		Expect(intern("b")).To(Equal(2))
		Expect(intern("a")).To(Equal(4))
		Expect(evictions).To(Equal(2))

		Expect(emitted).To(Equal([]string{"a", "b", "c", "a"}))
	})
})
