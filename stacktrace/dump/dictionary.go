// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"github.com/tobert/jvm-tools/stacktrace"
)

// Write-side symbol dictionaries. Each dictionary assigns small positive
// ids in strict first-seen order and emits a value's definition record
// exactly once, the moment the id is assigned. Id 0 is reserved for the
// null sentinel and is handled by the caller, never stored here.
//
// Dictionaries live and die with their Writer; two streams never share
// dictionary state.

// stringDict interns strings for the lifetime of one writer. It is
// append-only: entries are never evicted, so an id stays valid until the
// writer closes.
type stringDict struct {
	ids  map[string]int
	emit func(s string) error
}

func newStringDict(emit func(s string) error) *stringDict {
	return &stringDict{
		ids:  map[string]int{},
		emit: emit,
	}
}

func (d *stringDict) intern(s string) (int, error) {
	if id, ok := d.ids[s]; ok {
		return id, nil
	}
	if err := d.emit(s); err != nil {
		return 0, err
	}
	id := len(d.ids) + 1
	d.ids[s] = id
	return id, nil
}

// frameDict interns frames, keyed by value equality. The emit callback is
// responsible for interning the frame's strings before writing the frame
// definition, so that definitions precede their first reference.
type frameDict struct {
	ids  map[stacktrace.Frame]int
	emit func(f stacktrace.Frame) error
}

func newFrameDict(emit func(f stacktrace.Frame) error) *frameDict {
	return &frameDict{
		ids:  map[stacktrace.Frame]int{},
		emit: emit,
	}
}

func (d *frameDict) intern(f stacktrace.Frame) (int, error) {
	if id, ok := d.ids[f]; ok {
		return id, nil
	}
	if err := d.emit(f); err != nil {
		return 0, err
	}
	id := len(d.ids) + 1
	d.ids[f] = id
	return id, nil
}

// rotatingDict is a bounded intern table for high-cardinality strings with
// poor reuse locality, such as thread names. Once the capacity is reached,
// the oldest live entry is evicted (FIFO) before a new one is admitted; a
// later reference to an evicted string is re-emitted under a fresh id. This
// keeps writer memory bounded on unbounded input at the cost of repeated
// definition records.
type rotatingDict struct {
	ids     map[string]int
	slots   []string // FIFO ring of live entries
	head    int      // next slot to fill; the oldest entry once full
	count   int
	next    int // last assigned id; monotonic, never reused
	emit    func(s string) error
	onEvict func()
}

func newRotatingDict(capacity int, emit func(s string) error, onEvict func()) *rotatingDict {
	return &rotatingDict{
		ids:     make(map[string]int, capacity),
		slots:   make([]string, capacity),
		emit:    emit,
		onEvict: onEvict,
	}
}

func (d *rotatingDict) intern(s string) (int, error) {
	if id, ok := d.ids[s]; ok {
		return id, nil
	}
	if err := d.emit(s); err != nil {
		return 0, err
	}

	if d.count == len(d.slots) {
		delete(d.ids, d.slots[d.head])
		if d.onEvict != nil {
			d.onEvict()
		}
	} else {
		d.count++
	}
	d.slots[d.head] = s
	d.head = (d.head + 1) % len(d.slots)

	d.next++
	d.ids[s] = d.next
	return d.next, nil
}
