// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package buffer implements the byte-buffer substrate the wire codecs
// and stream state machines are built on: an immutable-after-construction
// Buffer with inline/owned/shared representations, and a Queue that
// strings Buffers together into one logical, restartable byte stream.
package buffer

import (
	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"
)

func newError(format string, args ...any) error {
	format = "buffer: " + format
	return errors.Errorf(format, args...)
}

// ErrOutOfRange is returned when consume/undo/slice/copy is asked for
// more bytes than the buffer currently holds.
var ErrOutOfRange = newError("out of range")

// inlineCap is the largest payload stored directly inside a Buffer's
// inline array instead of a heap-backed store.
const inlineCap = 20

// Kind reports which of the three representations a Buffer currently
// holds. It is derived, not stored: Owned and Shared are the same heap
// representation distinguished only by how many Buffers currently alias
// the backing store.
type Kind int

const (
	KindInline Kind = iota
	KindOwned
	KindShared
)

func (k Kind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindOwned:
		return "owned"
	case KindShared:
		return "shared"
	default:
		return "unknown"
	}
}

// store is the refcounted heap backing for owned/shared buffers. A
// refcount of 1 means the storage is uniquely owned; >1 means at least
// one slice() aliased it. Refcounts are plain ints, not atomics: a
// connection and every buffer it owns are driven synchronously from a
// single goroutine, the same way the embedding transport's read/write
// loop drives it.
type store struct {
	bb   *bytebufferpool.ByteBuffer
	refs int
}

func newStore(n int) *store {
	bb := bytebufferpool.Get()
	if cap(bb.B) < n {
		bb.B = make([]byte, n)
	} else {
		bb.B = bb.B[:n]
	}
	return &store{bb: bb, refs: 1}
}

func (s *store) retain() { s.refs++ }

func (s *store) release() {
	s.refs--
	if s.refs == 0 {
		bytebufferpool.Put(s.bb)
	}
}

// Buffer is a run of bytes with a read cursor. It is immutable after
// construction: consume/slice/copy never mutate the bytes themselves,
// only which window of them a given Buffer (or its descendants) can see.
type Buffer struct {
	inline [inlineCap]byte

	isInline bool
	st       *store // nil iff isInline

	start    int // offset of the first unconsumed byte
	length   int // number of unconsumed bytes
	consumed int // bytes consumed so far from this Buffer's original window
}

// New copies p into a new Buffer. Payloads of inlineCap bytes or fewer
// are stored inline (no heap allocation); larger payloads get a pooled
// heap buffer with a refcount of 1 (uniquely owned).
func New(p []byte) *Buffer {
	b := &Buffer{length: len(p)}
	if len(p) <= inlineCap {
		b.isInline = true
		copy(b.inline[:], p)
		return b
	}
	b.st = newStore(len(p))
	copy(b.st.bb.B, p)
	return b
}

// Empty returns a zero-length Buffer.
func Empty() *Buffer { return New(nil) }

// Size returns the number of unconsumed bytes.
func (b *Buffer) Size() int { return b.length }

// Consumed returns the number of bytes consumed from this Buffer's
// original window so far.
func (b *Buffer) Consumed() int { return b.consumed }

// Kind reports the current representation.
func (b *Buffer) Kind() Kind {
	switch {
	case b.isInline:
		return KindInline
	case b.st.refs == 1:
		return KindOwned
	default:
		return KindShared
	}
}

// Bytes returns the current unconsumed window. The caller must not
// mutate it: it may be aliased by other Buffers sharing the same store.
func (b *Buffer) Bytes() []byte {
	if b.isInline {
		return b.inline[b.start : b.start+b.length]
	}
	return b.st.bb.B[b.start : b.start+b.length]
}

// Consume advances the read cursor by n bytes.
func (b *Buffer) Consume(n int) error {
	if n < 0 || n > b.length {
		return ErrOutOfRange
	}
	b.start += n
	b.length -= n
	b.consumed += n
	return nil
}

// unconsume reverses a previous Consume by n bytes. Only the Queue uses
// this, to implement undo(); it is not part of Buffer's own invariants
// (a Buffer alone never rewinds).
func (b *Buffer) unconsume(n int) error {
	if n < 0 || n > b.consumed {
		return ErrOutOfRange
	}
	b.start -= n
	b.length += n
	b.consumed -= n
	return nil
}

// Slice returns a new Buffer aliasing the first n unconsumed bytes of b
// and advances b past them, transferring exclusive read access to those
// bytes to the returned Buffer. O(1): no bytes are copied.
//
// Buffers of inlineCap bytes or fewer are small enough that copying is
// cheaper than promoting them to a refcounted heap store, so Slice
// copies instead of aliasing in that case; the aliasing/refcount path
// only matters for buffers large enough to be heap-backed.
func (b *Buffer) Slice(n int) (*Buffer, error) {
	if n < 0 || n > b.length {
		return nil, ErrOutOfRange
	}

	if b.isInline {
		out := New(b.inline[b.start : b.start+n])
		_ = b.Consume(n)
		return out, nil
	}

	b.st.retain()
	out := &Buffer{st: b.st, start: b.start, length: n}
	_ = b.Consume(n)
	return out, nil
}

// Copy returns an independent Buffer holding a copy of the first n
// unconsumed bytes of b, without advancing b.
func (b *Buffer) Copy(n int) (*Buffer, error) {
	if n < 0 || n > b.length {
		return nil, ErrOutOfRange
	}
	return New(b.Bytes()[:n]), nil
}

// Release drops this Buffer's reference to its backing store, returning
// it to the pool once the last reference is gone. It is a no-op for
// inline buffers (they hold no heap storage). Callers that keep Buffers
// only transiently (decode a frame, hand bytes to the application, move
// on) do not need to call Release; the Go GC reclaims unreturned pooled
// buffers like any other heap value. Release exists for long-lived
// Buffers (e.g. queued stream input) where returning storage to
// bytebufferpool promptly matters.
func (b *Buffer) Release() {
	if b.isInline || b.st == nil {
		return
	}
	b.st.release()
	b.st = nil
	b.length = 0
}
