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

package buffer

// Queue strings an ordered sequence of Buffers into one logical byte
// stream with a single read cursor that can cross segment boundaries.
// It is the substrate stream decoders read from: network reads arrive as
// separate Buffers (Push), decoders Consume what they understood, Undo
// lets a restartable parse retry with more data, and Discard reclaims
// memory behind the cursor once nothing will ever rewind into it.
type Queue struct {
	segs   []*Buffer
	cursor int // index of the segment containing the next unconsumed byte

	// totalConsumed is a monotonic count of bytes ever consumed via
	// Consume/Slice, decremented by Undo. Anchor uses the delta between
	// two readings of it to know how far to rewind.
	totalConsumed uint64

	openAnchors int
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue { return &Queue{} }

// Push appends buf to the back of the queue.
func (q *Queue) Push(buf *Buffer) {
	q.segs = append(q.segs, buf)
}

// Len returns the number of unconsumed bytes across all segments.
func (q *Queue) Len() int {
	n := 0
	for i := q.cursor; i < len(q.segs); i++ {
		n += q.segs[i].Size()
	}
	return n
}

// Position returns the total number of bytes ever consumed from this
// queue (monotonic except across Undo).
func (q *Queue) Position() uint64 { return q.totalConsumed }

// Consume advances the read cursor by n bytes. It fails with
// ErrOutOfRange if fewer than n bytes are currently queued; the cursor
// is left unchanged on failure.
func (q *Queue) Consume(n int) error {
	if n > q.Len() {
		return ErrOutOfRange
	}
	remaining := n
	idx := q.cursor
	for remaining > 0 {
		seg := q.segs[idx]
		if seg.Size() == 0 {
			idx++
			continue
		}
		take := seg.Size()
		if take > remaining {
			take = remaining
		}
		_ = seg.Consume(take)
		remaining -= take
	}
	for idx < len(q.segs)-1 && q.segs[idx].Size() == 0 {
		idx++
	}
	q.cursor = idx
	q.totalConsumed += uint64(n)
	return nil
}

// Undo rewinds the read cursor by n bytes. It fails if n exceeds the
// number of bytes consumed since the last Discard (bytes behind a
// discarded prefix can never be recovered).
func (q *Queue) Undo(n int) error {
	remaining := n
	idx := q.cursor
	for remaining > 0 {
		if idx < 0 {
			return ErrOutOfRange
		}
		seg := q.segs[idx]
		can := seg.Consumed()
		if can == 0 {
			idx--
			continue
		}
		take := can
		if take > remaining {
			take = remaining
		}
		if err := seg.unconsume(take); err != nil {
			return err
		}
		remaining -= take
	}
	q.cursor = idx
	q.totalConsumed -= uint64(n)
	return nil
}

// PeekAt returns (without consuming) up to n bytes starting offset bytes
// after the current cursor. It returns fewer than n bytes, with no
// error, if the queue does not yet hold that many; callers distinguish
// "not enough yet" from a hard error by comparing len(result) to n.
func (q *Queue) PeekAt(offset, n int) []byte {
	if n == 0 {
		return nil
	}
	out := make([]byte, 0, n)
	idx := q.cursor
	skip := offset
	for idx < len(q.segs) && len(out) < n {
		seg := q.segs[idx]
		b := seg.Bytes()
		if skip >= len(b) {
			skip -= len(b)
			idx++
			continue
		}
		b = b[skip:]
		skip = 0
		need := n - len(out)
		if need < len(b) {
			b = b[:need]
		}
		out = append(out, b...)
		idx++
	}
	return out
}

// Slice reads and consumes the next n bytes as one contiguous Buffer. If
// they lie entirely within a single segment the result aliases that
// segment's storage (O(1), per Buffer.Slice); otherwise the bytes are
// copied into a fresh Buffer, since no single existing segment's storage
// can represent a span across segments.
func (q *Queue) Slice(n int) (*Buffer, error) {
	if n > q.Len() {
		return nil, ErrOutOfRange
	}
	if n == 0 {
		return Empty(), nil
	}

	if seg := q.segs[q.cursor]; seg.Size() >= n {
		out, err := seg.Slice(n)
		if err != nil {
			return nil, err
		}
		if seg.Size() == 0 {
			q.cursor++
		}
		q.totalConsumed += uint64(n)
		return out, nil
	}

	out := make([]byte, 0, n)
	remaining := n
	idx := q.cursor
	for remaining > 0 {
		seg := q.segs[idx]
		if seg.Size() == 0 {
			idx++
			continue
		}
		take := seg.Size()
		if take > remaining {
			take = remaining
		}
		out = append(out, seg.Bytes()[:take]...)
		_ = seg.Consume(take)
		remaining -= take
		if seg.Size() == 0 {
			idx++
		}
	}
	q.cursor = idx
	q.totalConsumed += uint64(n)
	return New(out), nil
}

// Discard drops and releases segments fully behind the read cursor,
// reclaiming their backing storage. Callers must hold no outstanding
// Anchor recorded before the current cursor position; Discard refuses
// (ErrAnchorOpen) while any Anchor is open, since such an anchor may
// need to rewind into the region about to be freed.
var ErrAnchorOpen = newError("discard: anchor still open")

func (q *Queue) Discard() error {
	if q.openAnchors > 0 {
		return ErrAnchorOpen
	}
	for i := 0; i < q.cursor; i++ {
		q.segs[i].Release()
	}
	q.segs = append(q.segs[:0], q.segs[q.cursor:]...)
	q.cursor = 0
	return nil
}

// Close releases every buffer still held by the queue, including
// unconsumed tail segments, and empties it. Callers use this to tear
// down a stream whose buffered-but-undecoded bytes will never be read,
// rather than Discard, which only ever reclaims the already-consumed
// prefix.
func (q *Queue) Close() error {
	if q.openAnchors > 0 {
		return ErrAnchorOpen
	}
	for _, seg := range q.segs {
		seg.Release()
	}
	q.segs = nil
	q.cursor = 0
	return nil
}

// Anchor is a scoped checkpoint on a Queue's read cursor: Release
// commits the bytes consumed since the anchor was taken, Rewind restores
// the cursor to the recorded position. Go has no destructors, so unlike
// the source's RAII guard, failing to call either leaves the anchor open
// forever and Discard will keep refusing — always call one of them,
// typically via defer.
type Anchor struct {
	q        *Queue
	pos      uint64
	resolved bool
}

// NewAnchor records the current cursor position.
func (q *Queue) NewAnchor() *Anchor {
	q.openAnchors++
	return &Anchor{q: q, pos: q.totalConsumed}
}

// Release commits: the bytes consumed since the anchor was taken stay
// consumed.
func (a *Anchor) Release() {
	if a.resolved {
		return
	}
	a.resolved = true
	a.q.openAnchors--
}

// Rewind restores the cursor to the position recorded at construction,
// undoing any Consume/Slice performed through this Queue since then.
func (a *Anchor) Rewind() error {
	if a.resolved {
		return nil
	}
	a.resolved = true
	a.q.openAnchors--
	delta := a.q.totalConsumed - a.pos
	if delta == 0 {
		return nil
	}
	return a.q.Undo(int(delta))
}

// Discarder drops fully-consumed prefix segments when Close is called.
// Typical use: `d := q.NewDiscarder(); defer d.Close()` around a batch of
// parses so memory behind the cursor is reclaimed once they're done,
// without discarding mid-batch and risking an open Anchor's rewind.
type Discarder struct {
	q *Queue
}

// NewDiscarder returns a Discarder bound to q.
func (q *Queue) NewDiscarder() *Discarder { return &Discarder{q: q} }

// Close discards fully-consumed prefix segments. Errors (an open Anchor)
// are swallowed, matching a destructor's best-effort cleanup; call
// Discard directly if the error matters.
func (d *Discarder) Close() {
	_ = d.q.Discard()
}
