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

// Lookahead is a non-owning, read-only cursor over a Queue: it shares
// the Queue's underlying storage but tracks its own consumed count,
// never mutating the Queue. Wire codecs decode through a Lookahead so a
// truncated input leaves the Queue's real cursor untouched; on success
// the caller commits by calling Queue.Consume(lookahead.Consumed()).
type Lookahead struct {
	q        *Queue
	consumed int
}

// NewLookahead returns a Lookahead starting at q's current cursor.
func NewLookahead(q *Queue) *Lookahead {
	return &Lookahead{q: q}
}

// Consumed returns how many bytes this Lookahead has virtually read.
func (la *Lookahead) Consumed() int { return la.consumed }

// Remaining returns how many bytes are available to this Lookahead
// beyond what it has already read.
func (la *Lookahead) Remaining() int {
	return la.q.Len() - la.consumed
}

// ReadByte reads and virtually consumes one byte. ok is false if no byte
// is available yet.
func (la *Lookahead) ReadByte() (b byte, ok bool) {
	buf := la.q.PeekAt(la.consumed, 1)
	if len(buf) == 0 {
		return 0, false
	}
	la.consumed++
	return buf[0], true
}

// PeekByte reads one byte without virtually consuming it.
func (la *Lookahead) PeekByte() (b byte, ok bool) {
	buf := la.q.PeekAt(la.consumed, 1)
	if len(buf) == 0 {
		return 0, false
	}
	return buf[0], true
}

// Read virtually reads up to n bytes. It returns fewer than n bytes (and
// does not advance) if the Queue does not yet hold that many.
func (la *Lookahead) Read(n int) []byte {
	buf := la.q.PeekAt(la.consumed, n)
	if len(buf) < n {
		return nil
	}
	la.consumed += n
	return buf
}

// Skip virtually advances n bytes without materializing them (used to
// skip an unknown frame's payload while scanning for a recognized one).
func (la *Lookahead) Skip(n int) bool {
	if la.Remaining() < n {
		return false
	}
	la.consumed += n
	return true
}

// Commit advances the underlying Queue's real cursor by Consumed bytes.
// Call this once the caller has decided to keep what the Lookahead read.
func (la *Lookahead) Commit() error {
	return la.q.Consume(la.consumed)
}
