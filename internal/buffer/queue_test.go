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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilledQueue(parts ...string) *Queue {
	q := NewQueue()
	for _, p := range parts {
		q.Push(New([]byte(p)))
	}
	return q
}

func TestQueueConsumeAcrossSegments(t *testing.T) {
	q := newFilledQueue("hel", "lo ", "world")
	assert.Equal(t, 11, q.Len())

	require.NoError(t, q.Consume(5))
	assert.Equal(t, 6, q.Len())

	require.NoError(t, q.Consume(6))
	assert.Equal(t, 0, q.Len())

	assert.ErrorIs(t, q.Consume(1), ErrOutOfRange)
}

func TestQueueUndo(t *testing.T) {
	q := newFilledQueue("hello", " world")
	require.NoError(t, q.Consume(8))
	assert.Equal(t, 3, q.Len())

	require.NoError(t, q.Undo(8))
	assert.Equal(t, 11, q.Len())

	got := q.PeekAt(0, 11)
	assert.Equal(t, "hello world", string(got))
}

func TestQueueSliceSingleSegmentAliases(t *testing.T) {
	q := newFilledQueue("hello world")
	s, err := q.Slice(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(s.Bytes()))
	assert.Equal(t, 6, q.Len())
}

func TestQueueSliceAcrossSegmentsCopies(t *testing.T) {
	q := newFilledQueue("hel", "lo world")
	s, err := q.Slice(6)
	require.NoError(t, err)
	assert.Equal(t, "hello ", string(s.Bytes()))
	assert.Equal(t, 5, q.Len())
}

func TestQueueDiscard(t *testing.T) {
	q := newFilledQueue("hello", " world")
	require.NoError(t, q.Consume(5))

	require.NoError(t, q.Discard())
	assert.Equal(t, 6, q.Len())

	// undoing past the discarded prefix is no longer possible
	assert.ErrorIs(t, q.Undo(5), ErrOutOfRange)
}

func TestQueueDiscardRefusesWithOpenAnchor(t *testing.T) {
	q := newFilledQueue("hello world")
	require.NoError(t, q.Consume(5))

	a := q.NewAnchor()
	assert.ErrorIs(t, q.Discard(), ErrAnchorOpen)

	a.Release()
	assert.NoError(t, q.Discard())
}

func TestAnchorRewind(t *testing.T) {
	q := newFilledQueue("hello world")
	a := q.NewAnchor()

	require.NoError(t, q.Consume(5))
	require.NoError(t, a.Rewind())

	assert.Equal(t, 11, q.Len())
	got := q.PeekAt(0, 5)
	assert.Equal(t, "hello", string(got))
}

func TestLookaheadDoesNotMutateQueueUntilCommit(t *testing.T) {
	q := newFilledQueue("hello world")
	la := NewLookahead(q)

	b, ok := la.ReadByte()
	require.True(t, ok)
	assert.Equal(t, byte('h'), b)

	part := la.Read(4)
	assert.Equal(t, "ello", string(part))

	// queue's real cursor has not moved
	assert.Equal(t, 11, q.Len())

	require.NoError(t, la.Commit())
	assert.Equal(t, 6, q.Len())
}

func TestLookaheadIncompleteLeavesCursorUnchanged(t *testing.T) {
	q := newFilledQueue("ab")
	la := NewLookahead(q)

	got := la.Read(10)
	assert.Nil(t, got)
	assert.Equal(t, 0, la.Consumed())
	assert.Equal(t, 2, q.Len())
}
