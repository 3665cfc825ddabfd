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

package varint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetd/h3/internal/buffer"
)

func TestEncode(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{62, []byte{0x3e}},
		{15248, []byte{0x7b, 0x90}},
		{1073721823, []byte{0xbf, 0xff, 0xb1, 0xdf}},
		{4611386010427387203, []byte{0xff, 0xfe, 0xef, 0x24, 0xf1, 0xba, 0xed, 0x43}},
	}
	for _, c := range cases {
		got, err := Encode(nil, c.v)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestEncodeOverflow(t *testing.T) {
	_, err := Encode(nil, uint64(1)<<62)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestDecode(t *testing.T) {
	cases := []struct {
		b        []byte
		want     uint64
		consumed int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x3e}, 62, 1},
		{[]byte{0x7b, 0x90}, 15248, 2},
		{[]byte{0xbf, 0xff, 0xb1, 0xdf}, 1073721823, 4},
		{[]byte{0xff, 0xfe, 0xef, 0x24, 0xf1, 0xba, 0xed, 0x43}, 4611386010427387203, 8},
	}
	for _, c := range cases {
		v, n, err := Decode(c.b)
		require.NoError(t, err)
		assert.Equal(t, c.want, v)
		assert.Equal(t, c.consumed, n)
	}
}

func TestDecodeIncomplete(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrIncomplete)

	// the length tag says 2 bytes, only one is present
	_, _, err = Decode([]byte{0x7b})
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 63, 64, 16383, 16384, 1073741823, 1073741824, MaxValue}
	for _, v := range values {
		enc, err := Encode(nil, v)
		require.NoError(t, err)
		got, n, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), n)
	}
}

func TestDecodeLookahead(t *testing.T) {
	q := buffer.NewQueue()
	q.Push(buffer.New([]byte{0x7b}))
	q.Push(buffer.New([]byte{0x90, 0xaa}))

	la := buffer.NewLookahead(q)
	v, err := DecodeLookahead(la)
	require.NoError(t, err)
	assert.Equal(t, uint64(15248), v)
	assert.Equal(t, 2, la.Consumed())

	require.NoError(t, la.Commit())
	assert.Equal(t, 1, q.Len())
}

func TestDecodeLookaheadIncomplete(t *testing.T) {
	q := buffer.NewQueue()
	q.Push(buffer.New([]byte{0x7b}))

	la := buffer.NewLookahead(q)
	_, err := DecodeLookahead(la)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, 1, q.Len())
}
