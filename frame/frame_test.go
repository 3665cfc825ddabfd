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

package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetd/h3/herr"
	"github.com/packetd/h3/internal/buffer"
)

func queueOf(chunks ...[]byte) *buffer.Queue {
	q := buffer.NewQueue()
	for _, c := range chunks {
		q.Push(buffer.New(c))
	}
	return q
}

func decodeOne(t *testing.T, data []byte) Frame {
	t.Helper()
	q := queueOf(data)
	la := buffer.NewLookahead(q)
	f, err := Decode(la)
	require.NoError(t, err)
	require.NoError(t, la.Commit())
	return f
}

func TestFrameRoundTrip(t *testing.T) {
	cases := []Frame{
		PriorityFrame{},
		CancelPushFrame{PushID: 9},
		SettingsFrame{Settings: Settings{
			MaxHeaderListSize:     16384,
			NumPlaceholders:       0,
			QPACKMaxTableCapacity: 0,
			QPACKBlockedStreams:   0,
		}},
		GoawayFrame{ID: 123},
		MaxPushIDFrame{ID: 456},
		DuplicatePushFrame{PushID: 7},
	}

	for _, want := range cases {
		encoded, err := Encode(nil, want)
		require.NoError(t, err)
		got := decodeOne(t, encoded)
		assert.Equal(t, want, got)
	}
}

func TestFrameDataHeadersEnvelopeOnly(t *testing.T) {
	dst, err := EncodeEnvelope(nil, TypeData, 5)
	require.NoError(t, err)
	dst = append(dst, []byte("hello")...)

	q := queueOf(dst)
	la := buffer.NewLookahead(q)
	f, err := Decode(la)
	require.NoError(t, err)
	assert.Equal(t, DataFrame{Size: 5}, f)
	require.NoError(t, la.Commit())

	// The payload bytes themselves were never consumed by Decode; the
	// caller reads them separately as body bytes.
	assert.Equal(t, 5, q.Len())
}

func TestFramePushPromise(t *testing.T) {
	var payload []byte
	payload, _ = varintAppend(payload, 42) // push id
	payload = append(payload, []byte("header-block")...)

	dst, err := EncodeEnvelope(nil, TypePushPromise, uint64(len(payload)))
	require.NoError(t, err)
	dst = append(dst, payload...)

	q := queueOf(dst)
	la := buffer.NewLookahead(q)
	f, err := Decode(la)
	require.NoError(t, err)
	require.NoError(t, la.Commit())

	got, ok := f.(PushPromiseFrame)
	require.True(t, ok)
	assert.Equal(t, uint64(42), got.PushID)
	assert.Equal(t, uint64(len("header-block")), got.Size)
}

func TestFrameTruncatedYieldsIncomplete(t *testing.T) {
	full, err := Encode(nil, GoawayFrame{ID: 99})
	require.NoError(t, err)

	for i := 1; i < len(full); i++ {
		q := queueOf(full[:i])
		la := buffer.NewLookahead(q)
		_, err := Decode(la)
		require.Error(t, err)
		assert.True(t, herr.Is(err, herr.KindIncomplete), "prefix len %d: %v", i, err)
		// A failed, incomplete decode must not have disturbed the queue.
		assert.Equal(t, i, q.Len())
	}
}

func TestFrameStreamedOneByteAtATime(t *testing.T) {
	full, err := Encode(nil, SettingsFrame{Settings: Settings{MaxHeaderListSize: 16384}})
	require.NoError(t, err)

	q := buffer.NewQueue()
	var got Frame
	for i := 0; i < len(full); i++ {
		q.Push(buffer.New(full[i : i+1]))
		la := buffer.NewLookahead(q)
		f, err := Decode(la)
		if err != nil {
			require.True(t, herr.Is(err, herr.KindIncomplete))
			continue
		}
		require.NoError(t, la.Commit())
		got = f
		break
	}
	require.NotNil(t, got)
	assert.Equal(t, SettingsFrame{Settings: Settings{MaxHeaderListSize: 16384}}, got)
}

func TestFrameMalformedPayloadLengthMismatch(t *testing.T) {
	// A GOAWAY frame whose declared payload_length (5) is larger than the
	// bytes its single varint field actually consumes (2): 0x63 carries
	// the 2-byte length tag (01), so the varint decoder reads 0x63 0x00
	// (value 8960) and stops, leaving 3 trailing bytes unconsumed within a
	// payload declared to be exactly 5 bytes.
	payload := []byte{0x63, 0, 0, 0, 0} // a 2-byte varint, then junk
	dst, err := EncodeEnvelope(nil, TypeGoaway, uint64(len(payload)))
	require.NoError(t, err)
	dst = append(dst, payload...)

	q := queueOf(dst)
	la := buffer.NewLookahead(q)
	_, err = Decode(la)
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.KindMalformedFrame), "%v", err)
}

func TestFrameUnknownTypeSkipped(t *testing.T) {
	dst, err := EncodeEnvelope(nil, Type(0x21), 3) // reserved/grease type
	require.NoError(t, err)
	dst = append(dst, []byte{1, 2, 3}...)
	dst = append(dst, mustEncode(t, GoawayFrame{ID: 5})...)

	q := queueOf(dst)
	la := buffer.NewLookahead(q)

	f, err := Decode(la)
	require.NoError(t, err)
	require.NoError(t, la.Commit())
	unk, ok := f.(UnknownFrame)
	require.True(t, ok)
	assert.Equal(t, Type(0x21), unk.Type)
	assert.Equal(t, uint64(3), unk.Size)

	la2 := buffer.NewLookahead(q)
	f2, err := Decode(la2)
	require.NoError(t, err)
	require.NoError(t, la2.Commit())
	assert.Equal(t, GoawayFrame{ID: 5}, f2)
}

func TestPeekTypeUnknownSkipsPayload(t *testing.T) {
	dst, err := EncodeEnvelope(nil, Type(0x99), 2)
	require.NoError(t, err)
	dst = append(dst, []byte{0xaa, 0xbb}...)

	q := queueOf(dst)
	la := buffer.NewLookahead(q)
	typ, known, err := PeekType(la)
	require.NoError(t, err)
	assert.False(t, known)
	assert.Equal(t, Type(0x99), typ)
	require.NoError(t, la.Commit())
	assert.Equal(t, 0, q.Len())
}

func mustEncode(t *testing.T, f Frame) []byte {
	t.Helper()
	b, err := Encode(nil, f)
	require.NoError(t, err)
	return b
}

// varintAppend is a tiny local helper so this test file doesn't need to
// import internal/varint just to build a push-id prefix by hand.
func varintAppend(dst []byte, v uint64) ([]byte, error) {
	// values used in this file's tests all fit in the 1-byte varint form.
	if v > 63 {
		panic("test helper only supports single-byte varints")
	}
	return append(dst, byte(v)), nil
}
