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

package qpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetd/h3/herr"
)

const literalHBit = 0x80

func TestStringRoundTripHuffman(t *testing.T) {
	s := []byte("www.example.com")
	enc := EncodeString(nil, 7, 0, literalHBit, s)
	// Huffman shrinks this string, so the H bit must be set.
	assert.NotZero(t, enc[0]&literalHBit)

	got, n, err := DecodeString(newSliceReader(enc), 7, literalHBit)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, len(enc), n)
}

func TestStringRoundTripRaw(t *testing.T) {
	// bytes 0x00-0x05 have 13- to 28-bit Huffman codes, so Huffman would
	// grow this string and EncodeString takes the raw path; the raw
	// literal still round-trips.
	s := []byte{0, 1, 2, 3, 4, 5}
	enc := EncodeString(nil, 7, 0, literalHBit, s)
	got, _, err := DecodeString(newSliceReader(enc), 7, literalHBit)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecodeStringIncomplete(t *testing.T) {
	enc := EncodeString(nil, 7, 0, literalHBit, []byte("hello"))
	_, _, err := DecodeString(newSliceReader(enc[:len(enc)-1]), 7, literalHBit)
	assert.ErrorIs(t, err, herr.Incomplete)
}
