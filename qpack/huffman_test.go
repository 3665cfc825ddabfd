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

// RFC 7541 §C.4.1: "www.example.com" Huffman-encodes to this 12-byte
// sequence.
func TestHuffmanEncodeRFCExample(t *testing.T) {
	got := HuffmanEncode(nil, []byte("www.example.com"))
	want := []byte{
		0xf1, 0xe3, 0xc2, 0xe5, 0xf2, 0x3a, 0x6b, 0xa0, 0xab, 0x90, 0xf4, 0xff,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, len(want), HuffmanEncodedLen([]byte("www.example.com")))
}

func TestHuffmanRoundTrip(t *testing.T) {
	cases := []string{
		"", "a", "www.example.com", "no-cache", "custom-key", "custom-value",
		"The quick brown fox jumps over the lazy dog.",
	}
	for _, s := range cases {
		enc := HuffmanEncode(nil, []byte(s))
		dec, err := HuffmanDecode(enc)
		require.NoError(t, err)
		assert.Equal(t, s, string(dec))
	}
}

func TestHuffmanDecodeInvalidCode(t *testing.T) {
	// 30 consecutive 1 bits spell the EOS code, which the decode trie
	// leaves out, so the walk dead-ends on the 30th bit.
	_, err := HuffmanDecode([]byte{0xff, 0xff, 0xff, 0xff})
	assert.True(t, herr.Is(err, herr.KindQPACKDecompressionFailed))
}

func TestHuffmanDecodeBadPadding(t *testing.T) {
	// "a" is 5 bits (0x18 >> 3), padded with three 0 bits instead of all-1s.
	_, err := HuffmanDecode([]byte{0x18})
	assert.True(t, herr.Is(err, herr.KindQPACKDecompressionFailed))
}
