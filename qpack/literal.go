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

import "github.com/packetd/h3/herr"

// EncodeString appends a length-prefixed string literal to dst: an
// N-bit-prefix integer giving the byte length of what follows, with the
// bit immediately above that prefix (hBit) set when the payload is
// Huffman-encoded. It chooses Huffman encoding only when that is
// strictly shorter than the raw bytes; RFC 7541's code gives many byte
// values codes longer than 8 bits, so Huffman can also grow a string.
func EncodeString(dst []byte, prefixBits uint8, flags byte, hBit byte, s []byte) []byte {
	if HuffmanEncodedLen(s) < len(s) {
		dst = EncodePrefixInt(dst, prefixBits, flags|hBit, uint64(HuffmanEncodedLen(s)))
		return HuffmanEncode(dst, s)
	}
	dst = EncodePrefixInt(dst, prefixBits, flags, uint64(len(s)))
	return append(dst, s...)
}

// DecodeString reads a length-prefixed string literal from src, returning
// the decoded bytes and the number of bytes consumed from src (which may
// be more than what the length prefix alone implies the string occupies
// on the wire, since the prefix integer itself can span several bytes).
func DecodeString(src byteReader, prefixBits uint8, hBit byte) ([]byte, int, error) {
	length, flags, n, err := DecodePrefixInt(src, prefixBits)
	if err != nil {
		return nil, 0, err
	}

	raw := make([]byte, 0, length)
	for i := uint64(0); i < length; i++ {
		b, ok := src.ReadByte()
		if !ok {
			return nil, 0, herr.Incomplete
		}
		raw = append(raw, b)
		n++
	}

	if flags&hBit == 0 {
		return raw, n, nil
	}
	decoded, err := HuffmanDecode(raw)
	if err != nil {
		return nil, 0, err
	}
	return decoded, n, nil
}
