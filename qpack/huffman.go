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

// huffmanNode is one node of the binary decode trie built from
// huffmanTable at package init. Walking bit by bit from the root and
// landing on a leaf is equivalent to (and far easier to get right by
// hand than) a precomputed multi-bit DFA transition table; both encode
// the same fixed code, so round-trip and error behavior are identical.
type huffmanNode struct {
	leaf     bool
	sym      uint16
	children [2]*huffmanNode
}

var huffmanRoot = buildHuffmanTrie()

func buildHuffmanTrie() *huffmanNode {
	root := &huffmanNode{}
	// Only the 256 literal byte symbols are insertable as decodable
	// leaves: the EOS code (index 256) exists solely to pad an
	// encoder's final byte and must never be accepted as a decoded
	// symbol in its own right (RFC 7541 §5.2).
	for sym, e := range huffmanTable[:256] {
		n := root
		for i := int(e.nbits) - 1; i >= 0; i-- {
			bit := (e.code >> uint(i)) & 1
			child := n.children[bit]
			if child == nil {
				child = &huffmanNode{}
				n.children[bit] = child
			}
			n = child
		}
		n.leaf = true
		n.sym = uint16(sym)
	}
	return root
}

// HuffmanEncodedLen returns the number of bytes HuffmanEncode(s) would
// produce, without actually encoding it.
func HuffmanEncodedLen(s []byte) int {
	var bits int
	for _, c := range s {
		bits += int(huffmanTable[c].nbits)
	}
	return (bits + 7) / 8
}

// HuffmanEncode appends the Huffman encoding of s to dst, padding the
// final byte with the high-order bits of the EOS code as required by RFC
// 7541 §5.2.
func HuffmanEncode(dst []byte, s []byte) []byte {
	var bitBuf uint64
	var nbits uint
	for _, c := range s {
		e := huffmanTable[c]
		bitBuf = bitBuf<<uint(e.nbits) | uint64(e.code)
		nbits += uint(e.nbits)
		for nbits >= 8 {
			nbits -= 8
			dst = append(dst, byte(bitBuf>>nbits))
		}
		bitBuf &= (1 << nbits) - 1
	}
	if nbits > 0 {
		pad := 8 - nbits
		b := byte(bitBuf<<pad) | (0xff >> nbits)
		dst = append(dst, b)
	}
	return dst
}

// HuffmanDecode decodes a Huffman-encoded string. It proceeds in two
// passes over the trie: the first only validates and counts emitted
// symbols so the output slice can be allocated once at its final size,
// the second walks the same path again to fill it in.
func HuffmanDecode(data []byte) ([]byte, error) {
	n, err := huffmanDecodedLen(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, n)
	walkHuffman(data, func(sym byte) { out = append(out, sym) })
	return out, nil
}

func huffmanDecodedLen(data []byte) (int, error) {
	n := 0
	err := walkHuffman(data, func(byte) { n++ })
	return n, err
}

// walkHuffman walks data bit by bit through the decode trie, invoking
// emit for every complete symbol found. It reports
// KindQPACKDecompressionFailed if a bit leads nowhere (as the last bit of
// the EOS code does, since the trie omits EOS), or if the
// trailing padding bits (those left over after the last full symbol) are
// not all 1s or span 8 or more bits (a full unused byte implies a
// symbol was dropped, which RFC 7541 §5.2 forbids).
func walkHuffman(data []byte, emit func(byte)) error {
	node := huffmanRoot
	pending := 0 // bits consumed since the last symbol boundary
	allOnes := true

	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bit := (b >> uint(i)) & 1
			child := node.children[bit]
			if child == nil {
				return newError(herr.KindQPACKDecompressionFailed, "invalid huffman code")
			}
			node = child
			pending++
			if bit == 0 {
				allOnes = false
			}
			if node.leaf {
				emit(byte(node.sym))
				node = huffmanRoot
				pending = 0
				allOnes = true
			}
		}
	}

	if node == huffmanRoot {
		return nil
	}
	if pending >= 8 || !allOnes {
		return newError(herr.KindQPACKDecompressionFailed, "invalid huffman padding")
	}
	return nil
}
