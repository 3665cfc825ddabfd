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

// Package qpack implements the static-table-only subset of QPACK (RFC
// 9204) used to encode and decode HTTP/3 header blocks: N-bit prefix
// integers, the RFC 7541 Huffman code, length-prefixed literal strings,
// the static table, and the header-field-line instruction set built on
// top of them.
package qpack

import "github.com/packetd/h3/herr"

func newError(kind herr.Kind, format string, args ...any) error {
	return herr.New(kind, "qpack: "+format, args...)
}

// byteReader is satisfied by both *buffer.Lookahead and the small slice
// wrapper sliceReader below, so the prefix-integer codec can decode
// either a materialized byte slice or an in-flight Lookahead without
// duplicating the bit-accumulation logic.
type byteReader interface {
	ReadByte() (byte, bool)
}

// peekReader additionally supports looking at the next byte without
// consuming it, which the field-line dispatcher (qpack.go) needs to
// decide which instruction it is looking at before decoding it.
type peekReader interface {
	byteReader
	PeekByte() (byte, bool)
}

type sliceReader struct {
	b []byte
	i int
}

func newSliceReader(b []byte) *sliceReader { return &sliceReader{b: b} }

func (s *sliceReader) ReadByte() (byte, bool) {
	if s.i >= len(s.b) {
		return 0, false
	}
	b := s.b[s.i]
	s.i++
	return b, true
}

func (s *sliceReader) PeekByte() (byte, bool) {
	if s.i >= len(s.b) {
		return 0, false
	}
	return s.b[s.i], true
}

// EncodePrefixInt appends the N-bit-prefix-integer encoding of v to dst.
// flags supplies the bits above the N-bit prefix in the first byte (e.g.
// an instruction pattern and/or a Huffman flag); it must not set any bit
// within the low prefixBits bits.
func EncodePrefixInt(dst []byte, prefixBits uint8, flags byte, v uint64) []byte {
	max := uint64(1)<<prefixBits - 1
	if v < max {
		return append(dst, flags|byte(v))
	}
	dst = append(dst, flags|byte(max))
	v -= max
	for v >= 0x80 {
		dst = append(dst, byte(v&0x7f)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// DecodePrefixInt reads an N-bit-prefix integer from src, returning the
// decoded value, the flag bits above the prefix in the first byte, and
// the number of bytes consumed. It returns KindIncomplete if src runs dry
// before a terminating byte, and KindQPACKDecompressionFailed if the
// value would overflow 64 bits.
func DecodePrefixInt(src byteReader, prefixBits uint8) (v uint64, flags byte, n int, err error) {
	first, ok := src.ReadByte()
	if !ok {
		return 0, 0, 0, herr.Incomplete
	}
	mask := byte(1<<prefixBits - 1)
	flags = first &^ mask
	v, n, err = decodePrefixIntCont(first&mask, uint64(mask), src)
	return v, flags, n, err
}

// decodePrefixIntCont decodes the continuation bytes of a prefix integer
// whose first byte has already been consumed by the caller (typically
// because the caller needed to inspect its flag bits before committing
// to this field width). firstVal is the first byte's masked-off prefix
// value, max is the all-ones value of that prefix (1<<prefixBits - 1).
func decodePrefixIntCont(firstVal byte, max uint64, src byteReader) (v uint64, n int, err error) {
	n = 1
	v = uint64(firstVal)
	if v < max {
		return v, n, nil
	}

	var shift uint
	for {
		b, ok := src.ReadByte()
		if !ok {
			return 0, 0, herr.Incomplete
		}
		n++

		inc := uint64(b & 0x7f)
		if shift >= 64 || (shift > 0 && inc > (^uint64(0))>>shift) {
			return 0, 0, newError(herr.KindQPACKDecompressionFailed, "prefix integer overflow")
		}
		add := inc << shift
		if v > ^uint64(0)-add {
			return 0, 0, newError(herr.KindQPACKDecompressionFailed, "prefix integer overflow")
		}
		v += add

		if b&0x80 == 0 {
			return v, n, nil
		}
		shift += 7
	}
}
