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

// Package varint implements the QUIC variable-length integer encoding:
// 1/2/4/8 byte big-endian values with a 2-bit length tag in the top bits
// of the first byte.
package varint

import (
	"github.com/packetd/h3/herr"
	"github.com/packetd/h3/internal/buffer"
)

func newError(kind herr.Kind, format string, args ...any) error {
	return herr.New(kind, "varint: "+format, args...)
}

// ErrIncomplete is returned when fewer bytes are available than the
// length tag of the first byte requires.
var ErrIncomplete = newError(herr.KindIncomplete, "incomplete")

// ErrOverflow is returned by Encode when v does not fit in 62 bits.
var ErrOverflow = newError(herr.KindVarintOverflow, "varint_overflow")

// MaxValue is the largest value representable by a varint (2^62 - 1).
const MaxValue = (1 << 62) - 1

// Size returns the number of bytes Encode(v) will write, or 0 if v
// overflows.
func Size(v uint64) int {
	switch {
	case v <= 63:
		return 1
	case v <= 16383:
		return 2
	case v <= 1073741823:
		return 4
	case v <= MaxValue:
		return 8
	default:
		return 0
	}
}

// Encode appends the varint encoding of v to dst and returns the result.
func Encode(dst []byte, v uint64) ([]byte, error) {
	n := Size(v)
	switch n {
	case 0:
		return dst, ErrOverflow
	case 1:
		return append(dst, byte(v)), nil
	case 2:
		return append(dst, byte(v>>8)|0x40, byte(v)), nil
	case 4:
		return append(dst, byte(v>>24)|0x80, byte(v>>16), byte(v>>8), byte(v)), nil
	default:
		return append(dst,
			byte(v>>56)|0xc0, byte(v>>48), byte(v>>40), byte(v>>32),
			byte(v>>24), byte(v>>16), byte(v>>8), byte(v)), nil
	}
}

// Decode reads a varint from the front of b. It returns the decoded
// value and the number of bytes consumed. Canonical encoding is not
// enforced: any valid 2/4/8-byte encoding of a small value is accepted,
// matching QUIC's own decoder.
func Decode(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrIncomplete
	}

	tag := b[0] >> 6
	n := 1 << tag
	if len(b) < n {
		return 0, 0, ErrIncomplete
	}

	v := uint64(b[0] & 0x3f)
	for i := 1; i < n; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v, n, nil
}

// DecodeLookahead reads a varint through a buffer.Lookahead, so a varint
// split across two transport reads reports ErrIncomplete instead of
// reading past what is actually available. The caller decides whether to
// commit the Lookahead; la itself is never mutated destructively.
func DecodeLookahead(la *buffer.Lookahead) (uint64, error) {
	first, ok := la.PeekByte()
	if !ok {
		return 0, ErrIncomplete
	}
	n := 1 << (first >> 6)
	raw := la.Read(n)
	if raw == nil {
		return 0, ErrIncomplete
	}
	v, _, err := Decode(raw)
	return v, err
}
