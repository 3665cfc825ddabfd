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
	"golang.org/x/net/http/httpguts"

	"github.com/packetd/h3/herr"
)

// HeaderField is one decoded (or to-be-encoded) name/value pair.
type HeaderField struct {
	Name  string
	Value string
}

// EncodeHeaderBlock appends the QPACK encoding of fields to dst: a header
// block prefix (Required Insert Count and Base, both always zero since
// this implementation never populates a dynamic table) followed by one
// field line instruction per field, preferring an exact static-table
// match, then a name-only static-table match, then a fully literal field.
func EncodeHeaderBlock(dst []byte, fields []HeaderField) []byte {
	dst = EncodePrefixInt(dst, 8, 0, 0) // Required Insert Count = 0
	dst = EncodePrefixInt(dst, 7, 0, 0) // S = 0, Delta Base = 0
	for _, f := range fields {
		dst = encodeFieldLine(dst, f)
	}
	return dst
}

func encodeFieldLine(dst []byte, f HeaderField) []byte {
	if idx, ok := lookupExact(f.Name, f.Value); ok {
		// Indexed Field Line: 1 T Index(6+), T=1 (static table).
		return EncodePrefixInt(dst, 6, 0xc0, uint64(idx))
	}
	if idx, ok := lookupName(f.Name); ok {
		// Literal Field Line With Name Reference: 01 N T Index(4+).
		dst = EncodePrefixInt(dst, 4, 0x50, uint64(idx))
		return EncodeString(dst, 7, 0, 0x80, []byte(f.Value))
	}
	// Literal Field Line With Literal Name: 0 0 1 N H Name-Length(3+).
	dst = EncodeString(dst, 3, 0x20, 0x08, []byte(f.Name))
	return EncodeString(dst, 7, 0, 0x80, []byte(f.Value))
}

// DecodeHeaderBlock decodes a complete QPACK header block. The caller
// must supply the whole block at once (the frame layer only hands this
// function a HEADERS payload once it has buffered payload_length bytes);
// QPACK decoding is not itself restartable mid-block.
func DecodeHeaderBlock(data []byte) ([]HeaderField, error) {
	src := newSliceReader(data)
	if err := decodeBlockPrefix(src); err != nil {
		return nil, err
	}

	var fields []HeaderField
	for {
		if _, ok := src.PeekByte(); !ok {
			break
		}
		name, value, err := decodeFieldLine(src)
		if err != nil {
			return nil, err
		}
		fields = append(fields, HeaderField{Name: name, Value: value})
	}
	return fields, nil
}

// decodeBlockPrefix reads the Required Insert Count and Base fields and
// rejects anything that would require a dynamic table: a nonzero
// Required Insert Count means the peer's encoder referenced (or promised
// to populate) dynamic table entries, which this decoder, carrying no
// dynamic table, can never resolve.
func decodeBlockPrefix(src peekReader) error {
	ric, _, _, err := DecodePrefixInt(src, 8)
	if err != nil {
		return err
	}
	if ric != 0 {
		return newError(herr.KindQPACKDecompressionFailed, "dynamic table not supported (required insert count %d)", ric)
	}
	// Base's sign bit and Delta Base only matter for resolving
	// post-base dynamic-table indices, which never occur here; decode
	// and discard to stay aligned with the following field lines.
	_, _, _, err = DecodePrefixInt(src, 7)
	return err
}

func decodeFieldLine(src peekReader) (name, value string, err error) {
	first, ok := src.PeekByte()
	if !ok {
		return "", "", herr.Incomplete
	}

	switch {
	case first&0x80 != 0:
		// Indexed Field Line: 1 T Index(6+).
		b, _ := src.ReadByte()
		if b&0x40 == 0 {
			return "", "", newError(herr.KindQPACKDecompressionFailed, "dynamic table not supported (indexed field line)")
		}
		idx, _, err := decodePrefixIntCont(b&0x3f, 0x3f, src)
		if err != nil {
			return "", "", err
		}
		e, err := staticEntryAt(idx)
		if err != nil {
			return "", "", err
		}
		return e.name, e.value, nil

	case first&0xc0 == 0x40:
		// Literal Field Line With Name Reference: 01 N T Index(4+).
		b, _ := src.ReadByte()
		if b&0x10 == 0 {
			return "", "", newError(herr.KindQPACKDecompressionFailed, "dynamic table not supported (literal with name reference)")
		}
		idx, _, err := decodePrefixIntCont(b&0x0f, 0x0f, src)
		if err != nil {
			return "", "", err
		}
		e, err := staticEntryAt(idx)
		if err != nil {
			return "", "", err
		}
		val, _, err := DecodeString(src, 7, 0x80)
		if err != nil {
			return "", "", err
		}
		return e.name, string(val), nil

	case first&0xe0 == 0x20:
		// Literal Field Line With Literal Name: 0 0 1 N H Name-Length(3+).
		b, _ := src.ReadByte()
		nameHuffman := b&0x08 != 0
		nameLen, _, err := decodePrefixIntCont(b&0x07, 0x07, src)
		if err != nil {
			return "", "", err
		}
		raw, err := readExact(src, nameLen)
		if err != nil {
			return "", "", err
		}
		var nameStr string
		if nameHuffman {
			dec, err := HuffmanDecode(raw)
			if err != nil {
				return "", "", err
			}
			nameStr = string(dec)
		} else {
			nameStr = string(raw)
		}
		if !httpguts.ValidHeaderFieldName(nameStr) || !isLowerASCII(nameStr) {
			return "", "", herr.New(herr.KindMalformedHeader, "invalid header name %q", nameStr)
		}
		val, _, err := DecodeString(src, 7, 0x80)
		if err != nil {
			return "", "", err
		}
		return nameStr, string(val), nil

	case first&0xf0 == 0x10:
		return "", "", newError(herr.KindQPACKDecompressionFailed, "dynamic table not supported (indexed field line with post-base index)")

	default: // first&0xf0 == 0x00
		return "", "", newError(herr.KindQPACKDecompressionFailed, "dynamic table not supported (literal field line with post-base name reference)")
	}
}

func readExact(src byteReader, n uint64) ([]byte, error) {
	out := make([]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		b, ok := src.ReadByte()
		if !ok {
			return nil, herr.Incomplete
		}
		out = append(out, b)
	}
	return out, nil
}

// isLowerASCII reports whether s contains no uppercase ASCII letters, the
// name-casing invariant required of every header field not satisfied by
// a static-table reference (which is already lowercase by construction).
func isLowerASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			return false
		}
	}
	return true
}

func staticEntryAt(idx uint64) (staticEntry, error) {
	if idx >= uint64(len(staticTable)) {
		return staticEntry{}, newError(herr.KindQPACKDecompressionFailed, "static table index %d out of range", idx)
	}
	return staticTable[idx], nil
}
