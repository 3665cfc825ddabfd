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

func TestHeaderBlockRoundTrip(t *testing.T) {
	fields := []HeaderField{
		{Name: ":method", Value: "GET"},           // exact static match
		{Name: ":path", Value: "/widgets/42"},      // name-only static match
		{Name: "x-request-id", Value: "abc-123"},   // fully literal
		{Name: "content-type", Value: "text/html; charset=utf-8"},
	}
	enc := EncodeHeaderBlock(nil, fields)
	got, err := DecodeHeaderBlock(enc)
	require.NoError(t, err)
	assert.Equal(t, fields, got)
}

func TestHeaderBlockEmpty(t *testing.T) {
	enc := EncodeHeaderBlock(nil, nil)
	got, err := DecodeHeaderBlock(enc)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeHeaderBlockRejectsDynamicRequiredInsertCount(t *testing.T) {
	// Required Insert Count = 5, Base prefix byte irrelevant.
	data := EncodePrefixInt(nil, 8, 0, 5)
	data = EncodePrefixInt(data, 7, 0, 0)
	_, err := DecodeHeaderBlock(data)
	assert.True(t, herr.Is(err, herr.KindQPACKDecompressionFailed))
}

func TestDecodeHeaderBlockRejectsDynamicIndexedField(t *testing.T) {
	data := EncodePrefixInt(nil, 8, 0, 0)
	data = EncodePrefixInt(data, 7, 0, 0)
	// Indexed Field Line with T=0 (dynamic table).
	data = EncodePrefixInt(data, 6, 0x80, 0)
	_, err := DecodeHeaderBlock(data)
	assert.True(t, herr.Is(err, herr.KindQPACKDecompressionFailed))
}

func TestDecodeHeaderBlockRejectsPostBaseIndex(t *testing.T) {
	data := EncodePrefixInt(nil, 8, 0, 0)
	data = EncodePrefixInt(data, 7, 0, 0)
	data = EncodePrefixInt(data, 4, 0x10, 0)
	_, err := DecodeHeaderBlock(data)
	assert.True(t, herr.Is(err, herr.KindQPACKDecompressionFailed))
}

func TestEncodeHeaderBlockPrefersExactMatch(t *testing.T) {
	enc := EncodeHeaderBlock(nil, []HeaderField{{Name: ":status", Value: "200"}})
	// Header block prefix is 2 bytes (REQ insert count=0, base=0); the
	// third byte should be a single-byte Indexed Field Line.
	assert.Equal(t, 3, len(enc))
	assert.NotZero(t, enc[2]&0x80)
}
