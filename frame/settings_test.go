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

	"github.com/packetd/h3/internal/varint"
)

func TestSettingsRoundTrip(t *testing.T) {
	want := Settings{
		MaxHeaderListSize:     16384,
		NumPlaceholders:       4,
		QPACKMaxTableCapacity: 0,
		QPACKBlockedStreams:   0,
	}
	got, err := decodeSettings(want.encode(nil))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsUnknownIdentifierIgnored(t *testing.T) {
	var b []byte
	b, _ = varint.Encode(b, 0x6) // max_header_list_size
	b, _ = varint.Encode(b, 16384)
	b, _ = varint.Encode(b, 0x9999) // unrecognized identifier
	b, _ = varint.Encode(b, 1)

	got, err := decodeSettings(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(16384), got.MaxHeaderListSize)
}

func TestSettingsUnknownRoundTripsThroughUnknownField(t *testing.T) {
	want := Settings{
		MaxHeaderListSize: 100,
		Unknown:           map[uint64]uint64{0x9999: 1, 0x33: 42},
	}
	got, err := decodeSettings(want.encode(nil))
	require.NoError(t, err)
	assert.Equal(t, want.Unknown, got.Unknown)
}

func TestSettingsTruncatedValueIsError(t *testing.T) {
	var b []byte
	b, _ = varint.Encode(b, 0x6)
	b = append(b, 0xff) // truncated multi-byte varint, no continuation bytes
	_, err := decodeSettings(b)
	assert.Error(t, err)
}
