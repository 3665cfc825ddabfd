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
	"sort"

	json "github.com/goccy/go-json"

	"github.com/packetd/h3/internal/varint"
)

// Setting identifiers, bit-exact with the wire format.
const (
	settingQPACKMaxTableCapacity = 0x1
	settingMaxHeaderListSize     = 0x6
	settingQPACKBlockedStreams   = 0x7
	settingNumPlaceholders       = 0x9
)

// Settings is the record exchanged in a SETTINGS frame. A connection
// keeps two instances: the locally advertised settings, and whatever the
// peer last sent.
type Settings struct {
	MaxHeaderListSize     uint64
	NumPlaceholders       uint64
	QPACKMaxTableCapacity uint64
	QPACKBlockedStreams   uint64

	// Unknown carries every identifier/value pair that is not one of the
	// four above: on encode, extra identifiers the local endpoint was
	// configured to advertise (see package conn's SettingsFromConfig),
	// normally only to exercise a peer's unknown-identifier handling; on
	// decode, whatever identifiers a peer sent that this implementation
	// does not itself recognize. Decoding never errors or otherwise acts
	// on them; they are recorded for diagnostics only.
	Unknown map[uint64]uint64
}

// encode appends the SETTINGS payload (not the frame envelope) to dst.
// Zero-valued fields are still emitted: a SETTINGS frame with no entries
// is valid, but this implementation always advertises all four so the
// peer never has to guess a default.
func (s Settings) encode(dst []byte) []byte {
	dst, _ = varint.Encode(dst, settingMaxHeaderListSize)
	dst, _ = varint.Encode(dst, s.MaxHeaderListSize)
	dst, _ = varint.Encode(dst, settingNumPlaceholders)
	dst, _ = varint.Encode(dst, s.NumPlaceholders)
	dst, _ = varint.Encode(dst, settingQPACKMaxTableCapacity)
	dst, _ = varint.Encode(dst, s.QPACKMaxTableCapacity)
	dst, _ = varint.Encode(dst, settingQPACKBlockedStreams)
	dst, _ = varint.Encode(dst, s.QPACKBlockedStreams)

	if len(s.Unknown) > 0 {
		ids := make([]uint64, 0, len(s.Unknown))
		for id := range s.Unknown {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			dst, _ = varint.Encode(dst, id)
			dst, _ = varint.Encode(dst, s.Unknown[id])
		}
	}
	return dst
}

// decodeSettings parses b as one complete SETTINGS payload.
// Unrecognized identifiers are decoded (to stay aligned with the next
// id/value pair), recorded in Unknown, and otherwise ignored.
func decodeSettings(b []byte) (Settings, error) {
	var s Settings
	for len(b) > 0 {
		id, n, err := varint.Decode(b)
		if err != nil {
			return Settings{}, err
		}
		b = b[n:]

		val, n, err := varint.Decode(b)
		if err != nil {
			return Settings{}, err
		}
		b = b[n:]

		switch id {
		case settingMaxHeaderListSize:
			s.MaxHeaderListSize = val
		case settingNumPlaceholders:
			s.NumPlaceholders = val
		case settingQPACKMaxTableCapacity:
			s.QPACKMaxTableCapacity = val
		case settingQPACKBlockedStreams:
			s.QPACKBlockedStreams = val
		default:
			if s.Unknown == nil {
				s.Unknown = make(map[uint64]uint64)
			}
			s.Unknown[id] = val
		}
	}
	return s, nil
}

// String renders s for debug logging.
func (s Settings) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return "settings(?)"
	}
	return string(b)
}
