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

// Package event defines the cross-layer message types passed between
// the transport and the stream state machines (QUIC-level Event), and
// between a request receiver and the application (H3).
package event

import "strconv"

// StreamID is a QUIC stream identifier: a 62-bit unsigned integer, the
// same range a varint can carry.
type StreamID uint64

// Unassigned is the sentinel StreamID meaning "no stream yet" (e.g. a
// push promise not yet bound to a push stream).
const Unassigned StreamID = ^StreamID(0)

// Valid reports whether id is a real, assigned stream identifier.
func (id StreamID) Valid() bool { return id != Unassigned }

// IsClientInitiated reports whether id was opened by the client, per the
// QUIC stream-ID numbering scheme (bit 0 of the low two bits).
func (id StreamID) IsClientInitiated() bool { return id&0x1 == 0 }

// IsBidirectional reports whether id names a bidirectional stream.
func (id StreamID) IsBidirectional() bool { return id&0x2 == 0 }

func (id StreamID) String() string {
	if id == Unassigned {
		return "unassigned"
	}
	return strconv.FormatUint(uint64(id), 10)
}
