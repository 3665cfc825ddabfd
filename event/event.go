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

package event

import (
	"github.com/packetd/h3/frame"
	"github.com/packetd/h3/internal/buffer"
)

// Settings re-exports frame.Settings at the event layer so callers that
// only deal in events never need to import frame directly.
type Settings = frame.Settings

// Event is the QUIC-level message exchanged between the transport and a
// connection's send()/recv() calls. It is move-only in spirit: whichever
// side receives one owns its Bytes and must not retain a reference the
// producer also holds.
type Event interface{ isEvent() }

// Data carries bytes read from (or to be written to) one QUIC stream.
type Data struct {
	StreamID StreamID
	Fin      bool
	Bytes    *buffer.Buffer
}

func (Data) isEvent() {}

// Error reports a transport-level stream error (e.g. RESET_STREAM).
type Error struct {
	StreamID StreamID
	Code     uint64
}

func (Error) isEvent() {}

// H3 is the application-level message a request receiver (or the
// control stream, for Settings/Goaway) delivers to the caller-supplied
// handler. Exactly one concrete type is active per delivered value.
type H3 interface{ isH3() }

// SettingsH3 announces the peer's SETTINGS frame.
type SettingsH3 struct {
	Settings Settings
}

func (SettingsH3) isH3() {}

// HeaderH3 delivers one decoded header field. A request receiver emits
// one of these per field in a HEADERS frame (the first HEADERS frame's
// fields as well as any trailer HEADERS frame's fields).
type HeaderH3 struct {
	Header Header
}

func (HeaderH3) isH3() {}

// BodyH3 delivers raw request/response body bytes from a DATA frame.
type BodyH3 struct {
	Bytes *buffer.Buffer
}

func (BodyH3) isH3() {}

// GoawayH3 announces a GOAWAY frame on the control stream.
type GoawayH3 struct {
	ID uint64
}

func (GoawayH3) isH3() {}

// FinishedH3 signals that a request stream reached its terminal success
// state (the stream's FIN after its last complete frame). The control
// stream never produces one.
type FinishedH3 struct{}

func (FinishedH3) isH3() {}

// ErrorH3 carries a fatal per-stream error; the stream that produced it
// transitions to its terminal error state.
type ErrorH3 struct {
	Err error
}

func (ErrorH3) isH3() {}
