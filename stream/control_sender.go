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

package stream

import (
	"github.com/packetd/h3/frame"
	"github.com/packetd/h3/herr"
)

// controlStreamType is the HTTP/3 unidirectional stream-type varint
// identifying a control stream (0x00), per the stream-type registry.
// Ownership of writing this byte belongs to the core: the embedding
// transport is expected to create a new unidirectional stream and hand
// it to a ControlSender, not to write this preface itself.
var controlStreamType = []byte{0x00}

type controlSenderState int

const (
	controlSenderStateSettings controlSenderState = iota
	controlSenderStateIdle
	controlSenderStateError
)

// ControlSender is the settings → idle → error state machine that owns
// a connection's outbound control stream.
type ControlSender struct {
	state    controlSenderState
	settings frame.Settings
}

// NewControlSender builds a ControlSender that will advertise settings
// as the connection's local SETTINGS once Send is first called.
func NewControlSender(settings frame.Settings) *ControlSender {
	return &ControlSender{state: controlSenderStateSettings, settings: settings}
}

// Send returns the next chunk of bytes to write to the control stream,
// or herr.Idle if there is nothing left to emit. A ControlSender only
// ever has one thing to send: the preface byte followed by the local
// SETTINGS frame, once.
func (s *ControlSender) Send() ([]byte, error) {
	switch s.state {
	case controlSenderStateSettings:
		dst := append([]byte(nil), controlStreamType...)
		dst, err := frame.Encode(dst, frame.SettingsFrame{Settings: s.settings})
		if err != nil {
			s.state = controlSenderStateError
			return nil, err
		}
		s.state = controlSenderStateIdle
		return dst, nil
	case controlSenderStateIdle:
		return nil, herr.Idle
	default:
		return nil, newError(herr.KindStreamClosed, "control sender is closed")
	}
}
