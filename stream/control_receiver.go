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
	"github.com/packetd/h3/event"
	"github.com/packetd/h3/frame"
	"github.com/packetd/h3/herr"
	"github.com/packetd/h3/internal/buffer"
)

type controlReceiverState int

const (
	controlReceiverStateSettings controlReceiverState = iota
	controlReceiverStateActive
	controlReceiverStateError
)

// ControlReceiver is the settings → active → error state machine
// decoding a connection's inbound control stream. Stripping the
// stream-type preface byte is the caller's responsibility, done once
// while classifying a freshly opened unidirectional stream; only frame
// bytes are ever pushed into q.
type ControlReceiver struct {
	role         Role
	state        controlReceiverState
	q            *buffer.Queue
	peerSettings frame.Settings
}

// NewControlReceiver builds a ControlReceiver for the given role; call
// Start before the first Recv.
func NewControlReceiver(role Role) *ControlReceiver {
	return &ControlReceiver{role: role}
}

// Start initializes the receiver's parse state.
func (r *ControlReceiver) Start() {
	r.state = controlReceiverStateSettings
	r.q = buffer.NewQueue()
}

// PeerSettings is populated once the first (mandatory) SETTINGS frame
// has been decoded; it is the zero Settings value beforehand.
func (r *ControlReceiver) PeerSettings() frame.Settings { return r.peerSettings }

// Close releases any bytes still buffered but not yet decoded.
func (r *ControlReceiver) Close() error {
	if r.q == nil {
		return nil
	}
	return r.q.Close()
}

// Recv appends newly arrived control-stream bytes and decodes as many
// complete frames as are available, delivering an event.H3 to handler
// for each SETTINGS and GOAWAY frame; the other accepted frames produce
// no event. It stops (without error) once the buffered bytes no longer
// contain a complete frame.
func (r *ControlReceiver) Recv(b *buffer.Buffer, handler func(event.H3)) error {
	if r.state == controlReceiverStateError {
		return newError(herr.KindStreamClosed, "control receiver is closed")
	}
	if b != nil {
		r.q.Push(b)
	}

	for {
		la := buffer.NewLookahead(r.q)
		f, err := frame.Decode(la)
		if err != nil {
			if herr.Is(err, herr.KindIncomplete) {
				return nil
			}
			r.state = controlReceiverStateError
			return err
		}
		if err := la.Commit(); err != nil {
			r.state = controlReceiverStateError
			return newError(herr.KindInternal, "control receiver: commit: %v", err)
		}

		ev, err := r.recvFrame(f)
		if err != nil {
			r.state = controlReceiverStateError
			return err
		}
		if ev != nil {
			handler(ev)
		}
	}
}

func (r *ControlReceiver) recvFrame(f frame.Frame) (event.H3, error) {
	typ := frame.TypeOf(f)

	if r.state == controlReceiverStateSettings {
		sf, ok := f.(frame.SettingsFrame)
		if !ok {
			return nil, newError(herr.KindMissingSettings, "control stream's first frame was %s, not SETTINGS", typ)
		}
		r.state = controlReceiverStateActive
		r.peerSettings = sf.Settings
		return event.SettingsH3{Settings: sf.Settings}, nil
	}

	switch v := f.(type) {
	case frame.SettingsFrame:
		return nil, newError(herr.KindUnexpectedFrame, "SETTINGS received twice on control stream")
	case frame.GoawayFrame:
		if r.role.rejectsOnControlStream(typ) {
			return nil, newError(herr.KindWrongStream, "%s role does not receive %s on its control stream", r.role, typ)
		}
		return event.GoawayH3{ID: v.ID}, nil
	case frame.CancelPushFrame:
		if r.role.rejectsOnControlStream(typ) {
			return nil, newError(herr.KindWrongStream, "%s role does not receive %s on its control stream", r.role, typ)
		}
		return nil, nil
	case frame.MaxPushIDFrame:
		if r.role.rejectsOnControlStream(typ) {
			return nil, newError(herr.KindWrongStream, "%s role does not receive %s on its control stream", r.role, typ)
		}
		return nil, nil
	case frame.PriorityFrame:
		// PRIORITY is parsed-and-ignored wherever it legally appears.
		return nil, nil
	case frame.UnknownFrame:
		return nil, nil
	default:
		return nil, newError(herr.KindUnexpectedFrame, "%s is not valid on the control stream", typ)
	}
}
