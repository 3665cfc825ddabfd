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
	"github.com/packetd/h3/qpack"
)

type requestReceiverState int

const (
	requestReceiverStateHeaders requestReceiverState = iota
	requestReceiverStateBody
	requestReceiverStateFin
	requestReceiverStateError
)

// pendingKind tracks which raw-byte payload a request receiver is
// mid-way through collecting: frame.Decode hands back a frame whose
// payload bytes (DATA, HEADERS) are declared but not yet buffered, so
// the receiver has to separately wait for, and slice off, that many
// bytes before it can turn them into an event.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingHeaders
	pendingData
	pendingSkip // a PUSH_PROMISE header block this implementation does not surface
)

// RequestReceiver is the headers → body → fin → error state machine
// decoding one request (or response) stream's inbound bytes into
// event.H3 values.
type RequestReceiver struct {
	role  Role
	state requestReceiverState
	q     *buffer.Queue

	gotHeaders  bool
	finPending  bool
	pendingKind pendingKind
	pendingSize uint64
}

// NewRequestReceiver builds a RequestReceiver for the given role; call
// Start before the first Recv.
func NewRequestReceiver(role Role) *RequestReceiver {
	return &RequestReceiver{role: role}
}

// Start initializes the receiver's parse state.
func (r *RequestReceiver) Start() {
	r.state = requestReceiverStateHeaders
	r.q = buffer.NewQueue()
}

// Finished reports whether this receiver has delivered its terminal
// FinishedH3 event; the connection multiplexer removes a stream once
// true.
func (r *RequestReceiver) Finished() bool { return r.state == requestReceiverStateFin }

// Close releases any bytes still buffered but not yet decoded. It
// returns an error only if an Anchor is somehow still open, which never
// happens on the code paths that drive this type.
func (r *RequestReceiver) Close() error {
	if r.q == nil {
		return nil
	}
	return r.q.Close()
}

// Recv appends d's bytes (if any) and d's Fin flag, then decodes and
// delivers as many events as the buffered bytes make possible. It stops
// (without error) once what remains cannot form a complete frame.
func (r *RequestReceiver) Recv(d event.Data, handler func(event.H3)) error {
	if r.state == requestReceiverStateError {
		return newError(herr.KindStreamClosed, "request receiver is closed")
	}
	if d.Bytes != nil {
		r.q.Push(d.Bytes)
	}
	if d.Fin {
		r.finPending = true
	}

	if err := r.drain(handler); err != nil {
		r.state = requestReceiverStateError
		return err
	}

	if r.finPending && r.pendingKind == pendingNone && r.q.Len() == 0 && r.state != requestReceiverStateFin {
		r.state = requestReceiverStateFin
		handler(event.FinishedH3{})
	}
	return nil
}

func (r *RequestReceiver) drain(handler func(event.H3)) error {
	for {
		if r.pendingKind != pendingNone {
			if r.q.Len() < int(r.pendingSize) {
				return nil
			}
			buf, err := r.q.Slice(int(r.pendingSize))
			if err != nil {
				return newError(herr.KindInternal, "request receiver: slice: %v", err)
			}
			kind := r.pendingKind
			r.pendingKind = pendingNone
			if err := r.deliverPending(kind, buf, handler); err != nil {
				return err
			}
			continue
		}

		la := buffer.NewLookahead(r.q)
		f, err := frame.Decode(la)
		if err != nil {
			if herr.Is(err, herr.KindIncomplete) {
				return nil
			}
			return err
		}
		if err := la.Commit(); err != nil {
			return newError(herr.KindInternal, "request receiver: commit: %v", err)
		}
		if err := r.recvFrame(f); err != nil {
			return err
		}
	}
}

func (r *RequestReceiver) deliverPending(kind pendingKind, buf *buffer.Buffer, handler func(event.H3)) error {
	switch kind {
	case pendingData:
		handler(event.BodyH3{Bytes: buf})
	case pendingHeaders:
		fields, err := qpack.DecodeHeaderBlock(buf.Bytes())
		if err != nil {
			return err
		}
		for _, f := range fields {
			handler(event.HeaderH3{Header: event.Header{Name: f.Name, Value: f.Value}})
		}
	case pendingSkip:
		// discarded: this implementation does not originate or track
		// pushed streams, so a push promise's header block is read off
		// the wire (to keep the frame stream in sync) and dropped.
	}
	return nil
}

func (r *RequestReceiver) recvFrame(f frame.Frame) error {
	typ := frame.TypeOf(f)

	switch v := f.(type) {
	case frame.HeadersFrame:
		if r.state == requestReceiverStateFin {
			return newError(herr.KindUnexpectedFrame, "HEADERS after stream FIN")
		}
		r.gotHeaders = true
		r.state = requestReceiverStateBody
		r.pendingKind = pendingHeaders
		r.pendingSize = v.Size
		return nil

	case frame.DataFrame:
		if !r.gotHeaders {
			return newError(herr.KindUnexpectedFrame, "DATA before the mandatory HEADERS frame")
		}
		if r.state == requestReceiverStateFin {
			return newError(herr.KindUnexpectedFrame, "DATA after stream FIN")
		}
		r.pendingKind = pendingData
		r.pendingSize = v.Size
		return nil

	case frame.PriorityFrame:
		if r.gotHeaders || !r.role.acceptsPriorityBeforeHeaders() {
			return newError(herr.KindUnexpectedFrame, "PRIORITY is only valid before HEADERS, on a server's request receiver")
		}
		return nil

	case frame.PushPromiseFrame:
		if r.role.rejectsPushPromise() {
			return newError(herr.KindUnexpectedFrame, "%s role does not receive PUSH_PROMISE", r.role)
		}
		r.pendingKind = pendingSkip
		r.pendingSize = v.Size
		return nil

	case frame.UnknownFrame:
		return nil

	default:
		return newError(herr.KindUnexpectedFrame, "%s is not valid on a request stream", typ)
	}
}
