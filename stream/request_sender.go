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
	"github.com/packetd/h3/common"
	"github.com/packetd/h3/event"
	"github.com/packetd/h3/frame"
	"github.com/packetd/h3/herr"
	"github.com/packetd/h3/internal/buffer"
	"github.com/packetd/h3/qpack"
)

type requestSenderState int

const (
	requestSenderStateHeaders requestSenderState = iota
	requestSenderStateBody
	requestSenderStateFin
	requestSenderStateError
)

// RequestSender is the headers → body → fin → error state machine
// originating one request (or response) stream's output. The caller
// stages a header block and any number of body buffers, marks Fin, and
// drains the result one QUIC data event at a time via Send.
type RequestSender struct {
	state   requestSenderState
	fields  []qpack.HeaderField
	pending [][]byte
	sentFin bool
}

// NewRequestSender builds a RequestSender in the headers state.
func NewRequestSender() *RequestSender {
	return &RequestSender{state: requestSenderStateHeaders}
}

// Header stages one header field. Valid only before the first Body/Fin
// call, matching the "one mandatory header block" invariant: a request
// sender only ever writes a single HEADERS frame's worth of fields, not
// an independent frame per call.
func (s *RequestSender) Header(h event.Header) error {
	if s.state != requestSenderStateHeaders {
		return newError(herr.KindInvalidArgument, "Header called outside the headers state")
	}
	s.fields = append(s.fields, qpack.HeaderField{Name: h.Name, Value: h.Value})
	return nil
}

// Body queues p to be emitted as one or more DATA frames, each no larger
// than common.ReadWriteBlockSize, so one oversized call from the
// application never forces a single huge frame onto the wire. The first
// call flushes the staged header block as a HEADERS frame first.
func (s *RequestSender) Body(p []byte) error {
	switch s.state {
	case requestSenderStateHeaders:
		if err := s.flushHeaders(); err != nil {
			return err
		}
		s.state = requestSenderStateBody
	case requestSenderStateBody:
	default:
		return newError(herr.KindInvalidArgument, "Body called outside the headers/body state")
	}

	if len(p) == 0 {
		return s.queueDataChunk(nil)
	}
	for len(p) > 0 {
		n := len(p)
		if n > common.ReadWriteBlockSize {
			n = common.ReadWriteBlockSize
		}
		if err := s.queueDataChunk(p[:n]); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func (s *RequestSender) queueDataChunk(p []byte) error {
	dst, err := frame.EncodeEnvelope(nil, frame.TypeData, uint64(len(p)))
	if err != nil {
		s.state = requestSenderStateError
		return err
	}
	dst = append(dst, p...)
	s.pending = append(s.pending, dst)
	return nil
}

// Fin marks that no further body buffers will be queued. It is
// idempotent: a second call is a no-op rather than an error, so callers
// that always call Fin on stream teardown don't need to track whether
// they already did.
func (s *RequestSender) Fin() error {
	switch s.state {
	case requestSenderStateHeaders:
		if err := s.flushHeaders(); err != nil {
			return err
		}
	case requestSenderStateBody:
	case requestSenderStateFin:
		return nil
	default:
		return newError(herr.KindInvalidArgument, "Fin called outside the headers/body state")
	}
	s.state = requestSenderStateFin
	return nil
}

func (s *RequestSender) flushHeaders() error {
	block := qpack.EncodeHeaderBlock(nil, s.fields)
	dst, err := frame.EncodeEnvelope(nil, frame.TypeHeaders, uint64(len(block)))
	if err != nil {
		s.state = requestSenderStateError
		return err
	}
	dst = append(dst, block...)
	s.pending = append(s.pending, dst)
	return nil
}

// Send returns at most one QUIC data event per call: the next queued
// chunk (HEADERS, then each DATA frame in order), with Fin set on the
// last one once the caller has called Fin and nothing more is queued
// behind it. It reports herr.Idle once fully drained.
func (s *RequestSender) Send(id event.StreamID) (event.Data, error) {
	if s.state == requestSenderStateError {
		return event.Data{}, newError(herr.KindStreamClosed, "request sender is closed")
	}

	if len(s.pending) > 0 {
		chunk := s.pending[0]
		s.pending = s.pending[1:]
		fin := s.state == requestSenderStateFin && len(s.pending) == 0
		if fin {
			s.sentFin = true
		}
		return event.Data{StreamID: id, Fin: fin, Bytes: buffer.New(chunk)}, nil
	}

	return event.Data{}, herr.Idle
}

// Finished reports whether this sender has emitted its final, Fin-bit
// data event; the connection multiplexer removes a stream once true.
func (s *RequestSender) Finished() bool { return s.sentFin }
