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

// Package conn implements the connection multiplexer that sits between a
// QUIC transport and this module's per-stream state machines: it maps
// stream IDs to the control/request sender and receiver pairs in package
// stream, and gives the embedding transport two calls, Send and Recv,
// that drive every stream's wire bytes.
package conn

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	_ "go.uber.org/automaxprocs"

	"github.com/packetd/h3/common"
	"github.com/packetd/h3/confengine"
	"github.com/packetd/h3/event"
	"github.com/packetd/h3/frame"
	"github.com/packetd/h3/herr"
	"github.com/packetd/h3/internal/buffer"
	"github.com/packetd/h3/logger"
	"github.com/packetd/h3/stream"
)

func newError(kind herr.Kind, format string, args ...any) error {
	return herr.New(kind, "conn: "+format, args...)
}

// Connection multiplexes one QUIC connection's streams onto this
// module's control and request state machines. It is not safe for
// concurrent use: callers drive it from a single goroutine, the same
// way the embedding transport drives its own read/write loop.
type Connection struct {
	id   uuid.UUID
	role stream.Role

	controlSender   *stream.ControlSender
	controlReceiver *stream.ControlReceiver

	// controlSenderID is the stream ID this connection's own outbound
	// control stream was opened on, event.Unassigned until
	// BindLocalControlStream is called.
	controlSenderID event.StreamID
	// controlReceiverID is the peer's control stream ID, event.Unassigned
	// until BindPeerControlStream is called.
	controlReceiverID event.StreamID

	senders   map[event.StreamID]*stream.RequestSender
	receivers map[event.StreamID]*stream.RequestReceiver
	order     []event.StreamID // senders' stream IDs, kept sorted ascending

	// maxStreams caps how many request receivers this connection will
	// create concurrently; 0 means unlimited. Set via NewFromConfig's
	// common.Options tuning flag.
	maxStreams int

	onEvent func(id event.StreamID, ev event.H3)
}

// New builds a Connection for the given role, advertising local as the
// local endpoint's SETTINGS once the control stream starts sending.
func New(role stream.Role, local frame.Settings) *Connection {
	return &Connection{
		id:                uuid.New(),
		role:              role,
		controlSender:     stream.NewControlSender(local),
		controlReceiver:   stream.NewControlReceiver(role),
		controlSenderID:   event.Unassigned,
		controlReceiverID: event.Unassigned,
		senders:           make(map[event.StreamID]*stream.RequestSender),
		receivers:         make(map[event.StreamID]*stream.RequestReceiver),
	}
}

// NewFromConfig builds a Connection the way New does, but sources the
// locally advertised SETTINGS from c's "settings" section and the
// concurrent-request-stream cap from opts, instead of taking both as
// literal arguments.
func NewFromConfig(role stream.Role, c *confengine.Config, opts common.Options) (*Connection, error) {
	local, err := SettingsFromConfig(c)
	if err != nil {
		return nil, err
	}
	conn := New(role, local)
	conn.maxStreams = MaxConcurrentStreamsFromOptions(opts)
	return conn, nil
}

// ID returns this connection's diagnostic identifier, stable for its
// lifetime and suitable for correlating log lines across streams.
func (c *Connection) ID() uuid.UUID { return c.id }

func (c *Connection) String() string { return fmt.Sprintf("conn(%s,%s)", c.id, c.role) }

// SetOnEvent installs the handler invoked for every application-level
// event this connection produces: control-stream SETTINGS/GOAWAY, and
// every request stream's headers/body/fin/error.
func (c *Connection) SetOnEvent(fn func(id event.StreamID, ev event.H3)) {
	c.onEvent = fn
}

func (c *Connection) dispatch(id event.StreamID, ev event.H3) {
	if c.onEvent != nil {
		c.onEvent(id, ev)
	}
}

// BindLocalControlStream records which QUIC stream ID the embedding
// transport opened for this connection's own outbound control stream.
// Call it once, before the first Send.
func (c *Connection) BindLocalControlStream(id event.StreamID) { c.controlSenderID = id }

// BindPeerControlStream records which QUIC stream ID the peer opened as
// its control stream, and starts the control receiver's parse state.
// Call it once the transport's stream-type sniff identifies that
// stream, before the first Recv on it.
func (c *Connection) BindPeerControlStream(id event.StreamID) {
	c.controlReceiverID = id
	c.controlReceiver.Start()
}

// PeerSettings reports the peer's SETTINGS, the zero value before the
// peer's control stream has delivered one.
func (c *Connection) PeerSettings() frame.Settings { return c.controlReceiver.PeerSettings() }

// Request returns a handle on the RequestSender for stream id, creating
// one if this is the first call for id. A client calls this to
// originate a request; a server calls it to originate a response on a
// stream it is already receiving a request on.
func (c *Connection) Request(id event.StreamID) *stream.RequestSender { return c.sender(id) }

// Response is Request under a name matching the caller's role; both
// return the same kind of handle.
func (c *Connection) Response(id event.StreamID) *stream.RequestSender { return c.sender(id) }

func (c *Connection) sender(id event.StreamID) *stream.RequestSender {
	if s, ok := c.senders[id]; ok {
		return s
	}
	s := stream.NewRequestSender()
	c.senders[id] = s
	c.insertOrder(id)
	return s
}

func (c *Connection) insertOrder(id event.StreamID) {
	i := sort.Search(len(c.order), func(i int) bool { return c.order[i] >= id })
	c.order = append(c.order, 0)
	copy(c.order[i+1:], c.order[i:])
	c.order[i] = id
}

func (c *Connection) receiver(id event.StreamID) (*stream.RequestReceiver, error) {
	if r, ok := c.receivers[id]; ok {
		return r, nil
	}
	if c.maxStreams > 0 && len(c.receivers) >= c.maxStreams {
		logger.Warnf("%s: refusing stream %s, %d concurrent request streams already tracked", c, id, c.maxStreams)
		return nil, newError(herr.KindInvalidArgument, "refusing stream %s: %d concurrent request streams already tracked", id, c.maxStreams)
	}
	r := stream.NewRequestReceiver(c.role)
	r.Start()
	c.receivers[id] = r
	return r, nil
}

// pruneSenders drops every sender that has emitted its final event,
// per stream's removal rule: a finished stream stays reachable for the
// Send call that drained it, then disappears before the next cycle.
func (c *Connection) pruneSenders() {
	kept := c.order[:0]
	for _, id := range c.order {
		if s := c.senders[id]; s != nil && s.Finished() {
			delete(c.senders, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
}

// Send returns the next QUIC data event this connection has queued to
// write, in deterministic order: the local control stream first (its
// SETTINGS preface, once), then each request stream's sender in
// ascending stream-ID order, the first one with anything to emit
// winning. It reports herr.Idle once nothing is queued anywhere.
func (c *Connection) Send() (event.Data, error) {
	c.pruneSenders()

	if c.controlSenderID.Valid() {
		out, err := c.controlSender.Send()
		switch {
		case err == nil:
			return event.Data{StreamID: c.controlSenderID, Bytes: buffer.New(out)}, nil
		case !herr.Is(err, herr.KindIdle):
			return event.Data{}, err
		}
	}

	for _, id := range c.order {
		s := c.senders[id]
		if s == nil {
			continue
		}
		ev, err := s.Send(id)
		switch {
		case err == nil:
			return ev, nil
		case !herr.Is(err, herr.KindIdle):
			return event.Data{}, err
		}
	}

	return event.Data{}, herr.Idle
}

// Recv feeds one transport-level event into the matching stream state
// machine and forwards every application event it produces to the
// handler installed via SetOnEvent. A Data event addressed to the
// bound peer control stream drives the control receiver; any other
// Data event drives (creating if needed) that stream ID's request
// receiver. An Error event tears down and forgets that stream.
func (c *Connection) Recv(ev event.Event) error {
	switch v := ev.(type) {
	case event.Data:
		return c.recvData(v)
	case event.Error:
		return c.recvError(v)
	default:
		return newError(herr.KindInvalidArgument, "unknown event type %T", ev)
	}
}

func (c *Connection) recvData(d event.Data) error {
	if c.controlReceiverID.Valid() && d.StreamID == c.controlReceiverID {
		return c.controlReceiver.Recv(d.Bytes, func(h3 event.H3) { c.dispatch(d.StreamID, h3) })
	}

	r, err := c.receiver(d.StreamID)
	if err != nil {
		return err
	}
	if err := r.Recv(d, func(h3 event.H3) { c.dispatch(d.StreamID, h3) }); err != nil {
		return err
	}
	if r.Finished() {
		delete(c.receivers, d.StreamID)
	}
	return nil
}

func (c *Connection) recvError(e event.Error) error {
	delete(c.receivers, e.StreamID)
	delete(c.senders, e.StreamID)
	for i, id := range c.order {
		if id == e.StreamID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	logger.Warnf("%s: stream %s reset with code %d, forgetting it", c, e.StreamID, e.Code)
	c.dispatch(e.StreamID, event.ErrorH3{
		Err: newError(herr.KindClosedCriticalStream, "stream %s reset with code %d", e.StreamID, e.Code),
	})
	return nil
}

// Close tears down every stream this connection still tracks, releasing
// their buffered-but-undecoded bytes, and returns the aggregated error
// (nil if every stream closed cleanly).
func (c *Connection) Close() error {
	var errs *multierror.Error
	if c.controlReceiverID.Valid() {
		if err := c.controlReceiver.Close(); err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, "control stream"))
		}
	}
	for id, r := range c.receivers {
		if err := r.Close(); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "stream %s", id))
		}
	}
	c.receivers = make(map[event.StreamID]*stream.RequestReceiver)
	c.senders = make(map[event.StreamID]*stream.RequestSender)
	c.order = nil

	err := errs.ErrorOrNil()
	if err != nil {
		logger.Errorf("%s: close: %v", c, err)
	} else {
		logger.Debugf("%s: closed", c)
	}
	return err
}
