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

// Package stream implements the per-stream state machines: a control
// sender/receiver pair per connection and a request sender/receiver pair
// per request stream. Every type here is a pure, synchronous state
// machine driven by explicit Send/Recv calls; none of them block, spawn
// goroutines, or retain a reference to the transport.
package stream

import "github.com/packetd/h3/frame"

// Role distinguishes which side of a connection a stream's state
// machines run as. The HTTP/3 control-stream and request-stream rules
// differ by role in a handful of places (which frame types are valid to
// receive); rather than subclassing each state machine per role, as
// there is no inheritance in Go, the difference is captured as a value
// the shared state machine code consults.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// rejectsOnControlStream reports whether a control receiver running as
// r must refuse the given frame type with wrong_stream: a client never
// legitimately receives MAX_PUSH_ID on its control stream (only a
// client ever sends MAX_PUSH_ID, to its server), and a server never
// legitimately receives GOAWAY or CANCEL_PUSH (only a server ever sends
// either, to its client).
func (r Role) rejectsOnControlStream(t frame.Type) bool {
	switch r {
	case RoleClient:
		return t == frame.TypeMaxPushID
	case RoleServer:
		return t == frame.TypeGoaway || t == frame.TypeCancelPush
	default:
		return false
	}
}

// acceptsPriorityBeforeHeaders reports whether r's request receiver may
// see a PRIORITY frame ahead of the mandatory HEADERS frame: only a
// server-side request receiver does, since only a client prioritizes a
// request it is about to send.
func (r Role) acceptsPriorityBeforeHeaders() bool { return r == RoleServer }

// rejectsPushPromise reports whether r's request receiver must refuse a
// PUSH_PROMISE frame outright: a server never receives one (only a
// server ever sends push promises, to its client).
func (r Role) rejectsPushPromise() bool { return r == RoleServer }
