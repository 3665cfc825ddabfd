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

// Package herr defines the error-kind taxonomy shared by the wire codecs,
// stream state machines, and connection multiplexer: every error that can
// cross a package boundary in this module carries a Kind a caller can
// switch on, instead of being matched by string or by a package-private
// sentinel.
package herr

import "github.com/pkg/errors"

// Kind classifies why a decode, a state transition, or an I/O call failed.
type Kind int

const (
	// KindIncomplete means more bytes are needed before the attempted
	// parse can make progress; the caller should retry once more data
	// has arrived, undoing nothing.
	KindIncomplete Kind = iota
	// KindMalformedFrame means the bytes present are self-inconsistent
	// (e.g. a declared payload_length that cannot hold a type's
	// mandatory fields).
	KindMalformedFrame
	// KindUnknownFrameType means a frame type this decoder does not
	// recognize was seen; recoverable by skipping its payload.
	KindUnknownFrameType
	// KindFrameTooLarge means a frame's declared payload_length exceeds
	// a configured limit.
	KindFrameTooLarge
	// KindQPACKDecompressionFailed means a QPACK instruction stream
	// could not be decoded: a bad prefix integer, a broken Huffman
	// sequence, or a static-table index out of range.
	KindQPACKDecompressionFailed
	// KindMalformedHeader means a decoded header field violates the
	// validity rules on header names/values (e.g. uppercase ASCII in a
	// name, an embedded NUL).
	KindMalformedHeader
	// KindVarintOverflow means a length-prefixed value exceeded 62
	// bits.
	KindVarintOverflow
	// KindUnexpectedFrame means a frame type arrived on a stream role
	// or in a state that forbids it.
	KindUnexpectedFrame
	// KindMissingSettings means a control stream sent a non-SETTINGS
	// frame as its first frame.
	KindMissingSettings
	// KindWrongStream means a frame type arrived on the wrong stream
	// role for this endpoint (e.g. a client's control receiver seeing
	// MAX_PUSH_ID, which only a client sends).
	KindWrongStream
	// KindStreamClosed means the operation targeted a stream that has
	// already reached its terminal state.
	KindStreamClosed
	// KindClosedCriticalStream means a control (or, for QPACK, an
	// encoder/decoder) stream was reset or finished; its connection
	// cannot continue.
	KindClosedCriticalStream
	// KindInvalidArgument means the caller passed a value the API
	// contract forbids (e.g. Body called on a request sender after Fin).
	KindInvalidArgument
	// KindInternal means a state invariant this package is responsible
	// for maintaining was violated; it indicates a bug rather than a
	// peer's misbehavior.
	KindInternal
	// KindNotImplemented means the caller asked for a code path this
	// implementation deliberately does not provide (e.g. dynamic-table
	// QPACK).
	KindNotImplemented
	// KindIdle means there is nothing to send right now; not an error
	// condition, used as recv()/send() result plumbing.
	KindIdle
	// KindDelegate means the event is not this layer's concern and
	// should be handed to the next one unchanged (e.g. an unknown frame
	// type on a stream that tolerates them).
	KindDelegate
)

func (k Kind) String() string {
	switch k {
	case KindIncomplete:
		return "incomplete"
	case KindMalformedFrame:
		return "malformed_frame"
	case KindUnknownFrameType:
		return "unknown_frame_type"
	case KindFrameTooLarge:
		return "frame_too_large"
	case KindQPACKDecompressionFailed:
		return "qpack_decompression_failed"
	case KindMalformedHeader:
		return "malformed_header"
	case KindVarintOverflow:
		return "varint_overflow"
	case KindUnexpectedFrame:
		return "unexpected_frame"
	case KindMissingSettings:
		return "missing_settings"
	case KindWrongStream:
		return "wrong_stream"
	case KindStreamClosed:
		return "stream_closed"
	case KindClosedCriticalStream:
		return "closed_critical_stream"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInternal:
		return "internal_error"
	case KindNotImplemented:
		return "not_implemented"
	case KindIdle:
		return "idle"
	case KindDelegate:
		return "delegate"
	default:
		return "unknown"
	}
}

// Error pairs a Kind with a formatted, stack-traced message. It is the
// one error type every package in this module returns across its public
// API.
type Error struct {
	kind Kind
	err  error
}

// New builds an Error of the given Kind, formatting format/args with
// github.com/pkg/errors so the error carries a stack trace.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, err: errors.Errorf(format, args...)}
}

func (e *Error) Error() string { return e.err.Error() }

// Unwrap exposes the underlying formatted error to errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Kind reports this error's classification.
func (e *Error) Kind() Kind { return e.kind }

// KindOf reports the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return 0, false
}

// Is reports whether err is (or wraps) an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Incomplete is a shared sentinel for the common "need more bytes" case;
// packages that need a distinguishable message still use New directly.
var Incomplete = New(KindIncomplete, "incomplete")

// Idle is a shared sentinel returned by send() methods when there is
// nothing queued to emit.
var Idle = New(KindIdle, "idle")

// Delegate is a shared sentinel returned by recv() methods when the
// caller should hand the event to the next layer unchanged.
var Delegate = New(KindDelegate, "delegate")
