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

import "github.com/packetd/h3/internal/varint"

// Type identifies an HTTP/3 frame's wire type. Values are bit-exact with
// the HTTP/3 draft frame registry.
type Type uint64

const (
	TypeData          Type = 0x0
	TypeHeaders       Type = 0x1
	TypePriority      Type = 0x2
	TypeCancelPush    Type = 0x3
	TypeSettings      Type = 0x4
	TypePushPromise   Type = 0x5
	TypeGoaway        Type = 0x6
	TypeMaxPushID     Type = 0xd
	TypeDuplicatePush Type = 0xe
)

func (t Type) String() string {
	switch t {
	case TypeData:
		return "DATA"
	case TypeHeaders:
		return "HEADERS"
	case TypePriority:
		return "PRIORITY"
	case TypeCancelPush:
		return "CANCEL_PUSH"
	case TypeSettings:
		return "SETTINGS"
	case TypePushPromise:
		return "PUSH_PROMISE"
	case TypeGoaway:
		return "GOAWAY"
	case TypeMaxPushID:
		return "MAX_PUSH_ID"
	case TypeDuplicatePush:
		return "DUPLICATE_PUSH"
	default:
		return "UNKNOWN"
	}
}

// Frame is the tagged union of everything the frame codec can decode. It
// is a marker interface rather than a struct-with-optional-fields, so
// callers branch on the concrete variants with a type switch; Go does
// not check such a switch for exhaustiveness.
type Frame interface {
	frameType() Type
}

// DataFrame's payload bytes are streamed separately by the stream state
// machine as body events; Size is the declared payload_length.
type DataFrame struct {
	Size uint64
}

func (DataFrame) frameType() Type { return TypeData }

// HeadersFrame's payload bytes are streamed separately into the QPACK
// decoder; Size is the declared payload_length.
type HeadersFrame struct {
	Size uint64
}

func (HeadersFrame) frameType() Type { return TypeHeaders }

// PriorityElementType identifies what a PRIORITY frame's prioritized
// element or its dependency refers to. The same four codes are reused
// for both fields with different meanings: as a prioritized element,
// 0x3 means "the current stream"; as a dependency, 0x3 means "the root
// of the tree".
type PriorityElementType uint8

const (
	PriorityElementRequestStream PriorityElementType = 0x0
	PriorityElementPushStream    PriorityElementType = 0x1
	PriorityElementPlaceholder   PriorityElementType = 0x2
	PriorityElementRootOrCurrent PriorityElementType = 0x3
)

// PriorityFrame is decoded in full but parsed-and-ignored: this
// implementation does not schedule streams by priority, so nothing in
// stream's request receiver acts on these fields once decoded.
type PriorityFrame struct {
	PrioritizedElementType PriorityElementType
	ElementDependencyType  PriorityElementType
	PrioritizedElementID   uint64
	ElementDependencyID    uint64
	Weight                 uint8
}

func (PriorityFrame) frameType() Type { return TypePriority }

// encode appends p's payload (not the frame envelope) to dst.
func (p PriorityFrame) encode(dst []byte) []byte {
	b := byte(p.PrioritizedElementType<<6) | byte(p.ElementDependencyType<<4)
	dst = append(dst, b)
	dst, _ = varint.Encode(dst, p.PrioritizedElementID)
	dst, _ = varint.Encode(dst, p.ElementDependencyID)
	return append(dst, p.Weight)
}

// CancelPushFrame asks the peer to stop processing a server push.
type CancelPushFrame struct {
	PushID uint64
}

func (CancelPushFrame) frameType() Type { return TypeCancelPush }

// SettingsFrame carries the sender's advertised Settings.
type SettingsFrame struct {
	Settings Settings
}

func (SettingsFrame) frameType() Type { return TypeSettings }

// PushPromiseFrame announces a server push; Size is the declared length
// of the QPACK-encoded header block that follows the push ID.
type PushPromiseFrame struct {
	PushID uint64
	Size   uint64
}

func (PushPromiseFrame) frameType() Type { return TypePushPromise }

// GoawayFrame tells the peer the highest stream or push ID the sender
// will continue to process.
type GoawayFrame struct {
	ID uint64
}

func (GoawayFrame) frameType() Type { return TypeGoaway }

// MaxPushIDFrame raises the largest push ID the client permits the
// server to use.
type MaxPushIDFrame struct {
	ID uint64
}

func (MaxPushIDFrame) frameType() Type { return TypeMaxPushID }

// DuplicatePushFrame tells a client to treat an already-promised push as
// satisfying a later request too.
type DuplicatePushFrame struct {
	PushID uint64
}

func (DuplicatePushFrame) frameType() Type { return TypeDuplicatePush }

// UnknownFrame represents a frame type this decoder does not recognize.
// Its payload has already been skipped; the stream machine should
// delegate (ignore and continue).
type UnknownFrame struct {
	Type Type
	Size uint64
}

func (f UnknownFrame) frameType() Type { return f.Type }

// TypeOf reports f's wire Type, useful for logging and tests without a
// full type switch.
func TypeOf(f Frame) Type { return f.frameType() }
