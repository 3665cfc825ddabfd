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

// Package frame implements the HTTP/3 frame envelope (varint type,
// varint payload_length, payload) and the per-type payload codecs built
// on top of it. Decoding is restartable: it reads through a
// buffer.Lookahead, so a frame split across transport reads reports
// incomplete instead of corrupting the caller's real read cursor.
package frame

import (
	"github.com/packetd/h3/herr"
	"github.com/packetd/h3/internal/buffer"
	"github.com/packetd/h3/internal/varint"
)

func newError(kind herr.Kind, format string, args ...any) error {
	return herr.New(kind, "frame: "+format, args...)
}

// maxBufferedPayload bounds the payload size this decoder will
// materialize in one piece for frame types whose entire payload is
// buffered (everything except DATA, HEADERS, and the push-id prefix of
// PUSH_PROMISE). None of those frame types carry more than a handful of
// varints on the wire; a declared length past this is certainly
// malicious or corrupt, not merely large.
const maxBufferedPayload = 64 * 1024

// Encode appends the wire encoding of a frame whose entire payload is
// known upfront to dst. DataFrame, HeadersFrame, and PushPromiseFrame
// stream the bulk of their payload separately and so are not accepted
// here; use EncodeEnvelope for those.
func Encode(dst []byte, f Frame) ([]byte, error) {
	switch v := f.(type) {
	case PriorityFrame:
		return encodeSimple(dst, TypePriority, v.encode(nil))
	case CancelPushFrame:
		return encodeSimple(dst, TypeCancelPush, encodeVarint(v.PushID))
	case SettingsFrame:
		return encodeSimple(dst, TypeSettings, v.Settings.encode(nil))
	case GoawayFrame:
		return encodeSimple(dst, TypeGoaway, encodeVarint(v.ID))
	case MaxPushIDFrame:
		return encodeSimple(dst, TypeMaxPushID, encodeVarint(v.ID))
	case DuplicatePushFrame:
		return encodeSimple(dst, TypeDuplicatePush, encodeVarint(v.PushID))
	default:
		return nil, newError(herr.KindInvalidArgument, "%T has a separately-streamed payload; use EncodeEnvelope", f)
	}
}

// EncodeEnvelope appends just the type and payload_length varints of a
// frame whose payload the caller streams itself: DATA and HEADERS
// (entirely), and PUSH_PROMISE (the push id is part of length but is
// written by the caller as ordinary payload bytes too).
func EncodeEnvelope(dst []byte, t Type, length uint64) ([]byte, error) {
	dst, err := varint.Encode(dst, uint64(t))
	if err != nil {
		return dst, err
	}
	return varint.Encode(dst, length)
}

func encodeVarint(v uint64) []byte {
	b, _ := varint.Encode(nil, v)
	return b
}

func encodeSimple(dst []byte, t Type, payload []byte) ([]byte, error) {
	dst, err := EncodeEnvelope(dst, t, uint64(len(payload)))
	if err != nil {
		return dst, err
	}
	return append(dst, payload...), nil
}

// Decode attempts to read one frame from la. On success the caller
// commits by calling la.Commit(); on herr.KindIncomplete the caller
// should retry once more bytes have arrived, having changed nothing.
func Decode(la *buffer.Lookahead) (Frame, error) {
	rawType, err := varint.DecodeLookahead(la)
	if err != nil {
		return nil, err
	}
	length, err := varint.DecodeLookahead(la)
	if err != nil {
		return nil, err
	}
	typ := Type(rawType)

	switch typ {
	case TypeData:
		return DataFrame{Size: length}, nil

	case TypeHeaders:
		return HeadersFrame{Size: length}, nil

	case TypePushPromise:
		before := la.Consumed()
		pushID, err := varint.DecodeLookahead(la)
		if err != nil {
			return nil, err
		}
		used := uint64(la.Consumed() - before)
		if used > length {
			return nil, newError(herr.KindMalformedFrame, "push_promise payload_length %d too small for push id", length)
		}
		return PushPromiseFrame{PushID: pushID, Size: length - used}, nil

	case TypePriority, TypeCancelPush, TypeSettings, TypeGoaway, TypeMaxPushID, TypeDuplicatePush:
		if length > maxBufferedPayload {
			return nil, herr.New(herr.KindFrameTooLarge, "frame: %s payload_length %d exceeds limit", typ, length)
		}
		payload := la.Read(int(length))
		if payload == nil {
			return nil, herr.Incomplete
		}
		return decodeKnownPayload(typ, payload)

	default:
		if !la.Skip(int(length)) {
			return nil, herr.Incomplete
		}
		return UnknownFrame{Type: typ, Size: length}, nil
	}
}

func decodeKnownPayload(typ Type, payload []byte) (Frame, error) {
	switch typ {
	case TypePriority:
		pf, ok := decodePriority(payload)
		if !ok {
			return nil, newError(herr.KindMalformedFrame, "%s: malformed payload", typ)
		}
		return pf, nil

	case TypeCancelPush:
		id, ok := decodeSingleVarint(payload)
		if !ok {
			return nil, newError(herr.KindMalformedFrame, "%s: malformed payload", typ)
		}
		return CancelPushFrame{PushID: id}, nil

	case TypeSettings:
		s, err := decodeSettings(payload)
		if err != nil {
			return nil, newError(herr.KindMalformedFrame, "%s: %v", typ, err)
		}
		return SettingsFrame{Settings: s}, nil

	case TypeGoaway:
		id, ok := decodeSingleVarint(payload)
		if !ok {
			return nil, newError(herr.KindMalformedFrame, "%s: malformed payload", typ)
		}
		return GoawayFrame{ID: id}, nil

	case TypeMaxPushID:
		id, ok := decodeSingleVarint(payload)
		if !ok {
			return nil, newError(herr.KindMalformedFrame, "%s: malformed payload", typ)
		}
		return MaxPushIDFrame{ID: id}, nil

	case TypeDuplicatePush:
		id, ok := decodeSingleVarint(payload)
		if !ok {
			return nil, newError(herr.KindMalformedFrame, "%s: malformed payload", typ)
		}
		return DuplicatePushFrame{PushID: id}, nil

	default:
		panic("frame: decodeKnownPayload called with an unregistered type")
	}
}

// decodeSingleVarint decodes a frame whose entire payload is exactly one
// varint; it requires the varint to consume the whole payload exactly,
// rejecting a payload_length that declared more or fewer bytes than the
// varint actually needs.
func decodeSingleVarint(payload []byte) (uint64, bool) {
	v, n, err := varint.Decode(payload)
	if err != nil || n != len(payload) {
		return 0, false
	}
	return v, true
}

// decodePriority decodes a PRIORITY frame's payload: one byte packing
// the two element-type fields in its high nibble, two varints, and a
// trailing weight byte. It requires the four pieces to consume the
// payload exactly.
func decodePriority(payload []byte) (PriorityFrame, bool) {
	if len(payload) < 1 {
		return PriorityFrame{}, false
	}
	b := payload[0]
	payload = payload[1:]

	prioritizedID, n, err := varint.Decode(payload)
	if err != nil {
		return PriorityFrame{}, false
	}
	payload = payload[n:]

	dependencyID, n, err := varint.Decode(payload)
	if err != nil {
		return PriorityFrame{}, false
	}
	payload = payload[n:]

	if len(payload) != 1 {
		return PriorityFrame{}, false
	}

	return PriorityFrame{
		PrioritizedElementType: PriorityElementType(b >> 6),
		ElementDependencyType:  PriorityElementType((b >> 4) & 0x3),
		PrioritizedElementID:   prioritizedID,
		ElementDependencyID:    dependencyID,
		Weight:                 payload[0],
	}, true
}

// PeekType decodes only a frame's type, without committing la, for
// stream-type classification that needs to look past frames it does not
// itself recognize. A known type's payload is neither validated nor
// read; an unknown type's payload is skipped through la, so la ends at
// the start of the next frame.
func PeekType(la *buffer.Lookahead) (Type, bool, error) {
	rawType, err := varint.DecodeLookahead(la)
	if err != nil {
		return 0, false, err
	}
	length, err := varint.DecodeLookahead(la)
	if err != nil {
		return 0, false, err
	}
	typ := Type(rawType)
	known := typ == TypeData || typ == TypeHeaders || typ == TypePriority ||
		typ == TypeCancelPush || typ == TypeSettings || typ == TypePushPromise ||
		typ == TypeGoaway || typ == TypeMaxPushID || typ == TypeDuplicatePush
	if !known {
		if !la.Skip(int(length)) {
			return 0, false, herr.Incomplete
		}
	}
	return typ, known, nil
}
