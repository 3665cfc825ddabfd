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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetd/h3/event"
	"github.com/packetd/h3/frame"
	"github.com/packetd/h3/herr"
	"github.com/packetd/h3/internal/buffer"
)

func TestControlSenderEmitsPrefaceThenSettingsThenIdle(t *testing.T) {
	s := NewControlSender(frame.Settings{MaxHeaderListSize: 16384})

	out, err := s.Send()
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), out[0])

	_, err = s.Send()
	assert.True(t, herr.Is(err, herr.KindIdle))
}

func TestControlReceiverFirstFrameMustBeSettings(t *testing.T) {
	r := NewControlReceiver(RoleClient)
	r.Start()

	dst, err := frame.Encode(nil, frame.GoawayFrame{ID: 1})
	require.NoError(t, err)

	var got []event.H3
	err = r.Recv(buffer.New(dst), func(ev event.H3) { got = append(got, ev) })
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.KindMissingSettings))
}

func TestControlReceiverSettingsThenGoaway(t *testing.T) {
	r := NewControlReceiver(RoleClient)
	r.Start()

	var dst []byte
	dst, err := frame.Encode(dst, frame.SettingsFrame{Settings: frame.Settings{MaxHeaderListSize: 100}})
	require.NoError(t, err)
	dst2, err := frame.Encode(nil, frame.GoawayFrame{ID: 7})
	require.NoError(t, err)
	dst = append(dst, dst2...)

	var got []event.H3
	require.NoError(t, r.Recv(buffer.New(dst), func(ev event.H3) { got = append(got, ev) }))

	require.Len(t, got, 2)
	settings, ok := got[0].(event.SettingsH3)
	require.True(t, ok)
	assert.Equal(t, uint64(100), settings.Settings.MaxHeaderListSize)

	goaway, ok := got[1].(event.GoawayH3)
	require.True(t, ok)
	assert.Equal(t, uint64(7), goaway.ID)
}

func TestControlReceiverRoleRejectsMaxPushIDOnClient(t *testing.T) {
	r := NewControlReceiver(RoleClient)
	r.Start()

	var dst []byte
	dst, err := frame.Encode(dst, frame.SettingsFrame{})
	require.NoError(t, err)
	rest, err := frame.Encode(nil, frame.MaxPushIDFrame{ID: 5})
	require.NoError(t, err)
	dst = append(dst, rest...)

	err = r.Recv(buffer.New(dst), func(event.H3) {})
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.KindWrongStream))
}

func TestControlReceiverRoleRejectsGoawayOnServer(t *testing.T) {
	r := NewControlReceiver(RoleServer)
	r.Start()

	var dst []byte
	dst, err := frame.Encode(dst, frame.SettingsFrame{})
	require.NoError(t, err)
	rest, err := frame.Encode(nil, frame.GoawayFrame{ID: 1})
	require.NoError(t, err)
	dst = append(dst, rest...)

	err = r.Recv(buffer.New(dst), func(event.H3) {})
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.KindWrongStream))
}

func TestControlReceiverSettingsTwiceIsUnexpected(t *testing.T) {
	r := NewControlReceiver(RoleClient)
	r.Start()

	first, err := frame.Encode(nil, frame.SettingsFrame{})
	require.NoError(t, err)
	second, err := frame.Encode(nil, frame.SettingsFrame{})
	require.NoError(t, err)

	err = r.Recv(buffer.New(append(first, second...)), func(event.H3) {})
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.KindUnexpectedFrame))
}
