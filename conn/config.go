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

package conn

import (
	"github.com/mitchellh/mapstructure"

	"github.com/packetd/h3/common"
	"github.com/packetd/h3/confengine"
	"github.com/packetd/h3/frame"
	"github.com/packetd/h3/herr"
)

// settingsConfig is the shape of a connection's "settings" config
// section: the four known SETTINGS values this implementation
// advertises, plus a raw override map an interop test harness uses to
// make the local endpoint additionally advertise setting identifiers
// this implementation otherwise never emits, to exercise a peer's
// unknown-identifier handling.
type settingsConfig struct {
	MaxHeaderListSize     uint64         `config:"maxHeaderListSize"`
	NumPlaceholders       uint64         `config:"numPlaceholders"`
	QPACKMaxTableCapacity uint64         `config:"qpackMaxTableCapacity"`
	QPACKBlockedStreams   uint64         `config:"qpackBlockedStreams"`
	UnknownOverrides      map[string]any `config:"unknownOverrides"`
}

// SettingsFromConfig unpacks a "settings" child section of c into the
// frame.Settings this endpoint should advertise on its control stream.
func SettingsFromConfig(c *confengine.Config) (frame.Settings, error) {
	var sc settingsConfig
	if c.Has("settings") {
		if err := c.UnpackChild("settings", &sc); err != nil {
			return frame.Settings{}, newError(herr.KindInvalidArgument, "unpack settings config: %v", err)
		}
	}

	unknown, err := decodeUnknownSettings(sc.UnknownOverrides)
	if err != nil {
		return frame.Settings{}, err
	}

	return frame.Settings{
		MaxHeaderListSize:     sc.MaxHeaderListSize,
		NumPlaceholders:       sc.NumPlaceholders,
		QPACKMaxTableCapacity: sc.QPACKMaxTableCapacity,
		QPACKBlockedStreams:   sc.QPACKBlockedStreams,
		Unknown:               unknown,
	}, nil
}

// decodeUnknownSettings converts a YAML-sourced map[string]any (string
// keys, since YAML object keys are always strings) into the
// map[uint64]uint64 frame.Settings.Unknown expects, via mapstructure's
// weakly-typed key/value conversion rather than hand-rolled strconv
// parsing of every entry.
func decodeUnknownSettings(raw map[string]any) (map[uint64]uint64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[uint64]uint64, len(raw))
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return out, nil
}

// MaxConcurrentStreamsFromOptions reads the "max_concurrent_streams" tuning
// flag a test harness may set via common.Options (0 means unlimited, the
// zero value when the key is absent).
func MaxConcurrentStreamsFromOptions(opts common.Options) int {
	n, err := opts.GetInt("max_concurrent_streams")
	if err != nil {
		return 0
	}
	return n
}
