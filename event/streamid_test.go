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

package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamIDValid(t *testing.T) {
	assert.True(t, StreamID(0).Valid())
	assert.False(t, Unassigned.Valid())
}

func TestStreamIDClassification(t *testing.T) {
	assert.True(t, StreamID(0).IsClientInitiated())
	assert.True(t, StreamID(0).IsBidirectional())

	assert.False(t, StreamID(1).IsClientInitiated()) // server-initiated bidi
	assert.True(t, StreamID(1).IsBidirectional())

	assert.True(t, StreamID(2).IsClientInitiated())
	assert.False(t, StreamID(2).IsBidirectional()) // client-initiated unidi

	assert.False(t, StreamID(3).IsClientInitiated())
	assert.False(t, StreamID(3).IsBidirectional())
}
