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

package herr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindUnexpectedFrame, "frame %d on control stream", 7)
	k, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindUnexpectedFrame, k)
	assert.True(t, Is(err, KindUnexpectedFrame))
	assert.False(t, Is(err, KindMalformedFrame))
}

func TestKindOfPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	assert.False(t, ok)
}

func TestSharedSentinels(t *testing.T) {
	assert.True(t, Is(Incomplete, KindIncomplete))
	assert.True(t, Is(Idle, KindIdle))
	assert.True(t, Is(Delegate, KindDelegate))
}
