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
	"github.com/stretchr/testify/require"

	"github.com/packetd/h3/herr"
)

func TestNewHeaderValid(t *testing.T) {
	h, err := NewHeader(":method", "GET")
	require.NoError(t, err)
	assert.Equal(t, "GET", h.Value)
}

func TestNewHeaderRejectsUppercase(t *testing.T) {
	_, err := NewHeader("Content-Type", "text/plain")
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.KindMalformedHeader))
}

func TestNewHeaderRejectsEmptyName(t *testing.T) {
	_, err := NewHeader("", "x")
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.KindMalformedHeader))
}

func TestHeaderValidate(t *testing.T) {
	assert.NoError(t, Header{Name: "content-length", Value: "0"}.Validate())
	assert.Error(t, Header{Name: "Content-Length", Value: "0"}.Validate())
}
