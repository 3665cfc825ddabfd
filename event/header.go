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
	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"

	"github.com/packetd/h3/herr"
)

// Header is a decoded or to-be-encoded (name, value) field line. Name
// must be ASCII lowercase; NewHeader rejects anything else so a header
// never reaches the QPACK encoder in a form the decoder would refuse on
// the other end.
type Header struct {
	Name  string
	Value string
}

// NewHeader validates name and builds a Header. This is the only
// constructor: the zero value Header{} is never a validly encodable
// header, so callers should always go through here on the encode path.
func NewHeader(name, value string) (Header, error) {
	if err := validateName(name); err != nil {
		return Header{}, err
	}
	return Header{Name: name, Value: value}, nil
}

func validateName(name string) error {
	if name == "" {
		return herr.New(herr.KindMalformedHeader, "header name is empty")
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return herr.New(herr.KindMalformedHeader, "header name %q is not a valid field name", name)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			return herr.New(herr.KindMalformedHeader, "header name %q is not ASCII lowercase", name)
		}
	}
	return nil
}

// Validate reports whether h satisfies the lowercase-name invariant;
// used on the decode path, where a violation is reported rather than
// silently corrected.
func (h Header) Validate() error {
	return errors.Wrap(validateName(h.Name), "header")
}

func (h Header) String() string { return h.Name + ": " + h.Value }
