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

package common

const (
	// App is this module's short name.
	App = "h3"

	// Version is this module's version string. GetBuildInfo does not
	// report it; it reports the link-time buildVersion instead.
	Version = "v0.0.1"

	// ReadWriteBlockSize is the largest DATA frame payload
	// stream.RequestSender.Body emits: a larger body buffer is split into
	// several DATA frames of at most this many bytes each.
	ReadWriteBlockSize = 4096
)
