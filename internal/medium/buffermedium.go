// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package medium

import (
	"context"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

// BufferMedium serves bytes out of a trace already fully resident in
// memory. It never returns status.Again: every byte it will ever have is
// available from construction.
type BufferMedium struct {
	name string
	data []byte
	pos  int64
}

// NewBufferMedium wraps data as a medium named name (used only for
// diagnostics).
func NewBufferMedium(name string, data []byte) *BufferMedium {
	return &BufferMedium{name: name, data: data}
}

func (m *BufferMedium) RequestBytes(_ context.Context, n int) ([]byte, status.Status) {
	if m.pos >= int64(len(m.data)) {
		return nil, status.End
	}
	end := m.pos + int64(n)
	if end > int64(len(m.data)) {
		end = int64(len(m.data))
	}
	b := m.data[m.pos:end]
	m.pos = end
	return b, status.OK
}

func (m *BufferMedium) Seek(offset int64) status.Status {
	if offset < 0 || offset > int64(len(m.data)) {
		return status.Invalid
	}
	m.pos = offset
	return status.OK
}

func (m *BufferMedium) StreamInfo() (Info, status.Status) {
	return Info{Name: m.name}, status.OK
}
