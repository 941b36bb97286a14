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

// Package medium implements the byte source contract the CTF decoder pulls
// from (spec §4.1, §6.1): request_bytes, seek, and get_stream_info. Two
// implementations are provided — BufferMedium for a trace already fully in
// memory, and FileMedium for a trace file that may still be growing on
// disk, tailed the way the sibling pcap-fsnotify module tails a capture
// file (fsnotify + flock + bounded retry).
package medium

import (
	"context"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

// Info describes the stream a medium serves, enough for the CTF decoder to
// log and to pick the right trace/stream class on reconnection.
type Info struct {
	Name string
}

// Medium is the byte source contract every CTF decoder pulls from.
// RequestBytes never blocks: it returns as many bytes as are currently
// available, up to n, or status.Again if none are, or status.End once the
// medium is exhausted and will never produce more (spec §4.4.4).
type Medium interface {
	RequestBytes(ctx context.Context, n int) ([]byte, status.Status)
	Seek(offset int64) status.Status
	StreamInfo() (Info, status.Status)
}
