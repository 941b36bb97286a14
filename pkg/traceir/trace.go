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

package traceir

import (
	"errors"

	sf "github.com/wissance/stringFormatter"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
)

// streamKey uniquely identifies a stream within a trace: invariant 1 of
// spec §8 is "stream IDs are unique per (stream-class, id)", so the key
// combines both.
type streamKey struct {
	streamClass *StreamClass
	id          uint64
}

// Trace is a running instance of a [TraceClass]: the owner of every
// [Stream] created against it (spec §3.2's "Stream: owned by a trace").
// Creating the first stream freezes Class (spec §3.2: trace class "freezes
// when any stream is created").
type Trace struct {
	object.Ref

	Class *TraceClass

	streams map[streamKey]*Stream
}

// NewTrace instantiates a trace from class.
func NewTrace(class *TraceClass) *Trace {
	t := &Trace{Class: class, streams: make(map[streamKey]*Stream)}
	t.Ref.Init(func() {})
	return t
}

// CreateStream creates a new stream of streamClass with the given ID,
// enforcing invariant 1 (unique stream IDs per stream class) and freezing
// the trace class on first use.
func (t *Trace) CreateStream(streamClass *StreamClass, id uint64) (*Stream, error) {
	if t.Class.IsStatic() {
		return nil, errors.New("traceir: trace class is static, no further streams may be added")
	}

	key := streamKey{streamClass: streamClass, id: id}
	if _, exists := t.streams[key]; exists {
		return nil, errors.New(sf.Format(
			"traceir: stream id {0} already exists for stream class {1}", id, streamClass.Name))
	}

	t.Class.Freeze()

	s := newStream(t, streamClass, id)
	t.streams[key] = s
	return s, nil
}

// StreamByID looks up a previously created stream, the operation the
// medium's `borrow_stream` callback needs (spec §4.6).
func (t *Trace) StreamByID(streamClass *StreamClass, id uint64) (*Stream, bool) {
	s, ok := t.streams[streamKey{streamClass: streamClass, id: id}]
	return s, ok
}

// Streams returns every stream created on this trace so far, unordered.
func (t *Trace) Streams() []*Stream {
	out := make([]*Stream, 0, len(t.streams))
	for _, s := range t.streams {
		out = append(out, s)
	}
	return out
}
