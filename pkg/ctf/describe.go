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

package ctf

import (
	"github.com/Jeffail/gabs/v2"
)

// Describe dumps the decoder's current position for diagnostics: state,
// packet offsets, and every clock class's running extrapolated value. The
// shape mirrors the teacher's structured debug-log payload construction
// (one gabs.Container, built up one sub-object at a time) rather than a
// one-shot struct literal, so new fields can be added without touching a
// struct tag list.
func (d *Decoder) Describe() *gabs.Container {
	out := gabs.New()

	out.Set(d.state.String(), "state")

	pkt, _ := out.Object("packet")
	pkt.Set(d.packetAt(), "at_bits")
	pkt.Set(d.packetSizeBits, "size_bits")
	pkt.Set(d.contentSizeBits, "content_size_bits")
	if d.hasLastEventHeaderAt {
		pkt.Set(d.lastEventHeaderAt, "last_event_header_at_bits")
	}

	if d.streamClass != nil {
		stream, _ := out.Object("stream")
		stream.Set(d.streamClass.Name, "class")
		if d.stream != nil {
			stream.Set(d.stream.ID, "id")
		}
	}

	if d.eventClass != nil {
		out.Set(d.eventClass.Name, "event_class")
	}

	clocks, _ := out.Object("clocks")
	for cc, v := range d.clocks.cur {
		clocks.Set(v, cc.Name)
	}

	return out
}
