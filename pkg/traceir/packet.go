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
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

// PrevPacketAvailability is the tri-state attribute spec §3.2 gives every
// packet, modeled as the three-way enum of original_source/include/
// babeltrace/trace-ir/packet.h rather than a bool+ok pair (SPEC_FULL.md §9).
type PrevPacketAvailability int

const (
	PrevPacketNone PrevPacketAvailability = iota
	PrevPacketAvailable
	PrevPacketNotAvailable
)

// Packet is owned by a stream; it holds header and context fields plus
// optional begin/end default-clock values (spec §3.2).
type Packet struct {
	object.Ref
	object.Freezable

	Stream *Stream

	Header  Field // packet header, from the trace class's field class
	Context Field // packet context, from the stream class's field class

	PrevAvailability PrevPacketAvailability
	PrevPacket       *Packet

	HasBeginClockValue bool
	BeginClockValue    uint64
	HasEndClockValue   bool
	EndClockValue      uint64

	// Carried-through packet properties (spec §6.1, SPEC_FULL.md §9).
	HasSeqNum          bool
	SeqNum             uint64
	HasEventsDiscarded bool
	EventsDiscarded    uint64

	// Sizes in bits, -1 if unknown (spec §4.4).
	PacketSizeBits  int64
	ContentSizeBits int64
	FileOffsetBits  int64
}

// reset clears a pooled packet's state before it is reused, per spec §4.1
// ("state reset, not destroyed").
func (p *Packet) reset(s *Stream) {
	*p = Packet{
		Stream:          s,
		PacketSizeBits:  -1,
		ContentSizeBits: -1,
	}
}

// Validate checks invariant 2 of spec §8 (content size <= packet size,
// packet size a multiple of 8) and reports the inconsistent-timestamps open
// question from SPEC_FULL.md §9 as a warning rather than an error.
func (p *Packet) Validate() status.Status {
	if p.PacketSizeBits >= 0 {
		if p.PacketSizeBits%8 != 0 {
			return status.Invalid
		}
		if p.ContentSizeBits > p.PacketSizeBits {
			return status.Invalid
		}
	}
	if p.HasBeginClockValue && p.HasEndClockValue && p.EndClockValue < p.BeginClockValue {
		return status.Warning
	}
	return status.OK
}

// Freeze propagates to the header and context fields, per spec §3.1.
func (p *Packet) Freeze() {
	if p.IsFrozen() {
		return
	}
	object.FreezeAll(p.Header, p.Context)
	p.Freezable.Freeze()
}
