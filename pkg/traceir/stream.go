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
)

// Stream is owned by a [Trace], belongs to one [StreamClass], and has an ID
// unique within the (stream-class, id) pair (spec §3.2, invariant 1).
type Stream struct {
	object.Ref

	Parent *Trace
	Class  *StreamClass
	ID     uint64

	packets *object.Pool[Packet]

	prevPacket    *Packet
	prevAvailable PrevPacketAvailability
}

func newStream(parent *Trace, class *StreamClass, id uint64) *Stream {
	s := &Stream{
		Parent:        parent,
		Class:         class,
		ID:            id,
		prevAvailable: PrevPacketNone,
	}
	s.Ref.Init(func() {})
	s.packets = object.NewPool(
		func() *Packet { return &Packet{Stream: s} },
		func(p *Packet) { p.reset(s) },
	)
	return s
}

// CreatePacket acquires a packet from this stream's pool, attaches the
// current previous-packet availability/reference (spec §3.2), and returns
// it. The caller owns the returned packet until it is released (its
// reference count reaches zero, returning it to the pool).
func (s *Stream) CreatePacket() *Packet {
	p := s.packets.Acquire()
	p.PrevAvailability = s.prevAvailable
	p.PrevPacket = s.prevPacket
	p.Ref.Init(func() { s.packets.Release(p) })
	return p
}

// AdvancePacket records p as the new previous packet for the next
// CreatePacket call, per the packet-end transition of spec §4.4.2
// ("move current packet to previous packet").
func (s *Stream) AdvancePacket(p *Packet) {
	s.prevPacket = p
	s.prevAvailable = PrevPacketAvailable
}
