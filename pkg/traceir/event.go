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

// Event is owned transiently by an event notification (spec §3.2): it
// references its event class and packet, holds the header/stream-event-
// context/event-context/payload fields, and carries a map from clock class
// to cycle value (one entry per clock class referenced by a decoded
// integer field, per the clock-update algebra of spec §4.4.3).
type Event struct {
	object.Ref
	object.Freezable

	Class  *EventClass
	Packet *Packet

	Header             Field
	StreamEventContext Field
	EventContext       Field
	Payload            Field

	clockValues map[*ClockClass]uint64
}

// NewEvent builds an event for class within packet.
func NewEvent(class *EventClass, packet *Packet) *Event {
	e := &Event{Class: class, Packet: packet, clockValues: make(map[*ClockClass]uint64)}
	e.Ref.Init(func() {})
	return e
}

// SetClockValue records the current cycle value for clock class cc, per
// the clock-update algebra of spec §4.4.3.
func (e *Event) SetClockValue(cc *ClockClass, cycles uint64) {
	e.AssertHot("event")
	e.clockValues[cc] = cycles
}

// ClockValue returns the cycle value recorded for clock class cc.
func (e *Event) ClockValue(cc *ClockClass) (uint64, bool) {
	v, ok := e.clockValues[cc]
	return v, ok
}

// Freeze propagates to the header/context/payload fields and to the event's
// packet, per spec §3.1.
// Per spec §3.5, "a notification becomes frozen when first delivered" — the
// notification layer calls this, not the decoder.
func (e *Event) Freeze() {
	if e.IsFrozen() {
		return
	}
	object.FreezeAll(e.Header, e.StreamEventContext, e.EventContext, e.Payload)
	if e.Packet != nil {
		e.Packet.Freeze()
	}
	e.Freezable.Freeze()
}
