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

// Package notification implements the five-kind notification sum type that
// flows between graph components (spec §3.5) and the pools that keep the
// hot kinds (event, packet-begin, packet-end) cheap to emit and recycle.
package notification

import (
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/traceir"
)

// Kind discriminates the five notification kinds of spec §3.5. Consumers
// must treat any other value as an error, reserved for forward
// compatibility (spec §6.2).
type Kind int

const (
	KindStreamBegin Kind = iota
	KindPacketBegin
	KindEvent
	KindPacketEnd
	KindStreamEnd
)

func (k Kind) String() string {
	switch k {
	case KindStreamBegin:
		return "stream-begin"
	case KindPacketBegin:
		return "packet-begin"
	case KindEvent:
		return "event"
	case KindPacketEnd:
		return "packet-end"
	case KindStreamEnd:
		return "stream-end"
	default:
		return "unknown"
	}
}

// Notification is one message flowing through the graph (spec §3.5). Only
// the fields relevant to Kind are populated; a notification becomes frozen
// the first time it is delivered (spec §3.5), and freezing is the only
// mutation a delivered notification's consumer may legally trigger.
type Notification struct {
	object.Ref
	object.Freezable

	Kind Kind

	Stream *traceir.Stream // stream-begin, stream-end
	Packet *traceir.Packet // packet-begin, packet-end, event
	Event  *traceir.Event  // event

	HasDefaultClockValue bool
	DefaultClockValue    uint64
}

// Deliver freezes the notification, per spec §3.5: "A notification becomes
// frozen when first delivered." Idempotent, like every freeze.
func (n *Notification) Deliver() {
	n.Freeze()
}

// Freeze propagates into the event or packet the notification carries, per
// spec §3.1's transitive-freeze rule.
func (n *Notification) Freeze() {
	if n.IsFrozen() {
		return
	}
	switch n.Kind {
	case KindEvent:
		object.FreezeAll(n.Event)
	case KindPacketBegin, KindPacketEnd:
		object.FreezeAll(n.Packet)
	}
	n.Freezable.Freeze()
}

func (n *Notification) reset() {
	*n = Notification{}
}
