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

package notification

import "github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"

// Pools holds the three per-graph object pools spec §3.4/§4.1 call out by
// name as dedicated to the high-frequency notification kinds: event,
// packet-begin, and packet-end. Stream-begin/stream-end are not pooled —
// they occur at most twice per stream lifetime, too rarely to matter.
type Pools struct {
	Event       *object.Pool[Notification]
	PacketBegin *object.Pool[Notification]
	PacketEnd   *object.Pool[Notification]
}

// NewPools builds a fresh set of pools, private to one graph (spec §5:
// "Notification pools are private to one graph and its iterators").
func NewPools() *Pools {
	newOf := func(kind Kind) *object.Pool[Notification] {
		return object.NewPool(
			func() *Notification { return &Notification{Kind: kind} },
			func(n *Notification) { n.reset(); n.Kind = kind },
		)
	}
	return &Pools{
		Event:       newOf(KindEvent),
		PacketBegin: newOf(KindPacketBegin),
		PacketEnd:   newOf(KindPacketEnd),
	}
}

// Acquire returns a reset notification of kind, from its dedicated pool
// when one exists, or freshly allocated for stream-begin/stream-end.
func (p *Pools) Acquire(kind Kind) *Notification {
	var pool *object.Pool[Notification]
	switch kind {
	case KindEvent:
		pool = p.Event
	case KindPacketBegin:
		pool = p.PacketBegin
	case KindPacketEnd:
		pool = p.PacketEnd
	default:
		n := &Notification{Kind: kind}
		n.Ref.Init(func() {})
		return n
	}

	n := pool.Acquire()
	n.Ref.Init(func() { pool.Release(n) })
	return n
}
