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
	"sync/atomic"

	"github.com/zhangyunhao116/skipmap"

	sf "github.com/wissance/stringFormatter"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
)

// StreamClass groups event classes sharing a packet layout and default
// clock (spec §3.2). Event classes are kept both in decode-registration
// order (EventClasses) and in an ID-ordered index (for O(log n) lookup by
// ID during decode and deterministic iteration during diagnostics),
// grounded on the teacher's skipmap-backed per-flow registries in
// flow_mutex.go.
type StreamClass struct {
	object.Ref
	object.Freezable

	Parent *TraceClass
	Name   string

	PacketContextFieldClass      FieldClass
	EventHeaderFieldClass        FieldClass
	EventCommonContextFieldClass FieldClass
	DefaultClockClass            *ClockClass

	AssignsAutomaticEventClassID bool
	AssignsAutomaticStreamID     bool

	EventClasses []*EventClass

	eventClassesByID *skipmap.Uint64Map[*EventClass]
	nextAutoEventID  atomic.Uint64
	nextAutoStreamID atomic.Uint64
}

// NewStreamClass builds a stream class owned by parent.
func NewStreamClass(parent *TraceClass, name string) *StreamClass {
	sc := &StreamClass{
		Parent:           parent,
		Name:             name,
		eventClassesByID: skipmap.NewUint64[*EventClass](),
	}
	sc.Ref.Init(func() {})
	return sc
}

// SetPacketContextFieldClass sets the per-packet context field class.
func (sc *StreamClass) SetPacketContextFieldClass(fc FieldClass) {
	sc.AssertHot("stream class")
	sc.PacketContextFieldClass = fc
}

// SetEventHeaderFieldClass sets the per-event header field class.
func (sc *StreamClass) SetEventHeaderFieldClass(fc FieldClass) {
	sc.AssertHot("stream class")
	sc.EventHeaderFieldClass = fc
}

// SetEventCommonContextFieldClass sets the per-event common-context field
// class, shared by every event class in this stream class.
func (sc *StreamClass) SetEventCommonContextFieldClass(fc FieldClass) {
	sc.AssertHot("stream class")
	sc.EventCommonContextFieldClass = fc
}

// SetDefaultClockClass sets the stream class's default clock class.
func (sc *StreamClass) SetDefaultClockClass(cc *ClockClass) {
	sc.AssertHot("stream class")
	sc.DefaultClockClass = cc
}

// AddEventClass registers ec, enforcing invariant 2 of spec §3.3: event
// class IDs must be unique within a stream class. If
// AssignsAutomaticEventClassID is set and ec.ID is zero, the stream class's
// next automatic ID (a counter counting 0, 1, 2, ...) is assigned instead;
// an automatic ID that collides with an explicit one is rejected like any
// duplicate (SPEC_FULL.md §9, grounded on
// original_source/lib/trace-ir/event-class.c's id-assignment path).
func (sc *StreamClass) AddEventClass(ec *EventClass) error {
	sc.AssertHot("stream class")

	if ec.ID == 0 && sc.AssignsAutomaticEventClassID {
		ec.ID = sc.nextAutoEventID.Add(1) - 1
	}

	if _, exists := sc.eventClassesByID.Load(ec.ID); exists {
		return errors.New(sf.Format("traceir: event class id {0} already exists in stream class {1}", ec.ID, sc.Name))
	}

	ec.Parent = sc
	sc.eventClassesByID.Store(ec.ID, ec)
	sc.EventClasses = append(sc.EventClasses, ec)
	return nil
}

// EventClassByID looks up an event class by its stream-class-scoped ID.
func (sc *StreamClass) EventClassByID(id uint64) (*EventClass, bool) {
	return sc.eventClassesByID.Load(id)
}

// ResolveFieldPaths parses every variant tag path and dynamic-sequence
// length path reachable from this stream class's field classes (packet
// header, packet context, event header, event common context, and each
// registered event class's specific context and payload), populating
// VariantFieldClass.TagPath / DynamicSequenceFieldClass.LengthPath. The CTF
// decoder calls this once, the first time it resolves a stream class, before
// decoding any field that might reference one of these paths (spec §4.2's
// borrow_variant_field_class / get_sequence_length hooks require the path
// already resolved by then).
func (sc *StreamClass) ResolveFieldPaths() error {
	var packetHeader FieldClass
	if sc.Parent != nil {
		packetHeader = sc.Parent.PacketHeaderFieldClass
	}
	base := ScopeSet{
		PacketHeader:       packetHeader,
		PacketContext:      sc.PacketContextFieldClass,
		EventHeader:        sc.EventHeaderFieldClass,
		EventCommonContext: sc.EventCommonContextFieldClass,
	}

	if err := resolvePathsWithin(base, ScopePacketHeader, base.PacketHeader); err != nil {
		return err
	}
	if err := resolvePathsWithin(base, ScopePacketContext, base.PacketContext); err != nil {
		return err
	}
	if err := resolvePathsWithin(base, ScopeEventHeader, base.EventHeader); err != nil {
		return err
	}
	if err := resolvePathsWithin(base, ScopeEventCommonContext, base.EventCommonContext); err != nil {
		return err
	}

	for _, ec := range sc.EventClasses {
		scopes := base
		scopes.EventSpecificContext = ec.SpecificContextFieldClass
		scopes.EventPayload = ec.PayloadFieldClass
		if err := resolvePathsWithin(scopes, ScopeEventSpecificContext, scopes.EventSpecificContext); err != nil {
			return err
		}
		if err := resolvePathsWithin(scopes, ScopeEventPayload, scopes.EventPayload); err != nil {
			return err
		}
	}
	return nil
}

// NextAutoStreamID returns the next unused stream ID within this stream
// class, for use when AssignsAutomaticStreamID is set.
func (sc *StreamClass) NextAutoStreamID() uint64 {
	return sc.nextAutoStreamID.Add(1) - 1
}

// Freeze propagates to the packet-context/event-header/event-common-context
// field classes and to every registered event class, per spec §3.1 ("a
// frozen stream class freezes its event classes").
func (sc *StreamClass) Freeze() {
	if sc.IsFrozen() {
		return
	}
	object.FreezeAll(sc.PacketContextFieldClass, sc.EventHeaderFieldClass, sc.EventCommonContextFieldClass)
	for _, ec := range sc.EventClasses {
		ec.Freeze()
	}
	sc.Freezable.Freeze()
}
