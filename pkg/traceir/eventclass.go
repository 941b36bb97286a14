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

// EventClass describes one kind of event within a stream class: its ID
// (unique within the stream class), name, and optional context/payload
// shapes (spec §3.2).
type EventClass struct {
	object.Ref
	object.Freezable

	Parent *StreamClass
	ID     uint64
	Name   string

	LogLevel *int
	EMFURI   *string

	SpecificContextFieldClass FieldClass
	PayloadFieldClass         FieldClass
}

// NewEventClass builds an event class with an explicit ID. Pass ID 0 to a
// stream class with AssignsAutomaticEventClassID set to have
// StreamClass.AddEventClass assign the ID instead.
func NewEventClass(name string, id uint64) *EventClass {
	ec := &EventClass{Name: name, ID: id}
	ec.Ref.Init(func() {})
	return ec
}

// SetSpecificContextFieldClass sets the event's specific-context field
// class (spec §3.3 scope order: after stream event common context, before
// payload).
func (e *EventClass) SetSpecificContextFieldClass(fc FieldClass) {
	e.AssertHot("event class")
	e.SpecificContextFieldClass = fc
}

// SetPayloadFieldClass sets the event's payload field class.
func (e *EventClass) SetPayloadFieldClass(fc FieldClass) {
	e.AssertHot("event class")
	e.PayloadFieldClass = fc
}

// SetLogLevel records an optional standard syslog-style log level.
func (e *EventClass) SetLogLevel(level int) {
	e.AssertHot("event class")
	e.LogLevel = &level
}

// SetEMFURI records an optional Eclipse Modeling Framework URI.
func (e *EventClass) SetEMFURI(uri string) {
	e.AssertHot("event class")
	e.EMFURI = &uri
}

// Freeze propagates to the event's context and payload field classes, per
// spec §3.1.
func (e *EventClass) Freeze() {
	if e.IsFrozen() {
		return
	}
	object.FreezeAll(e.SpecificContextFieldClass, e.PayloadFieldClass)
	e.Freezable.Freeze()
}
