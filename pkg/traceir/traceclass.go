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
	"sync"

	"github.com/google/uuid"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
)

// TraceClass is the root of the metadata hierarchy: name, optional UUID,
// optional packet-header field class, its stream classes, and environment
// entries (spec §3.2). It freezes the first time a [Trace] instance creates
// a stream from it, not when a stream class is registered.
type TraceClass struct {
	object.Ref
	object.Freezable

	Name                   string
	UUID                   *uuid.UUID
	PacketHeaderFieldClass FieldClass

	StreamClasses []*StreamClass

	mu          sync.Mutex
	environment map[string]EnvValue
	static      bool
}

// NewTraceClass builds a trace class.
func NewTraceClass(name string) *TraceClass {
	tc := &TraceClass{Name: name, environment: make(map[string]EnvValue)}
	tc.Ref.Init(func() {})
	return tc
}

// GenerateUUID assigns a fresh random UUID (spec §3.2: "optional UUID").
func (t *TraceClass) GenerateUUID() {
	t.AssertHot("trace class")
	id := uuid.New()
	t.UUID = &id
}

// SetPacketHeaderFieldClass sets the optional packet-header field class
// shared by every stream class under this trace class.
func (t *TraceClass) SetPacketHeaderFieldClass(fc FieldClass) {
	t.AssertHot("trace class")
	t.PacketHeaderFieldClass = fc
}

// SetEnvironmentEntry sets one environment name to a typed value.
func (t *TraceClass) SetEnvironmentEntry(name string, v EnvValue) {
	t.AssertHot("trace class")
	t.mu.Lock()
	defer t.mu.Unlock()
	t.environment[name] = v
}

// Environment returns the environment entry named name.
func (t *TraceClass) Environment(name string) (EnvValue, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.environment[name]
	return v, ok
}

// EnvironmentNames returns every environment entry name, unordered.
func (t *TraceClass) EnvironmentNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.environment))
	for k := range t.environment {
		names = append(names, k)
	}
	return names
}

// AddStreamClass registers a stream class and sets its parent. It panics
// once the trace class is frozen. Marking the trace class static does not
// stop stream-class registration; static governs only *stream* creation on
// [Trace].
func (t *TraceClass) AddStreamClass(sc *StreamClass) {
	t.AssertHot("trace class")
	sc.Parent = t
	t.StreamClasses = append(t.StreamClasses, sc)
}

// SetStatic marks the trace class static: no further streams may be
// instantiated from it (spec §3.3).
func (t *TraceClass) SetStatic() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.static = true
}

// IsStatic reports whether SetStatic has been called.
func (t *TraceClass) IsStatic() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.static
}

// Freeze propagates to the packet-header field class and every stream
// class, per spec §3.1.
func (t *TraceClass) Freeze() {
	if t.IsFrozen() {
		return
	}
	object.FreezeAll(t.PacketHeaderFieldClass)
	for _, sc := range t.StreamClasses {
		sc.Freeze()
	}
	t.Freezable.Freeze()
}
