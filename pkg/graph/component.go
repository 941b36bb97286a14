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

// Package graph implements the component graph runtime of spec §3.4, §4.5,
// §5: components, ports, connections, sink scheduling, cancellation, and
// listeners.
package graph

import (
	"context"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/notification"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

// ComponentKind is one of the three roles a component class plays (spec
// §3.4).
type ComponentKind int

const (
	KindSource ComponentKind = iota
	KindFilter
	KindSink
)

func (k ComponentKind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindFilter:
		return "filter"
	case KindSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Params are the construction-time parameters a caller passes to
// [Graph.AddComponent]; plugin discovery and CLI argument parsing that
// build this map are out of scope (spec §1).
type Params map[string]any

// ComponentClass carries the method slots spec §3.4 names: init, finalize,
// query, accept-port-connection, port-connected, port-disconnected,
// consume (sinks only), and iterator-lifecycle (sources/filters only). A
// nil slot means "use the no-op default" — callers implement only the
// slots their component actually needs, mirroring the teacher's
// PcapEngine/Pcap/Tcpdump split of one interface behind several
// implementations that each only fill in what they use.
type ComponentClass struct {
	Name string
	Kind ComponentKind

	Init                 func(ctx context.Context, c *Component, params Params) status.Status
	Finalize             func(c *Component)
	Query                func(ctx context.Context, objectName string, params Params) (any, status.Status)
	AcceptPortConnection func(c *Component, self, other *Port) status.Status
	PortConnected        func(c *Component, self, other *Port)
	PortDisconnected     func(c *Component, self *Port)

	// Consume is called by the sink scheduler, exactly once per turn
	// (spec §4.5).
	Consume func(ctx context.Context, c *Component) status.Status

	// IteratorInit is called once per input port to build the
	// notification.Source a message iterator pulls from (sources and
	// filters only).
	IteratorInit func(c *Component, port *Port) (notification.Source, status.Status)
}

// Component is one instance of a [ComponentClass] within a [Graph] (spec
// §3.4): it owns a user-data pointer and a set of named input/output ports.
type Component struct {
	object.Ref

	Class *ComponentClass
	Name  string
	Graph *Graph

	UserData any

	InputPorts  map[string]*Port
	OutputPorts map[string]*Port
}

func newComponent(class *ComponentClass, name string, g *Graph) *Component {
	c := &Component{
		Class:       class,
		Name:        name,
		Graph:       g,
		InputPorts:  make(map[string]*Port),
		OutputPorts: make(map[string]*Port),
	}
	c.Ref.Init(func() {})
	return c
}

// AddInputPort adds a named input port to the component. Components
// typically do this from their Init slot.
func (c *Component) AddInputPort(name string) *Port {
	p := newPort(name, DirectionInput, c)
	c.InputPorts[name] = p
	c.Graph.notifyPortAdded(c, p)
	return p
}

// AddOutputPort adds a named output port to the component.
func (c *Component) AddOutputPort(name string) *Port {
	p := newPort(name, DirectionOutput, c)
	c.OutputPorts[name] = p
	c.Graph.notifyPortAdded(c, p)
	return p
}
