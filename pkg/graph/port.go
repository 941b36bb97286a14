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

package graph

import "github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"

// Direction is a port's data-flow direction (spec §3.4).
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
)

func (d Direction) String() string {
	if d == DirectionInput {
		return "input"
	}
	return "output"
}

// Port belongs to one component and may be connected to at most one port of
// the opposite direction (spec §3.4). Per the design notes in spec §9, a
// port holds no owning reference to its connection — the graph is the
// single owning root; Connection is reached by a borrowing pointer a caller
// must not assume outlives the graph.
type Port struct {
	object.Ref

	Name      string
	Direction Direction
	Owner     *Component

	connection *Connection
}

func newPort(name string, dir Direction, owner *Component) *Port {
	p := &Port{Name: name, Direction: dir, Owner: owner}
	p.Ref.Init(func() {})
	return p
}

// IsConnected reports whether the port has an active connection.
func (p *Port) IsConnected() bool {
	return p.connection != nil
}

// Connection returns the port's connection, or nil if unconnected.
func (p *Port) Connection() *Connection {
	return p.connection
}
