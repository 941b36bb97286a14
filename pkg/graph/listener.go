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

import sf "github.com/wissance/stringFormatter"

// PortAddedFunc, PortRemovedFunc, PortsConnectedFunc, and
// PortsDisconnectedFunc are the four listener callback shapes spec §3.4 and
// §4.5 name.
type (
	PortAddedFunc         func(c *Component, p *Port)
	PortRemovedFunc       func(c *Component, p *Port)
	PortsConnectedFunc    func(conn *Connection)
	PortsDisconnectedFunc func(c *Component, p *Port)
)

// listeners holds every registered callback of each kind, dispatched in
// registration order.
type listeners struct {
	portAdded         []PortAddedFunc
	portRemoved       []PortRemovedFunc
	portsConnected    []PortsConnectedFunc
	portsDisconnected []PortsDisconnectedFunc
}

// AddPortAddedListener registers l for every future port addition.
func (g *Graph) AddPortAddedListener(l PortAddedFunc) {
	g.listeners.portAdded = append(g.listeners.portAdded, l)
}

// AddPortRemovedListener registers l for every future port removal.
func (g *Graph) AddPortRemovedListener(l PortRemovedFunc) {
	g.listeners.portRemoved = append(g.listeners.portRemoved, l)
}

// AddPortsConnectedListener registers l for every future successful
// connection.
func (g *Graph) AddPortsConnectedListener(l PortsConnectedFunc) {
	g.listeners.portsConnected = append(g.listeners.portsConnected, l)
}

// AddPortsDisconnectedListener registers l for every future disconnection.
func (g *Graph) AddPortsDisconnectedListener(l PortsDisconnectedFunc) {
	g.listeners.portsDisconnected = append(g.listeners.portsDisconnected, l)
}

// assertNotDispatching panics if called while a listener is running, per
// spec §4.5/§5: "While a listener runs, the graph refuses further
// structural mutation."
func (g *Graph) assertNotDispatching() {
	if g.inListenerDispatch {
		panic(sf.Format("graph: structural mutation attempted from within a listener callback"))
	}
}

func (g *Graph) notifyPortAdded(c *Component, p *Port) {
	g.dispatch(func() {
		for _, l := range g.listeners.portAdded {
			l(c, p)
		}
	})
}

func (g *Graph) notifyPortsConnected(conn *Connection) {
	g.dispatch(func() {
		for _, l := range g.listeners.portsConnected {
			l(conn)
		}
	})
}

func (g *Graph) dispatch(f func()) {
	g.inListenerDispatch = true
	defer func() { g.inListenerDispatch = false }()
	f()
}
