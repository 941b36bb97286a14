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

import (
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/notification"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

// Connection joins an output port to an input port; it holds weak
// (borrowing) references to both endpoints and owns the set of message
// iterators created against it (spec §3.4). The graph is the only owner of
// a Connection — per spec §9's cyclic-reference design note, Connection
// never reference-counts its endpoints, which keeps graph teardown a
// straight-line sweep instead of a reference cycle.
type Connection struct {
	object.Ref

	ID     uint64
	Output *Port
	Input  *Port

	iterators []*notification.Iterator
}

func newConnection(id uint64, output, input *Port) *Connection {
	c := &Connection{ID: id, Output: output, Input: input}
	c.Ref.Init(func() {})
	return c
}

// CreateMessageIterator builds a new [notification.Iterator] sourced from
// the upstream (output-side) component's IteratorInit slot, per spec §4.5
// ("A message iterator is created on an input port"). The connection
// retains the iterator so the graph can account for every iterator it has
// ever handed out.
func (c *Connection) CreateMessageIterator() (*notification.Iterator, status.Status) {
	upstream := c.Output.Owner
	if upstream.Class.IteratorInit == nil {
		return nil, status.Unsupported
	}

	src, st := upstream.Class.IteratorInit(upstream, c.Input)
	if st != status.OK {
		return nil, st
	}

	it := notification.NewIterator(src)
	c.iterators = append(c.iterators, it)
	return it, status.OK
}

// Iterators returns every message iterator created against this connection.
func (c *Connection) Iterators() []*notification.Iterator {
	return c.iterators
}
