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
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/alphadose/haxmap"
	"go.uber.org/zap"

	sf "github.com/wissance/stringFormatter"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

// Graph is the single owning root of every component, port, and connection
// it holds (spec §3.4, §9 design note). It schedules sinks in FIFO order,
// dispatches structural listeners, and supports cooperative cancellation
// (spec §5).
type Graph struct {
	object.Ref

	Log *zap.Logger

	mu         sync.Mutex
	components []*Component
	byName     map[string]*Component
	connByID   map[uint64]*Connection
	nextConnID uint64

	sinks     []*Component
	sinkHead  int

	canceled atomic.Bool

	listeners          listeners
	inListenerDispatch bool

	// notifications is a weak (non-owning) registry keyed by pointer
	// identity, with trackNotification, untrackNotification and checkLive
	// as its operations (spec §3.4). No code path in this module calls
	// trackNotification, so the registry stays empty, and the graph has no
	// teardown step that consults it. Modeled on the teacher's flowMutex.MutexMap: a
	// concurrent map whose only required operations are keyed
	// insert/delete, which is exactly haxmap's strength over a
	// mutex+slice free list.
	notifications *haxmap.Map[uintptr, struct{}]
}

// New creates an empty graph. A nil logger is replaced with zap.NewNop(),
// following the teacher's pattern of always having a usable logger in hand.
func New(log *zap.Logger) *Graph {
	if log == nil {
		log = zap.NewNop()
	}
	return &Graph{
		Log:           log,
		byName:        make(map[string]*Component),
		connByID:      make(map[uint64]*Connection),
		notifications: haxmap.New[uintptr, struct{}](),
	}
}

// AddComponent instantiates class under name, runs its Init slot, and
// registers it with the graph. Sink components are appended to the FIFO
// scheduling queue (spec §4.5).
func (g *Graph) AddComponent(ctx context.Context, class *ComponentClass, name string, params Params) (*Component, status.Status) {
	g.assertNotDispatching()

	g.mu.Lock()
	if _, exists := g.byName[name]; exists {
		g.mu.Unlock()
		return nil, status.Invalid
	}
	c := newComponent(class, name, g)
	g.byName[name] = c
	g.components = append(g.components, c)
	if class.Kind == KindSink {
		g.sinks = append(g.sinks, c)
	}
	g.mu.Unlock()

	if class.Init != nil {
		st := class.Init(ctx, c, params)
		if st != status.OK {
			g.Log.Warn("component init failed",
				zap.String("component", name), zap.String("status", st.String()))
			return nil, st
		}
	}

	g.Log.Debug("component added", zap.String("component", name), zap.String("kind", class.Kind.String()))
	return c, status.OK
}

// Connect joins output to input. Per spec §4.5 the downstream (input-side)
// component is consulted first via AcceptPortConnection — it may refuse
// with status.RefusesPort — and only then is the connection established and
// PortConnected fired on the input side, then the output side.
func (g *Graph) Connect(output, input *Port) (*Connection, status.Status) {
	g.assertNotDispatching()

	if output.Direction != DirectionOutput || input.Direction != DirectionInput {
		return nil, status.Invalid
	}
	if output.IsConnected() || input.IsConnected() {
		return nil, status.Invalid
	}

	if input.Owner.Class.AcceptPortConnection != nil {
		st := input.Owner.Class.AcceptPortConnection(input.Owner, input, output)
		if st != status.OK {
			return nil, st
		}
	}
	if output.Owner.Class.AcceptPortConnection != nil {
		st := output.Owner.Class.AcceptPortConnection(output.Owner, output, input)
		if st != status.OK {
			return nil, st
		}
	}

	g.mu.Lock()
	g.nextConnID++
	id := g.nextConnID
	conn := newConnection(id, output, input)
	g.connByID[id] = conn
	g.mu.Unlock()

	output.connection = conn
	input.connection = conn

	if input.Owner.Class.PortConnected != nil {
		input.Owner.Class.PortConnected(input.Owner, input, output)
	}
	if output.Owner.Class.PortConnected != nil {
		output.Owner.Class.PortConnected(output.Owner, output, input)
	}

	g.notifyPortsConnected(conn)
	return conn, status.OK
}

// Cancel requests cooperative cancellation (spec §5). Consume implementations
// should observe IsCanceled and unwind with status.Canceled at their next
// opportunity; the scheduler itself stops issuing new turns once canceled.
func (g *Graph) Cancel() {
	g.canceled.Store(true)
}

// IsCanceled reports whether Cancel has been called.
func (g *Graph) IsCanceled() bool {
	return g.canceled.Load()
}

// Consume runs exactly one scheduling turn: it calls Consume on the next
// sink in FIFO order and rotates that sink to the tail, so that a sink
// returning status.Again does not starve its siblings (spec §4.5, scenario
// "two sinks round-robin").
func (g *Graph) Consume(ctx context.Context) status.Status {
	if g.IsCanceled() {
		return status.Canceled
	}

	g.mu.Lock()
	if len(g.sinks) == 0 {
		g.mu.Unlock()
		return status.End
	}
	sink := g.sinks[g.sinkHead]
	g.sinkHead = (g.sinkHead + 1) % len(g.sinks)
	g.mu.Unlock()

	if sink.Class.Consume == nil {
		return status.Unsupported
	}
	return sink.Class.Consume(ctx, sink)
}

// Run drives Consume turns until every sink reports status.End, the graph is
// canceled, or a fatal status is returned. A non-fatal status.Again from one
// turn does not stop the run — it simply yields to the next sink in line.
func (g *Graph) Run(ctx context.Context) status.Status {
	liveSinks := g.sinkCount()
	if liveSinks == 0 {
		return status.End
	}

	ended := make(map[*Component]bool, liveSinks)
	for {
		if ctx.Err() != nil {
			return status.Canceled
		}
		if g.IsCanceled() {
			return status.Canceled
		}

		g.mu.Lock()
		sink := g.sinks[g.sinkHead]
		g.sinkHead = (g.sinkHead + 1) % len(g.sinks)
		g.mu.Unlock()

		if ended[sink] {
			if len(ended) == liveSinks {
				return status.End
			}
			continue
		}

		if sink.Class.Consume == nil {
			return status.Unsupported
		}
		st := sink.Class.Consume(ctx, sink)
		switch st {
		case status.OK, status.Again:
			// yield to the next sink in the rotation
		case status.End:
			ended[sink] = true
			if len(ended) == liveSinks {
				return status.End
			}
		default:
			if st.IsFatal() {
				return st
			}
		}
	}
}

func (g *Graph) sinkCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sinks)
}

// BorrowComponent looks up a component by name.
func (g *Graph) BorrowComponent(name string) (*Component, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.byName[name]
	return c, ok
}

// trackNotification registers a notification's address in the graph's weak
// registry so that a subsequent teardown can reject stale references handed
// to callers that outlived the graph (spec §3.4).
func (g *Graph) trackNotification(addr uintptr) {
	g.notifications.Set(addr, struct{}{})
}

func (g *Graph) untrackNotification(addr uintptr) {
	g.notifications.Del(addr)
}

func (g *Graph) checkLive(addr uintptr) error {
	if _, ok := g.notifications.Get(addr); !ok {
		return errors.New(sf.Format("graph: reference to notification {0} is no longer live", addr))
	}
	return nil
}
