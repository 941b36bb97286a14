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

package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/graph"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

func sourceClass() *graph.ComponentClass {
	return &graph.ComponentClass{
		Name: "source",
		Kind: graph.KindSource,
		Init: func(_ context.Context, c *graph.Component, _ graph.Params) status.Status {
			c.AddOutputPort("out")
			return status.OK
		},
	}
}

func refusingSinkClass() *graph.ComponentClass {
	return &graph.ComponentClass{
		Name: "refusing-sink",
		Kind: graph.KindSink,
		Init: func(_ context.Context, c *graph.Component, _ graph.Params) status.Status {
			c.AddInputPort("in")
			return status.OK
		},
		AcceptPortConnection: func(_ *graph.Component, _, _ *graph.Port) status.Status {
			return status.RefusesPort
		},
	}
}

func TestConnectHonorsRefusingSink(t *testing.T) {
	g := graph.New(nil)
	ctx := context.Background()

	src, st := g.AddComponent(ctx, sourceClass(), "src", nil)
	require.Equal(t, status.OK, st)
	sink, st := g.AddComponent(ctx, refusingSinkClass(), "sink", nil)
	require.Equal(t, status.OK, st)

	_, st = g.Connect(src.OutputPorts["out"], sink.InputPorts["in"])
	require.Equal(t, status.RefusesPort, st)
	require.False(t, src.OutputPorts["out"].IsConnected())
}

func acceptingSinkClass(turns *[]string, label string, results []status.Status) *graph.ComponentClass {
	i := 0
	return &graph.ComponentClass{
		Name: label,
		Kind: graph.KindSink,
		Init: func(_ context.Context, c *graph.Component, _ graph.Params) status.Status {
			c.AddInputPort("in")
			return status.OK
		},
		Consume: func(_ context.Context, c *graph.Component) status.Status {
			*turns = append(*turns, label)
			st := results[i]
			if i < len(results)-1 {
				i++
			}
			return st
		},
	}
}

func TestRunRoundRobinsTwoSinks(t *testing.T) {
	g := graph.New(nil)
	ctx := context.Background()

	var turns []string
	_, st := g.AddComponent(ctx, acceptingSinkClass(&turns, "a", []status.Status{status.OK, status.End}), "a", nil)
	require.Equal(t, status.OK, st)
	_, st = g.AddComponent(ctx, acceptingSinkClass(&turns, "b", []status.Status{status.Again, status.End}), "b", nil)
	require.Equal(t, status.OK, st)

	final := g.Run(ctx)
	require.Equal(t, status.End, final)

	// both sinks must have been given a turn before either was starved
	require.Contains(t, turns, "a")
	require.Contains(t, turns, "b")
	require.Equal(t, "a", turns[0])
	require.Equal(t, "b", turns[1])
}

func TestCancelStopsRun(t *testing.T) {
	g := graph.New(nil)
	ctx := context.Background()

	_, st := g.AddComponent(ctx, acceptingSinkClass(&[]string{}, "only", []status.Status{status.Again, status.Again}), "only", nil)
	require.Equal(t, status.OK, st)

	g.Cancel()
	require.True(t, g.IsCanceled())
	require.Equal(t, status.Canceled, g.Run(ctx))
}

func TestPortsConnectedListenerFires(t *testing.T) {
	g := graph.New(nil)
	ctx := context.Background()

	var fired bool
	g.AddPortsConnectedListener(func(conn *graph.Connection) {
		fired = true
		require.NotNil(t, conn.Output)
		require.NotNil(t, conn.Input)
	})

	src, st := g.AddComponent(ctx, sourceClass(), "src", nil)
	require.Equal(t, status.OK, st)
	sink, st := g.AddComponent(ctx, &graph.ComponentClass{
		Name: "sink",
		Kind: graph.KindSink,
		Init: func(_ context.Context, c *graph.Component, _ graph.Params) status.Status {
			c.AddInputPort("in")
			return status.OK
		},
	}, "sink", nil)
	require.Equal(t, status.OK, st)

	_, st = g.Connect(src.OutputPorts["out"], sink.InputPorts["in"])
	require.Equal(t, status.OK, st)
	require.True(t, fired)
}
