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

package ctf

import (
	"context"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/babeltrace-go/internal/medium"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/graph"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/notification"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/traceir"
)

// Construction parameter keys SourceClass's Init slot recognizes, the way
// the teacher's CLI flags select and configure a PcapEngine before Start.
const (
	ParamTraceClass = "trace_class"
	ParamTrace      = "trace"
	ParamMedium     = "medium"
	ParamPools      = "pools"
	ParamLogger     = "logger"
)

// SourceClass builds the graph.ComponentClass for a CTF stream source: one
// output port ("out") backed by a *Decoder built from the params passed to
// graph.Graph.AddComponent. This is the component spec.md's module layout
// calls the CTF source — pkg/ctf's state machine wired into pkg/graph.
func SourceClass() *graph.ComponentClass {
	return &graph.ComponentClass{
		Name: "ctf-source",
		Kind: graph.KindSource,

		Init: func(_ context.Context, c *graph.Component, params graph.Params) status.Status {
			traceClass, _ := params[ParamTraceClass].(*traceir.TraceClass)
			trace, _ := params[ParamTrace].(*traceir.Trace)
			med, _ := params[ParamMedium].(medium.Medium)
			pools, _ := params[ParamPools].(*notification.Pools)
			if traceClass == nil || trace == nil || med == nil || pools == nil {
				return status.Invalid
			}
			log, _ := params[ParamLogger].(*zap.Logger)

			c.UserData = NewDecoder(traceClass, trace, med, pools, log)
			c.AddOutputPort("out")
			return status.OK
		},

		IteratorInit: func(c *graph.Component, _ *graph.Port) (notification.Source, status.Status) {
			d, ok := c.UserData.(*Decoder)
			if !ok {
				return nil, status.Invalid
			}
			return d, status.OK
		},
	}
}
