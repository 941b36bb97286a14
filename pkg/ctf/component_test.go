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

package ctf_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/babeltrace-go/internal/medium"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/ctf"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/graph"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/notification"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/traceir"
)

func TestSourceClassInitMissingParamsFails(t *testing.T) {
	g := graph.New(nil)
	_, st := g.AddComponent(context.Background(), ctf.SourceClass(), "src", nil)
	require.Equal(t, status.Invalid, st)
}

// TestSourceClassWiresDecoderAsSource checks the whole construction path:
// Init builds a *ctf.Decoder from the recognized params, adds the "out"
// port, and IteratorInit hands the decoder straight back as the port's
// notification.Source, since Decoder.Pull already satisfies that interface.
func TestSourceClassWiresDecoderAsSource(t *testing.T) {
	g := graph.New(nil)
	ctx := context.Background()

	tc, _ := singleEventTraceClass(t)
	trace := traceir.NewTrace(tc)
	med := medium.NewBufferMedium("test", nil)
	pools := notification.NewPools()

	c, st := g.AddComponent(ctx, ctf.SourceClass(), "src", graph.Params{
		ctf.ParamTraceClass: tc,
		ctf.ParamTrace:      trace,
		ctf.ParamMedium:     med,
		ctf.ParamPools:      pools,
	})
	require.Equal(t, status.OK, st)
	require.NotNil(t, c.OutputPorts["out"])

	src, st := c.Class.IteratorInit(c, c.OutputPorts["out"])
	require.Equal(t, status.OK, st)
	require.NotNil(t, src)

	n, pullSt := src.Pull()
	require.Equal(t, status.End, pullSt)
	require.Nil(t, n)
}
