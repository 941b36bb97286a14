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

package traceir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/traceir"
)

func buildSimpleTrace(t *testing.T) (*traceir.TraceClass, *traceir.StreamClass, *traceir.EventClass) {
	t.Helper()

	tc := traceir.NewTraceClass("test-trace")

	sc := traceir.NewStreamClass(tc, "test-stream")
	ctx := traceir.NewStructureFieldClass()
	ctx.AppendMember("packet_size", traceir.NewIntegerFieldClass(32))
	ctx.AppendMember("content_size", traceir.NewIntegerFieldClass(32))
	sc.SetPacketContextFieldClass(ctx)
	tc.AddStreamClass(sc)

	ec := traceir.NewEventClass("test-event", 0)
	payload := traceir.NewStructureFieldClass()
	payload.AppendMember("value", traceir.NewIntegerFieldClass(32))
	ec.SetPayloadFieldClass(payload)
	require.NoError(t, sc.AddEventClass(ec))

	return tc, sc, ec
}

func TestStreamIDUniquePerStreamClass(t *testing.T) {
	tc, sc, _ := buildSimpleTrace(t)
	trace := traceir.NewTrace(tc)

	_, err := trace.CreateStream(sc, 0)
	require.NoError(t, err)

	_, err = trace.CreateStream(sc, 0)
	require.Error(t, err)

	_, err = trace.CreateStream(sc, 1)
	require.NoError(t, err)
}

func TestEventClassIDUniqueWithinStreamClass(t *testing.T) {
	tc := traceir.NewTraceClass("t")
	sc := traceir.NewStreamClass(tc, "s")
	tc.AddStreamClass(sc)

	require.NoError(t, sc.AddEventClass(traceir.NewEventClass("a", 0)))
	require.Error(t, sc.AddEventClass(traceir.NewEventClass("b", 0)))
	require.NoError(t, sc.AddEventClass(traceir.NewEventClass("c", 1)))
}

func TestCreatingStreamFreezesTraceClass(t *testing.T) {
	tc, sc, _ := buildSimpleTrace(t)
	require.False(t, tc.IsFrozen())

	trace := traceir.NewTrace(tc)
	_, err := trace.CreateStream(sc, 0)
	require.NoError(t, err)

	require.True(t, tc.IsFrozen())
	require.True(t, sc.IsFrozen())
	require.Panics(t, func() { tc.SetPacketHeaderFieldClass(nil) })
}

func TestFreezeIsIdempotentAndPropagates(t *testing.T) {
	tc, _, ec := buildSimpleTrace(t)
	tc.Freeze()
	tc.Freeze() // idempotent, must not panic or change state

	require.True(t, ec.IsFrozen())
	require.Panics(t, func() { ec.SetPayloadFieldClass(nil) })
}

func TestPacketValidateSizeInvariant(t *testing.T) {
	p := &traceir.Packet{PacketSizeBits: 1023, ContentSizeBits: 1023}
	require.Equal(t, status.Invalid, p.Validate())

	p2 := &traceir.Packet{PacketSizeBits: 4096, ContentSizeBits: 5000}
	require.Equal(t, status.Invalid, p2.Validate())

	p3 := &traceir.Packet{PacketSizeBits: 4096, ContentSizeBits: 3072}
	require.Equal(t, status.OK, p3.Validate())
}

func TestPacketValidateInconsistentTimestampsWarnsNotRejects(t *testing.T) {
	p := &traceir.Packet{
		PacketSizeBits: -1, ContentSizeBits: -1,
		HasBeginClockValue: true, BeginClockValue: 100,
		HasEndClockValue: true, EndClockValue: 50,
	}
	require.Equal(t, status.Warning, p.Validate())
}

func TestResolvePathRejectsLaterScope(t *testing.T) {
	ctx := traceir.NewStructureFieldClass()
	ctx.AppendMember("len", traceir.NewIntegerFieldClass(16))

	scopes := traceir.ScopeSet{EventPayload: ctx}
	_, err := traceir.ResolvePath(scopes, traceir.ScopePacketContext,
		"event.fields.len", "event.fields", []string{"len"})
	require.Error(t, err)
}

func TestResolvePathFindsIntegerTarget(t *testing.T) {
	hdr := traceir.NewStructureFieldClass()
	hdr.AppendMember("stream_id", traceir.NewIntegerFieldClass(16))

	scopes := traceir.ScopeSet{PacketHeader: hdr}
	fp, err := traceir.ResolvePath(scopes, traceir.ScopeEventPayload,
		"trace.packet.header.stream_id", "trace.packet.header", []string{"stream_id"})
	require.NoError(t, err)
	require.Equal(t, traceir.ScopePacketHeader, fp.Root)
	require.Equal(t, []int{0}, fp.Indices)
}

func TestIntegerFieldSignedValue(t *testing.T) {
	class := traceir.NewIntegerFieldClass(8)
	class.Signed = true
	f := traceir.NewIntegerField(class)
	f.SetValue(0xFF) // -1 as an 8-bit two's complement value
	require.EqualValues(t, -1, f.SignedValue())

	require.Panics(t, func() { f.SetValue(1) })
}
