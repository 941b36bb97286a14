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

// Package ctf implements the CTF notification-iterator state machine (spec
// §4.4): a resumable decoder that walks one stream file's packets and
// events through internal/btr, emitting the five notification kinds
// through a [notification.Pools]-backed Pull method, and the graph source
// component that wires it into pkg/graph.
package ctf

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/babeltrace-go/internal/btr"
	"github.com/GoogleCloudPlatform/babeltrace-go/internal/fieldpathcache"
	"github.com/GoogleCloudPlatform/babeltrace-go/internal/medium"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/notification"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/traceir"
)

// Decoder walks one stream file's packets and events, per spec §4.4. One
// Decoder owns exactly one medium and, once resolved from the first
// packet's header, exactly one (stream class, stream) pair — every
// subsequent packet's header must resolve to the same pair, or decode
// fails with status.Invalid (spec §4.4.2, scenario S5: "Decoder must
// return error when processing packet 2, not silently switch").
//
// This is a simplification of the original notif-iter.c's
// borrow_stream(stream_class, stream_instance_id) medium callback: since
// this port's caller already holds the target *traceir.Trace directly
// (rather than reaching it only through a remote medium callback), the
// Decoder borrows/creates the stream itself via Trace.StreamByID/
// CreateStream instead of calling back out through internal/medium.
type Decoder struct {
	log  *zap.Logger
	med  medium.Medium
	cur  *btr.Cursor
	read *btr.Reader

	cache       *fieldpathcache.Cache
	enumClasses map[uint64]*traceir.EnumerationFieldClass
	clocks      *clockTracker
	pools       *notification.Pools

	traceClass *traceir.TraceClass
	trace      *traceir.Trace

	state State

	streamClass        *traceir.StreamClass
	stream             *traceir.Stream
	streamBeginEmitted bool
	streamEnded        bool

	packetHeaderField  traceir.Field
	packetContextField traceir.Field
	packetStartBits    uint64
	packetSizeBits     int64
	contentSizeBits    int64

	hasLastEventHeaderAt bool
	lastEventHeaderAt    uint64

	hasPacketSeqNum         bool
	packetSeqNum            uint64
	hasEventsDiscarded      bool
	eventsDiscarded         uint64
	hasPacketTimestampBegin bool
	packetTimestampBegin    uint64
	timestampBeginWidth     uint8
	hasPendingTimestampEnd  bool
	pendingTimestampEnd     uint64
	timestampEndWidth       uint8

	packet *traceir.Packet

	eventClass          *traceir.EventClass
	eventHeaderField    traceir.Field
	streamEventCtxField traceir.Field
	eventCtxField       traceir.Field
	eventPayloadField   traceir.Field
	eventClockValues    map[*traceir.ClockClass]uint64

	inPacketContext bool

	// classifier buckets fatal decode errors for callers that want to
	// count failures by category instead of matching status/text (spec
	// SPEC_FULL.md §7, "[ADD 7] Error kind as a first-class classifier").
	classifier status.ErrClassifier
}

// NewDecoder builds a Decoder over med, decoding packets of traceClass into
// streams created on trace. A nil logger is replaced with zap.NewNop().
func NewDecoder(traceClass *traceir.TraceClass, trace *traceir.Trace, med medium.Medium, pools *notification.Pools, log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Decoder{
		log:        log,
		med:        med,
		cur:        btr.NewCursor(),
		cache:      fieldpathcache.New(),
		clocks:     newClockTracker(),
		pools:      pools,
		traceClass: traceClass,
		trace:      trace,
		state:      StateInit,
		classifier: defaultClassifier,
	}
	d.read = btr.NewReader(btr.Callbacks{
		UnsignedInt:         d.onUnsignedInt,
		SignedInt:           d.onSignedInt,
		EnumValue:           d.onEnumValue,
		SequenceLength:      d.resolveSequenceLength,
		SelectVariantOption: d.selectVariantOption,
	})
	return d
}

// SetClassifier overrides the decoder's error classifier (NewDecoder
// installs one that buckets this package's errors by reason label); nil
// installs status.DefaultErrClassifier's no-op behavior instead.
func (d *Decoder) SetClassifier(c status.ErrClassifier) {
	if c == nil {
		c = status.DefaultErrClassifier
	}
	d.classifier = c
}

// Pull implements notification.Source (pkg/notification, spec §3.5): it
// drives the state machine forward until it can deliver exactly one
// notification, needs more bytes (status.Again), reaches a clean end of
// stream (status.End, possibly after one final stream-end notification),
// or hits a fatal decode error.
func (d *Decoder) Pull() (*notification.Notification, status.Status) {
	for {
		switch d.state {

		case StateDone:
			return nil, status.End

		case StateInit:
			d.cur.Compact()
			d.cache.Reset()
			d.packetStartBits = d.cur.BitsConsumed()
			d.hasLastEventHeaderAt = false
			d.state = StateTraceHeaderBegin

		case StateTraceHeaderBegin:
			if d.traceClass.PacketHeaderFieldClass == nil {
				d.packetHeaderField = nil
				d.state = StateAfterTraceHeader
				continue
			}
			field, st := d.decodeField(d.traceClass.PacketHeaderFieldClass)
			if st == status.Again {
				return nil, status.Again
			}
			if st == status.End {
				return d.gracefulEnd()
			}
			if st != status.OK {
				d.state = StateDone
				return nil, d.fail(st, "trace-header-decode-failed")
			}
			d.packetHeaderField = field
			d.state = StateAfterTraceHeader

		case StateAfterTraceHeader:
			if st := d.resolveStreamClass(); st != status.OK {
				d.state = StateDone
				return nil, d.fail(st, "stream-class-resolution-failed")
			}
			d.state = StatePacketCtxBegin

		case StatePacketCtxBegin:
			if d.streamClass.PacketContextFieldClass == nil {
				d.packetContextField = nil
				d.state = StateAfterPacketCtx
				continue
			}
			d.inPacketContext = true
			field, st := d.decodeField(d.streamClass.PacketContextFieldClass)
			d.inPacketContext = false
			if st == status.Again {
				return nil, status.Again
			}
			if st == status.End {
				if d.packetAt() == 0 {
					return d.gracefulEnd()
				}
				d.state = StateDone
				return nil, d.fail(status.Invalid, "eof-mid-packet-context")
			}
			if st != status.OK {
				d.state = StateDone
				return nil, d.fail(st, "packet-context-decode-failed")
			}
			d.packetContextField = field
			d.state = StateAfterPacketCtx

		case StateAfterPacketCtx:
			if st := d.resolvePacketSizes(); st != status.OK {
				d.state = StateDone
				return nil, d.fail(st, "bad-packet-size-fields")
			}
			if !d.streamBeginEmitted {
				d.state = StateEmitNewStream
			} else {
				d.state = StateEmitNewPacket
			}

		case StateEmitNewStream:
			n := d.pools.Acquire(notification.KindStreamBegin)
			n.Stream = d.stream
			d.streamBeginEmitted = true
			d.state = StateEmitNewPacket
			return n, status.OK

		case StateEmitNewPacket:
			if st := d.materializePacket(); st != status.OK {
				d.state = StateDone
				return nil, d.fail(st, "packet-validation-failed")
			}
			n := d.pools.Acquire(notification.KindPacketBegin)
			n.Packet = d.packet
			d.state = StateEvHeaderBegin
			return n, status.OK

		case StateEvHeaderBegin:
			at := int64(d.packetAt())
			// A negative content_size means "unknown" (no packet-context size
			// fields at all, spec §4.4.2): there is no boundary to compare
			// against here, so a size-unknown packet can only end gracefully
			// at an event-header EOF, handled below via last_eh_at.
			if d.contentSizeBits >= 0 {
				if at == d.contentSizeBits {
					d.state = StateEmitEndOfPacket
					continue
				}
				if at > d.contentSizeBits {
					d.state = StateDone
					return nil, d.fail(status.Invalid, "packet-at-exceeds-content-size")
				}
			}

			if d.streamClass.EventHeaderFieldClass == nil {
				d.eventHeaderField = nil
				d.lastEventHeaderAt = uint64(at)
				d.hasLastEventHeaderAt = true
				d.eventClockValues = make(map[*traceir.ClockClass]uint64)
				d.state = StateAfterEvHeader
				continue
			}

			d.eventClockValues = make(map[*traceir.ClockClass]uint64)
			if !d.read.InProgress() {
				d.lastEventHeaderAt = uint64(at)
				d.hasLastEventHeaderAt = true
			}
			field, st := d.decodeField(d.streamClass.EventHeaderFieldClass)
			if st == status.Again {
				return nil, status.Again
			}
			if st == status.End {
				if d.packetSizeBits < 0 && d.hasLastEventHeaderAt && d.packetAt() == d.lastEventHeaderAt {
					return d.gracefulEnd()
				}
				d.state = StateDone
				return nil, d.fail(status.Invalid, "eof-mid-event-header")
			}
			if st != status.OK {
				d.state = StateDone
				return nil, d.fail(st, "event-header-decode-failed")
			}
			d.eventHeaderField = field
			d.state = StateAfterEvHeader

		case StateAfterEvHeader:
			ec, st := d.resolveEventClass()
			if st != status.OK {
				d.state = StateDone
				return nil, d.fail(st, "event-class-resolution-failed")
			}
			d.eventClass = ec
			d.state = StateStreamEvCtxBegin

		case StateStreamEvCtxBegin:
			if d.streamClass.EventCommonContextFieldClass == nil {
				d.streamEventCtxField = nil
				d.state = StateEvCtxBegin
				continue
			}
			field, st := d.decodeField(d.streamClass.EventCommonContextFieldClass)
			if st == status.Again {
				return nil, status.Again
			}
			if st != status.OK {
				d.state = StateDone
				return nil, d.fail(fatalizeEOF(st), "stream-event-context-decode-failed")
			}
			d.streamEventCtxField = field
			d.state = StateEvCtxBegin

		case StateEvCtxBegin:
			if d.eventClass.SpecificContextFieldClass == nil {
				d.eventCtxField = nil
				d.state = StateEvPayloadBegin
				continue
			}
			field, st := d.decodeField(d.eventClass.SpecificContextFieldClass)
			if st == status.Again {
				return nil, status.Again
			}
			if st != status.OK {
				d.state = StateDone
				return nil, d.fail(fatalizeEOF(st), "event-context-decode-failed")
			}
			d.eventCtxField = field
			d.state = StateEvPayloadBegin

		case StateEvPayloadBegin:
			if d.eventClass.PayloadFieldClass == nil {
				d.eventPayloadField = nil
				d.state = StateEmitEvent
				continue
			}
			field, st := d.decodeField(d.eventClass.PayloadFieldClass)
			if st == status.Again {
				return nil, status.Again
			}
			if st != status.OK {
				d.state = StateDone
				return nil, d.fail(fatalizeEOF(st), "event-payload-decode-failed")
			}
			d.eventPayloadField = field
			d.state = StateEmitEvent

		case StateEmitEvent:
			n := d.emitEvent()
			d.state = StateEvHeaderBegin
			return n, status.OK

		case StateEmitEndOfPacket:
			n := d.emitEndOfPacket()
			d.state = StateSkipPacketPadding
			return n, status.OK

		case StateSkipPacketPadding:
			if st := d.skipPadding(); st != status.OK {
				if st == status.Again {
					return nil, status.Again
				}
				d.state = StateDone
				return nil, d.fail(st, "eof-mid-padding")
			}
			d.state = StateInit

		default:
			d.state = StateDone
			return nil, status.Error
		}
	}
}

// fatalizeEOF turns a status.End reached mid-event (never a valid boundary
// per spec §4.4.4) into status.Invalid; every other status passes through.
func fatalizeEOF(st status.Status) status.Status {
	if st == status.End {
		return status.Invalid
	}
	return st
}

// packetAt returns the number of bits consumed since the start of the
// current packet (the "packet_at" cursor of spec §4.4).
func (d *Decoder) packetAt() uint64 {
	return d.cur.BitsConsumed() - d.packetStartBits
}

// decodeField drives r.Continue to completion, feeding the cursor from the
// medium whenever the reader suspends, per spec §4.3's "continue resumes
// after the caller supplied more bytes."
func (d *Decoder) decodeField(fc traceir.FieldClass) (traceir.Field, status.Status) {
	if !d.read.InProgress() {
		d.read.StartDecoding(fc)
	}
	for {
		field, st := d.read.Continue(d.cur)
		if st != status.Again {
			return field, st
		}
		chunk, mst := d.med.RequestBytes(context.Background(), 4096)
		switch mst {
		case status.OK:
			d.cur.Feed(chunk)
		case status.Again:
			return nil, status.Again
		case status.End:
			if len(chunk) > 0 {
				d.cur.Feed(chunk)
				continue
			}
			return nil, status.End
		default:
			return nil, mst
		}
	}
}

// gracefulEnd ends the stream cleanly (spec §4.4.4): a stream that already
// emitted stream-begin gets exactly one stream-end notification; one that
// never emitted anything (an empty trace, scenario S1) ends silently.
func (d *Decoder) gracefulEnd() (*notification.Notification, status.Status) {
	d.state = StateDone
	if !d.streamBeginEmitted || d.streamEnded {
		return nil, status.End
	}
	d.streamEnded = true
	n := d.pools.Acquire(notification.KindStreamEnd)
	n.Stream = d.stream
	return n, status.OK
}

// onUnsignedInt is the BTR's per-unsigned-integer hook: it always records
// the value for field-path resolution, and feeds the clock-update algebra
// of spec §4.4.3 unless the field belongs to the packet context currently
// being decoded — packet-context clock fields (timestamp_begin,
// timestamp_end) are captured by resolvePacketSizes and applied explicitly
// by materializePacket (timestamp_begin) and emitEndOfPacket
// (timestamp_end) instead, per spec §4.4.2's "timestamp_end... ignored
// during normal decode... and only consulted at packet end" rule.
func (d *Decoder) onUnsignedInt(fc *traceir.IntegerFieldClass, v uint64) {
	d.cache.Record(fc.ID(), v)
	if !d.inPacketContext && fc.MappedClock != nil {
		d.recordClock(fc.MappedClock, fc.BitWidth, v)
	}
}

func (d *Decoder) onSignedInt(fc *traceir.IntegerFieldClass, v int64) {
	mask := ^uint64(0)
	if fc.BitWidth < 64 {
		mask = uint64(1)<<fc.BitWidth - 1
	}
	raw := uint64(v) & mask
	d.cache.Record(fc.ID(), raw)
	if !d.inPacketContext && fc.MappedClock != nil {
		d.recordClock(fc.MappedClock, fc.BitWidth, raw)
	}
}

func (d *Decoder) onEnumValue(fc *traceir.EnumerationFieldClass, v uint64) {
	d.cache.Record(fc.ID(), v)
	if !d.inPacketContext && fc.Container.MappedClock != nil {
		d.recordClock(fc.Container.MappedClock, fc.Container.BitWidth, v)
	}
}

func (d *Decoder) recordClock(cc *traceir.ClockClass, width uint8, raw uint64) {
	if d.eventClockValues == nil {
		d.eventClockValues = make(map[*traceir.ClockClass]uint64)
	}
	d.eventClockValues[cc] = d.clocks.Extrapolate(cc, width, raw)
}

func (d *Decoder) resolveSequenceLength(fc *traceir.DynamicSequenceFieldClass) (uint64, status.Status) {
	if fc.LengthPath == nil {
		return 0, status.Invalid
	}
	return fieldpathcache.Resolve(d.cache, fc.LengthPath)
}

// selectVariantOption resolves a variant's tag path to an option index, per
// spec §4.3's borrow_variant_field_class hook. When the tag targets an
// enumeration field class, the resolved value's label picks the
// same-named option (the conventional CTF idiom); otherwise the raw value
// is used directly as an option index.
func (d *Decoder) selectVariantOption(fc *traceir.VariantFieldClass) (int, status.Status) {
	if fc.TagPath == nil {
		return 0, status.Invalid
	}
	raw, st := fieldpathcache.Resolve(d.cache, fc.TagPath)
	if st != status.OK {
		return 0, st
	}
	if ec, ok := d.enumClasses[fc.TagPath.TargetFCID]; ok {
		label, ok := ec.LabelFor(raw)
		if !ok {
			return 0, status.Invalid
		}
		idx, ok := fc.OptionByLabel(label)
		if !ok {
			return 0, status.Invalid
		}
		return idx, status.OK
	}
	idx := int(raw)
	if idx < 0 || idx >= len(fc.Options) {
		return 0, status.Invalid
	}
	return idx, status.OK
}

// resolveStreamClass resolves (or, on the first packet, creates) the
// stream this decoder feeds, per spec §4.4.2's AfterTraceHeader transition,
// and enforces that every later packet agrees with it (scenario S5).
func (d *Decoder) resolveStreamClass() status.Status {
	sc, id, st := d.extractStreamSelectors()
	if st != status.OK {
		return st
	}

	if d.streamClass != nil {
		if sc != nil && sc != d.streamClass {
			return status.Invalid
		}
		if id != d.stream.ID {
			return status.Invalid
		}
		return status.OK
	}

	if sc == nil {
		if len(d.traceClass.StreamClasses) != 1 {
			return status.Invalid
		}
		sc = d.traceClass.StreamClasses[0]
	}
	d.streamClass = sc
	if err := sc.ResolveFieldPaths(); err != nil {
		return status.Invalid
	}
	d.buildEnumIndex()

	stream, ok := d.trace.StreamByID(sc, id)
	if !ok {
		var err error
		stream, err = d.trace.CreateStream(sc, id)
		if err != nil {
			return status.Invalid
		}
	}
	d.stream = stream
	return status.OK
}

// extractStreamSelectors reads stream_id/stream_instance_id from the
// decoded packet header, per the recognized packet-header fields of spec
// §6.1. stream_id selects a stream class by position in
// TraceClass.StreamClasses (this port's field classes carry no separate
// numeric stream-class ID of their own, unlike the original's ctf-meta
// layer, so registration order stands in for it — see DESIGN.md). A
// missing stream_instance_id defaults the stream ID to 0 rather than the
// original's sentinel -1, since this port's Stream.ID is an unsigned type
// and there is, in the common single-stream-per-file case, exactly one
// stream to resolve regardless of the sentinel's value.
func (d *Decoder) extractStreamSelectors() (*traceir.StreamClass, uint64, status.Status) {
	var id uint64
	if d.packetHeaderField == nil {
		return nil, id, status.OK
	}
	hf, ok := d.packetHeaderField.(*traceir.StructureField)
	if !ok {
		return nil, id, status.OK
	}
	hc, ok := hf.Class().(*traceir.StructureFieldClass)
	if !ok {
		return nil, id, status.OK
	}

	var sc *traceir.StreamClass
	if idx, ok := hc.MemberIndex("stream_id"); ok {
		if v, ok := extractUint(hf.MemberByIndex(idx)); ok {
			si := int(v)
			if si < 0 || si >= len(d.traceClass.StreamClasses) {
				return nil, 0, status.Invalid
			}
			sc = d.traceClass.StreamClasses[si]
		}
	}
	if idx, ok := hc.MemberIndex("stream_instance_id"); ok {
		if v, ok := extractUint(hf.MemberByIndex(idx)); ok {
			id = v
		}
	}
	return sc, id, status.OK
}

// extractUint reads the raw value out of an integer or enumeration field,
// the two field kinds spec §6.1's recognized named fields are ever
// declared as.
func extractUint(f traceir.Field) (uint64, bool) {
	switch v := f.(type) {
	case *traceir.IntegerField:
		return v.Value, true
	case *traceir.EnumerationField:
		return v.Value, true
	default:
		return 0, false
	}
}

// resolvePacketSizes computes packet/content sizes and captures the
// carried-through packet properties, per spec §4.4.2's AfterPacketCtx rules
// and SPEC_FULL.md §9's packet-property supplement.
func (d *Decoder) resolvePacketSizes() status.Status {
	d.packetSizeBits = -1
	d.contentSizeBits = -1
	d.hasPacketSeqNum = false
	d.hasEventsDiscarded = false
	d.hasPacketTimestampBegin = false
	d.hasPendingTimestampEnd = false

	ctxSF, ok := d.packetContextField.(*traceir.StructureField)
	if !ok {
		d.contentSizeBits = d.packetSizeBits
		return status.OK
	}
	ctxClass, ok := ctxSF.Class().(*traceir.StructureFieldClass)
	if !ok {
		return status.OK
	}

	if idx, ok := ctxClass.MemberIndex("packet_size"); ok {
		if v, ok := extractUint(ctxSF.MemberByIndex(idx)); ok {
			if v == 0 || v%8 != 0 {
				return status.Invalid
			}
			d.packetSizeBits = int64(v)
		}
	}
	if idx, ok := ctxClass.MemberIndex("content_size"); ok {
		if v, ok := extractUint(ctxSF.MemberByIndex(idx)); ok {
			d.contentSizeBits = int64(v)
		}
	}
	if d.contentSizeBits < 0 {
		d.contentSizeBits = d.packetSizeBits
	}
	if d.packetSizeBits >= 0 && d.contentSizeBits > d.packetSizeBits {
		return status.Invalid
	}
	if d.packetSizeBits < 0 {
		d.packetSizeBits = d.contentSizeBits
	}

	if idx, ok := ctxClass.MemberIndex("packet_seq_num"); ok {
		if v, ok := extractUint(ctxSF.MemberByIndex(idx)); ok {
			d.packetSeqNum = v
			d.hasPacketSeqNum = true
		}
	}
	if idx, ok := ctxClass.MemberIndex("events_discarded"); ok {
		if v, ok := extractUint(ctxSF.MemberByIndex(idx)); ok {
			d.eventsDiscarded = v
			d.hasEventsDiscarded = true
		}
	}
	if idx, ok := ctxClass.MemberIndex("timestamp_begin"); ok {
		if v, ok := extractUint(ctxSF.MemberByIndex(idx)); ok {
			d.packetTimestampBegin = v
			d.hasPacketTimestampBegin = true
			if ic, ok := ctxClass.Members[idx].Class.(*traceir.IntegerFieldClass); ok {
				d.timestampBeginWidth = ic.BitWidth
			}
		}
	}
	if idx, ok := ctxClass.MemberIndex("timestamp_end"); ok {
		if v, ok := extractUint(ctxSF.MemberByIndex(idx)); ok {
			d.pendingTimestampEnd = v
			d.hasPendingTimestampEnd = true
			if ic, ok := ctxClass.Members[idx].Class.(*traceir.IntegerFieldClass); ok {
				d.timestampEndWidth = ic.BitWidth
			}
		}
	}
	return status.OK
}

// materializePacket acquires a packet from the stream's pool and installs
// the decoded header/context fields and carried-through properties, per
// spec §4.4.2's EmitNewPacket transition.
func (d *Decoder) materializePacket() status.Status {
	p := d.stream.CreatePacket()
	p.Header = d.packetHeaderField
	p.Context = d.packetContextField
	p.PacketSizeBits = d.packetSizeBits
	p.ContentSizeBits = d.contentSizeBits

	if d.hasPacketSeqNum {
		p.HasSeqNum = true
		p.SeqNum = d.packetSeqNum
	}
	if d.hasEventsDiscarded {
		p.HasEventsDiscarded = true
		p.EventsDiscarded = d.eventsDiscarded
	}
	if d.hasPacketTimestampBegin {
		p.HasBeginClockValue = true
		if d.streamClass.DefaultClockClass != nil {
			p.BeginClockValue = d.clocks.Extrapolate(d.streamClass.DefaultClockClass, d.timestampBeginWidth, d.packetTimestampBegin)
		} else {
			p.BeginClockValue = d.packetTimestampBegin
		}
	}

	if st := p.Validate(); st.IsFatal() {
		return st
	} else if st == status.Warning {
		d.log.Warn("ctf: packet timestamp_end precedes timestamp_begin", zap.Uint64("stream_id", d.stream.ID))
	}

	d.packet = p
	return status.OK
}

// resolveEventClass selects the event class for the just-decoded event
// header, per spec §4.4.2's AfterEvHeader lookup order: a variant named
// "v" whose selected option has an "id" member, else a plain "id" member,
// else the stream class must declare exactly one event class.
func (d *Decoder) resolveEventClass() (*traceir.EventClass, status.Status) {
	id, ok := d.extractEventClassID(d.eventHeaderField)
	if !ok {
		if len(d.streamClass.EventClasses) != 1 {
			return nil, status.Invalid
		}
		return d.streamClass.EventClasses[0], status.OK
	}
	ec, ok := d.streamClass.EventClassByID(id)
	if !ok {
		return nil, status.Invalid
	}
	return ec, status.OK
}

func (d *Decoder) extractEventClassID(headerField traceir.Field) (uint64, bool) {
	hf, ok := headerField.(*traceir.StructureField)
	if !ok {
		return 0, false
	}
	hc, ok := hf.Class().(*traceir.StructureFieldClass)
	if !ok {
		return 0, false
	}

	if idx, ok := hc.MemberIndex("v"); ok {
		if vf, ok := hf.MemberByIndex(idx).(*traceir.VariantField); ok {
			if opt, ok := vf.SelectedOption.(*traceir.StructureField); ok {
				if optClass, ok := opt.Class().(*traceir.StructureFieldClass); ok {
					if idIdx, ok := optClass.MemberIndex("id"); ok {
						if v, ok := extractUint(opt.MemberByIndex(idIdx)); ok {
							return v, true
						}
					}
				}
			}
		}
	}
	if idx, ok := hc.MemberIndex("id"); ok {
		if v, ok := extractUint(hf.MemberByIndex(idx)); ok {
			return v, true
		}
	}
	return 0, false
}

// emitEvent builds the decoded event and its notification, per spec
// §4.4.2's EmitEvent step.
func (d *Decoder) emitEvent() *notification.Notification {
	ev := traceir.NewEvent(d.eventClass, d.packet)
	ev.Header = d.eventHeaderField
	ev.StreamEventContext = d.streamEventCtxField
	ev.EventContext = d.eventCtxField
	ev.Payload = d.eventPayloadField
	for cc, v := range d.eventClockValues {
		ev.SetClockValue(cc, v)
	}

	n := d.pools.Acquire(notification.KindEvent)
	n.Packet = d.packet
	n.Event = ev
	if d.streamClass.DefaultClockClass != nil {
		if v, ok := d.eventClockValues[d.streamClass.DefaultClockClass]; ok {
			n.HasDefaultClockValue = true
			n.DefaultClockValue = v
		}
	}
	return n
}

// emitEndOfPacket applies the deferred timestamp_end clock update (spec
// §4.4.2: "events within the packet do not see a time jump"), advances the
// stream's previous-packet pointer, and builds the packet-end
// notification.
func (d *Decoder) emitEndOfPacket() *notification.Notification {
	if d.hasPendingTimestampEnd {
		d.packet.HasEndClockValue = true
		if d.streamClass.DefaultClockClass != nil {
			d.packet.EndClockValue = d.clocks.Extrapolate(d.streamClass.DefaultClockClass, d.timestampEndWidth, d.pendingTimestampEnd)
		} else {
			d.packet.EndClockValue = d.pendingTimestampEnd
		}
	}

	n := d.pools.Acquire(notification.KindPacketEnd)
	n.Packet = d.packet
	d.stream.AdvancePacket(d.packet)
	return n
}

// skipPadding advances the cursor over the packet's trailing padding (spec
// §4.4.2's SkipPadding transition), requesting more buffer from the medium
// as needed.
func (d *Decoder) skipPadding() status.Status {
	if d.packetSizeBits < 0 {
		return status.OK
	}
	remaining := uint64(d.packetSizeBits) - d.packetAt()
	for remaining > 0 {
		n := remaining
		if n > 64 {
			n = 64
		}
		_, st := d.cur.ReadBits(uint8(n), traceir.BigEndian)
		if st == status.Again {
			chunk, mst := d.med.RequestBytes(context.Background(), 4096)
			switch mst {
			case status.OK:
				d.cur.Feed(chunk)
			case status.Again:
				return status.Again
			case status.End:
				return status.Invalid
			default:
				return mst
			}
			continue
		}
		if st != status.OK {
			return st
		}
		remaining -= n
	}
	return status.OK
}

// buildEnumIndex walks every field class reachable from the resolved
// stream class, recording every enumeration field class by its stable ID
// so selectVariantOption can translate a resolved tag value into a label
// (spec §4.3's borrow_variant_field_class hook).
func (d *Decoder) buildEnumIndex() {
	d.enumClasses = make(map[uint64]*traceir.EnumerationFieldClass)
	visited := mapset.NewThreadUnsafeSet[traceir.FieldClass]()
	d.collectEnumClasses(d.traceClass.PacketHeaderFieldClass, visited)
	d.collectEnumClasses(d.streamClass.PacketContextFieldClass, visited)
	d.collectEnumClasses(d.streamClass.EventHeaderFieldClass, visited)
	d.collectEnumClasses(d.streamClass.EventCommonContextFieldClass, visited)
	for _, ec := range d.streamClass.EventClasses {
		d.collectEnumClasses(ec.SpecificContextFieldClass, visited)
		d.collectEnumClasses(ec.PayloadFieldClass, visited)
	}
}

// collectEnumClasses walks fc's field-class tree, recording every
// enumeration field class reachable from it. visited guards against a
// malformed field-class graph that shares a node through more than one
// path (or, pathologically, a cycle): nothing in pkg/traceir's
// construction API prevents a caller from wiring a structure/variant field
// class into two places at once, grounded on `translator_worker.go`'s
// skippedLayers membership set for "already handled, do not reprocess"
// bookkeeping.
func (d *Decoder) collectEnumClasses(fc traceir.FieldClass, visited mapset.Set[traceir.FieldClass]) {
	switch v := fc.(type) {
	case nil:
		return
	case *traceir.EnumerationFieldClass:
		if !visited.Add(v) {
			return
		}
		d.enumClasses[v.ID()] = v
	case *traceir.StructureFieldClass:
		if !visited.Add(v) {
			return
		}
		for _, m := range v.Members {
			d.collectEnumClasses(m.Class, visited)
		}
	case *traceir.VariantFieldClass:
		if !visited.Add(v) {
			return
		}
		for _, o := range v.Options {
			d.collectEnumClasses(o.Class, visited)
		}
	case *traceir.StaticArrayFieldClass:
		if !visited.Add(v) {
			return
		}
		d.collectEnumClasses(v.Element, visited)
	case *traceir.DynamicSequenceFieldClass:
		if !visited.Add(v) {
			return
		}
		d.collectEnumClasses(v.Element, visited)
	}
}
