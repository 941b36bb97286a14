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

// State is one step of the notification-iterator state machine, grounded
// directly on original_source/plugins/ctf/common/notif-iter/notif-iter.c's
// `enum state` (STATE_INIT through STATE_DONE): this port keeps the same
// state names and transition shape, adapted to the Go field-class/field
// model in pkg/traceir instead of libbabeltrace's C field-type wrappers.
type State int

const (
	StateInit State = iota
	StateTraceHeaderBegin
	StateTraceHeaderContinue
	StateAfterTraceHeader
	StatePacketCtxBegin
	StatePacketCtxContinue
	StateAfterPacketCtx
	StateEmitNewStream
	StateEmitNewPacket
	StateEvHeaderBegin
	StateEvHeaderContinue
	StateAfterEvHeader
	StateStreamEvCtxBegin
	StateStreamEvCtxContinue
	StateEvCtxBegin
	StateEvCtxContinue
	StateEvPayloadBegin
	StateEvPayloadContinue
	StateEmitEvent
	StateEmitEndOfPacket
	StateSkipPacketPadding
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateTraceHeaderBegin:
		return "trace-header-begin"
	case StateTraceHeaderContinue:
		return "trace-header-continue"
	case StateAfterTraceHeader:
		return "after-trace-header"
	case StatePacketCtxBegin:
		return "packet-context-begin"
	case StatePacketCtxContinue:
		return "packet-context-continue"
	case StateAfterPacketCtx:
		return "after-packet-context"
	case StateEmitNewStream:
		return "emit-new-stream"
	case StateEmitNewPacket:
		return "emit-new-packet"
	case StateEvHeaderBegin:
		return "event-header-begin"
	case StateEvHeaderContinue:
		return "event-header-continue"
	case StateAfterEvHeader:
		return "after-event-header"
	case StateStreamEvCtxBegin:
		return "stream-event-context-begin"
	case StateStreamEvCtxContinue:
		return "stream-event-context-continue"
	case StateEvCtxBegin:
		return "event-context-begin"
	case StateEvCtxContinue:
		return "event-context-continue"
	case StateEvPayloadBegin:
		return "event-payload-begin"
	case StateEvPayloadContinue:
		return "event-payload-continue"
	case StateEmitEvent:
		return "emit-event"
	case StateEmitEndOfPacket:
		return "emit-end-of-packet"
	case StateSkipPacketPadding:
		return "skip-packet-padding"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
