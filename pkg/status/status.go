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

// Package status defines the one closed status set shared by every
// subsystem in this module — the BTR, the CTF iterator, the graph
// scheduler, and trace-IR validation all report through the same small set
// of outcomes, per spec §7's "Taxonomy (closed set)". Not every status
// applies to every subsystem; each subsystem's doc comments say which
// subset it uses.
package status

// Status is the closed outcome set of spec §7, extended with Warning (a
// non-fatal outcome [traceir.Packet.Validate] uses for the
// inconsistent-timestamps open question, SPEC_FULL.md §9). The BTR reports
// running out of fed bytes as Again; End means a medium or source is
// exhausted.
type Status int

const (
	OK Status = iota
	End
	Again
	Canceled
	Invalid
	RefusesPort
	NoMem
	Unsupported
	NotFound
	Warning
	Error
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case End:
		return "end"
	case Again:
		return "again"
	case Canceled:
		return "canceled"
	case Invalid:
		return "invalid"
	case RefusesPort:
		return "refuses_port"
	case NoMem:
		return "nomem"
	case Unsupported:
		return "unsupported"
	case NotFound:
		return "not_found"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// IsFatal reports whether s terminates the operation it was returned from
// (anything other than OK/End/Again/Warning).
func (s Status) IsFatal() bool {
	switch s {
	case OK, End, Again, Warning:
		return false
	default:
		return true
	}
}
