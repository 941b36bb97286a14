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

package object

import (
	"sync/atomic"

	sf "github.com/wissance/stringFormatter"
)

// Freezable is the embeddable one-way freeze flag described in spec §3.1 and
// §4.1: once frozen, every write-facing operation on the embedding type must
// assert "hot" on entry. Freeze is idempotent and carries no unfreeze path.
type Freezable struct {
	frozen atomic.Bool
}

// Freeze sets the frozen flag. Calling Freeze on an already-frozen object is
// a no-op, satisfying invariant 5 of spec §8 (`freeze(freeze(x)) == freeze(x)`).
func (f *Freezable) Freeze() {
	f.frozen.Store(true)
}

// IsFrozen reports whether Freeze has been called.
func (f *Freezable) IsFrozen() bool {
	return f.frozen.Load()
}

// AssertHot panics with the given subject name if the object is frozen. The
// setter methods of pkg/traceir's freezable classes and fields call this
// first.
func (f *Freezable) AssertHot(subject string) {
	if f.frozen.Load() {
		panic(sf.Format("object: {0} is frozen", subject))
	}
}

// Freezer is implemented by any type with structural sub-objects that must
// freeze transitively (spec §3.1: "a frozen event freezes its packet; a
// frozen stream class freezes its event classes").
type Freezer interface {
	Freeze()
	IsFrozen() bool
}

// FreezeAll freezes every freezer in order, tolerating a nil entry so
// callers can pass optional sub-objects (e.g. a stream class with no
// packet-context field class) without branching.
func FreezeAll(freezers ...Freezer) {
	for _, f := range freezers {
		if f != nil {
			f.Freeze()
		}
	}
}
