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

// Package object implements the shared-object substrate every trace-IR and
// graph entity is built on: reference counting, one-way freezing, and typed
// pools for the high-frequency notification kinds.
package object

import (
	"sync/atomic"

	sf "github.com/wissance/stringFormatter"
)

// Destructor releases whatever a [Ref] holds once its count reaches zero.
// Destructors must release references they hold on children before parents,
// per spec §3.1.
type Destructor func()

// Ref is the embeddable reference-counting base for every shared object in
// the trace-IR and graph packages. It carries no parent/child pointers
// itself — those live in the embedding type — only the count and the
// destructor.
type Ref struct {
	count atomic.Int64
	dtor  Destructor
}

// Init (re-)arms a [Ref] with an initial count of 1 and the destructor to run
// when the count reaches zero. Object pools call Init on every acquire so a
// recycled instance starts from a clean count.
func (r *Ref) Init(dtor Destructor) {
	r.count.Store(1)
	r.dtor = dtor
}

// Get increments the reference count and returns the new value. Get never
// fails; calling Get on an object whose count has already reached zero is a
// programmer error (the object outlived its owner) and panics, matching the
// teacher's fail-fast `recover()`-at-the-boundary discipline rather than
// silently resurrecting a dead object.
func (r *Ref) Get() int64 {
	n := r.count.Add(1)
	if n <= 1 {
		panic(sf.Format("object: Get on a dead object (count={0})", n))
	}
	return n
}

// Put decrements the reference count and runs the destructor exactly once
// when the count reaches zero. Put returns the count after the decrement.
func (r *Ref) Put() int64 {
	n := r.count.Add(-1)
	if n == 0 && r.dtor != nil {
		r.dtor()
	} else if n < 0 {
		panic(sf.Format("object: Put underflow (count={0})", n))
	}
	return n
}

// Count returns the current reference count without mutating it.
func (r *Ref) Count() int64 {
	return r.count.Load()
}
