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

// Package fieldpathcache implements the stored-value-index table spec §4.2
// calls for: a small registry, keyed by field class identity, of the most
// recently decoded value for every integer/enumeration field class a
// variant tag or dynamic sequence length can reference. The binary type
// reader's SequenceLength and SelectVariantOption callbacks are the only
// consumers (internal/btr); the CTF notification-iterator state machine
// (pkg/ctf) is the only producer, recording a value every time the BTR
// finishes decoding an integer or enumeration field.
package fieldpathcache

import (
	"github.com/zhangyunhao116/skipmap"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/traceir"
)

// Cache maps a field class's stable identity (traceir's fcIDCounter-assigned
// ID) to the value most recently decoded for it. The CTF decoder calls Reset
// at the start of every packet; within a packet, values are not discarded
// between events — each newly decoded value simply overwrites the previous
// one recorded for the same field class.
type Cache struct {
	values *skipmap.Uint64Map[uint64]
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{values: skipmap.NewUint64[uint64]()}
}

// Record stores the most recently decoded value for the field class
// identified by fcID.
func (c *Cache) Record(fcID uint64, value uint64) {
	c.values.Store(fcID, value)
}

// Lookup returns the value recorded for fcID, if any.
func (c *Cache) Lookup(fcID uint64) (uint64, bool) {
	return c.values.Load(fcID)
}

// Reset discards every recorded value, for reuse across scope lifetimes
// (the CTF decoder calls it at the start of each packet).
func (c *Cache) Reset() {
	c.values.Range(func(fcID uint64, _ uint64) bool {
		c.values.Delete(fcID)
		return true
	})
}

// Resolve looks up the value targeted by a resolved field path. Per spec
// §4.2 a field path may only reference an earlier scope, so by the time a
// variant tag or sequence length is resolved the referenced value must
// already be recorded; a miss means the decoder visited scopes out of
// order, which is a programming error rather than a short-input condition,
// so Resolve reports status.Error rather than status.Again.
func Resolve(c *Cache, fp *traceir.FieldPath) (uint64, status.Status) {
	v, ok := c.Lookup(fp.TargetFCID)
	if !ok {
		return 0, status.Error
	}
	return v, status.OK
}
