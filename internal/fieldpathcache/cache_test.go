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

package fieldpathcache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/babeltrace-go/internal/fieldpathcache"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/traceir"
)

func TestRecordAndLookupRoundTrip(t *testing.T) {
	c := fieldpathcache.New()
	c.Record(42, 7)

	v, ok := c.Lookup(42)
	require.True(t, ok)
	require.EqualValues(t, 7, v)

	_, ok = c.Lookup(43)
	require.False(t, ok)
}

func TestResetDiscardsValues(t *testing.T) {
	c := fieldpathcache.New()
	c.Record(1, 100)
	c.Reset()

	_, ok := c.Lookup(1)
	require.False(t, ok)
}

func TestResolveErrorsOnUnrecordedPath(t *testing.T) {
	c := fieldpathcache.New()
	fp := &traceir.FieldPath{Root: traceir.ScopeEventHeader, TargetFCID: 99}

	_, st := fieldpathcache.Resolve(c, fp)
	require.Equal(t, status.Error, st)
}

func TestResolveReturnsRecordedValue(t *testing.T) {
	c := fieldpathcache.New()
	c.Record(5, 123)
	fp := &traceir.FieldPath{Root: traceir.ScopeEventHeader, TargetFCID: 5}

	v, st := fieldpathcache.Resolve(c, fp)
	require.Equal(t, status.OK, st)
	require.EqualValues(t, 123, v)
}
