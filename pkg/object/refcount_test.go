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

package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
)

func TestRefRoundTrip(t *testing.T) {
	var destroyed int
	var r object.Ref
	r.Init(func() { destroyed++ })

	require.EqualValues(t, 1, r.Count())

	r.Get()
	r.Get()
	require.EqualValues(t, 3, r.Count())

	require.EqualValues(t, 2, r.Put())
	require.EqualValues(t, 1, r.Put())
	require.Equal(t, 0, destroyed)

	require.EqualValues(t, 0, r.Put())
	require.Equal(t, 1, destroyed)
}

func TestRefGetOnDeadObjectPanics(t *testing.T) {
	var r object.Ref
	r.Init(func() {})
	r.Put()

	require.Panics(t, func() { r.Get() })
}

func TestFreezeIsIdempotent(t *testing.T) {
	var f object.Freezable
	require.False(t, f.IsFrozen())

	f.Freeze()
	f.Freeze()
	require.True(t, f.IsFrozen())

	require.Panics(t, func() { f.AssertHot("widget") })
}

func TestPoolReusesReleasedInstances(t *testing.T) {
	type widget struct{ n int }

	var resets int
	p := object.NewPool(
		func() *widget { return &widget{n: -1} },
		func(w *widget) { w.n = 0; resets++ },
	)

	a := p.Acquire()
	require.Equal(t, -1, a.n)
	a.n = 42

	p.Release(a)
	require.Equal(t, 1, p.Len())

	b := p.Acquire()
	require.Same(t, a, b)
	require.Equal(t, 0, b.n)
	require.Equal(t, 1, resets)
	require.Equal(t, 0, p.Len())
}

func TestPoolMaxBoundsRetention(t *testing.T) {
	type widget struct{}

	p := object.NewPool(func() *widget { return &widget{} }, nil)
	p.Max = 1

	p.Release(&widget{})
	p.Release(&widget{})
	require.Equal(t, 1, p.Len())
}
