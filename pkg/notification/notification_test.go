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

package notification_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/notification"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

func TestPoolsRecycleEventNotifications(t *testing.T) {
	pools := notification.NewPools()

	n1 := pools.Acquire(notification.KindEvent)
	require.Equal(t, notification.KindEvent, n1.Kind)
	n1.Put()

	require.Equal(t, 1, pools.Event.Len())

	n2 := pools.Acquire(notification.KindEvent)
	require.Same(t, n1, n2)
}

func TestDeliverFreezesOnce(t *testing.T) {
	n := &notification.Notification{Kind: notification.KindStreamBegin}
	require.False(t, n.IsFrozen())
	n.Deliver()
	require.True(t, n.IsFrozen())
	n.Deliver() // idempotent
	require.True(t, n.IsFrozen())
}

type sliceSource struct {
	items []status.Status
	i     int
	pools *notification.Pools
}

func (s *sliceSource) Pull() (*notification.Notification, status.Status) {
	if s.i >= len(s.items) {
		return nil, status.End
	}
	st := s.items[s.i]
	s.i++
	if st != status.OK {
		return nil, st
	}
	return s.pools.Acquire(notification.KindEvent), status.OK
}

func TestIteratorBatchesUntilNonOK(t *testing.T) {
	src := &sliceSource{
		items: []status.Status{status.OK, status.OK, status.Again, status.OK, status.End},
		pools: notification.NewPools(),
	}
	it := notification.NewIterator(src)

	buf := make([]*notification.Notification, 4)
	n, st := it.Next(buf)
	require.Equal(t, 2, n)
	require.Equal(t, status.OK, st)

	n, st = it.Next(buf)
	require.Equal(t, 0, n)
	require.Equal(t, status.Again, st)

	n, st = it.Next(buf)
	require.Equal(t, 1, n)
	require.Equal(t, status.OK, st)

	n, st = it.Next(buf)
	require.Equal(t, 0, n)
	require.Equal(t, status.End, st)
}
