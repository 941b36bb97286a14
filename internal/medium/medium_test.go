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

package medium_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/babeltrace-go/internal/medium"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

func TestBufferMediumServesThenEnds(t *testing.T) {
	m := medium.NewBufferMedium("trace", []byte{1, 2, 3, 4})

	b, st := m.RequestBytes(context.Background(), 2)
	require.Equal(t, status.OK, st)
	require.Equal(t, []byte{1, 2}, b)

	b, st = m.RequestBytes(context.Background(), 10)
	require.Equal(t, status.OK, st)
	require.Equal(t, []byte{3, 4}, b)

	_, st = m.RequestBytes(context.Background(), 1)
	require.Equal(t, status.End, st)
}

func TestBufferMediumSeek(t *testing.T) {
	m := medium.NewBufferMedium("trace", []byte{1, 2, 3, 4})
	require.Equal(t, status.OK, m.Seek(2))

	b, st := m.RequestBytes(context.Background(), 2)
	require.Equal(t, status.OK, st)
	require.Equal(t, []byte{3, 4}, b)

	require.Equal(t, status.Invalid, m.Seek(-1))
}

func TestFileMediumReadsWhatIsWritten(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xAA, 0xBB, 0xCC}, 0o644))

	m, err := medium.NewFileMedium(path, nil)
	require.NoError(t, err)
	defer m.Close()

	b, st := m.RequestBytes(context.Background(), 3)
	require.Equal(t, status.OK, st)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC}, b)

	_, st = m.RequestBytes(context.Background(), 1)
	require.Equal(t, status.Again, st)
}

func TestFileMediumWaitForMoreTimesOutWithoutWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.bin")
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644))

	m, err := medium.NewFileMedium(path, nil)
	require.NoError(t, err)
	defer m.Close()

	st := m.WaitForMore(context.Background(), 50*time.Millisecond)
	require.Equal(t, status.Again, st)
}
