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

package medium

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	sf "github.com/wissance/stringFormatter"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

// FileMedium tails a trace file that may still be growing on disk — a
// pipeline writing events while the decoder is already reading them. It
// takes the same three-library stance as the sibling pcap-fsnotify module:
// fsnotify to learn when new bytes may have landed, flock to serialize
// reads against a concurrent writer, and retry-go to absorb the occasional
// transient lock contention without surfacing it as a decode error.
type FileMedium struct {
	path string
	file *os.File
	lock *flock.Flock
	log  *zap.Logger

	watcher *fsnotify.Watcher
	pos     int64

	closed atomic.Bool
}

// NewFileMedium opens path for tailing. A nil logger is replaced with
// zap.NewNop(). The caller must call Close when done.
func NewFileMedium(path string, log *zap.Logger) (*FileMedium, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		f.Close()
		w.Close()
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileMedium{
		path:    path,
		file:    f,
		lock:    flock.New(path + ".lock"),
		log:     log,
		watcher: w,
	}, nil
}

// RequestBytes reads up to n bytes starting at the medium's current
// position. It never blocks waiting for the writer: a read that comes up
// short (fewer than n bytes available right now) returns whatever it got
// with status.OK, and a read that finds no new bytes at all returns
// status.Again so the caller tries again later, typically after
// WaitForMore. Lock acquisition is retried with bounded backoff, since a
// writer holding the lock for a single fsync is expected transient
// contention rather than a fatal condition.
func (m *FileMedium) RequestBytes(ctx context.Context, n int) ([]byte, status.Status) {
	if m.closed.Load() {
		return nil, status.Invalid
	}

	err := retry.Do(
		func() error { return m.lock.RLock() },
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		m.log.Warn("filemedium: failed to acquire read lock", zap.String("path", m.path), zap.Error(err))
		return nil, status.Error
	}
	defer m.lock.Unlock()

	buf := make([]byte, n)
	read, err := m.file.ReadAt(buf, m.pos)
	switch {
	case err == nil:
		m.pos += int64(read)
		return buf, status.OK
	case err == io.EOF && read > 0:
		m.pos += int64(read)
		return buf[:read], status.OK
	case err == io.EOF:
		return nil, status.Again
	default:
		m.log.Error("filemedium: read failed", zap.String("path", m.path), zap.Error(err))
		return nil, status.Error
	}
}

// WaitForMore blocks until fsnotify reports a write to (or creation of) the
// tailed file, ctx is done, or timeout elapses; events for other files in
// the watched directory are ignored. It is an opt-in helper for
// callers that would rather sleep than busy-poll on status.Again.
func (m *FileMedium) WaitForMore(ctx context.Context, timeout time.Duration) status.Status {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return status.Canceled
		case <-deadline.C:
			return status.Again
		case ev, ok := <-m.watcher.Events:
			if !ok {
				return status.Error
			}
			if filepath.Clean(ev.Name) == filepath.Clean(m.path) &&
				(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				return status.OK
			}
		case werr, ok := <-m.watcher.Errors:
			if !ok {
				return status.Error
			}
			m.log.Warn("filemedium: watcher error", zap.Error(werr))
		}
	}
}

func (m *FileMedium) Seek(offset int64) status.Status {
	if offset < 0 {
		return status.Invalid
	}
	m.pos = offset
	return status.OK
}

func (m *FileMedium) StreamInfo() (Info, status.Status) {
	return Info{Name: sf.Format("file:{0}", m.path)}, status.OK
}

// Close releases the watcher and underlying file. It is safe to call more
// than once.
func (m *FileMedium) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	werr := m.watcher.Close()
	ferr := m.file.Close()
	if ferr != nil {
		return ferr
	}
	return werr
}
