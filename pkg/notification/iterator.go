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

package notification

import "github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"

// Source is implemented by whatever produces one notification at a time for
// an [Iterator] — typically a CTF decoder or a filter component's internal
// logic. It returns status.Again when no notification is ready yet but more
// will be, and status.End when the source is exhausted (spec §4.5, §5).
type Source interface {
	Pull() (*Notification, status.Status)
}

// Iterator batches notifications pulled one at a time from a [Source] into
// caller-sized buffers (spec §4.5: "Its next(buffer, capacity) fills up to
// capacity notification references and returns the count plus a status").
type Iterator struct {
	source Source
	done   bool

	// pending holds a non-OK status the source returned after a partial
	// batch had already been filled; the next call to Next reports it.
	pending    status.Status
	hasPending bool
}

// NewIterator wraps source in a batching [Iterator].
func NewIterator(source Source) *Iterator {
	return &Iterator{source: source}
}

// Next fills buf with up to len(buf) notifications and returns how many
// were written plus a status. Per spec §5, notifications within one
// iterator are delivered in strict source order; Next stops batching as
// soon as the source returns anything other than status.OK so it never
// silently swallows an again/end/error signal mid-batch.
func (it *Iterator) Next(buf []*Notification) (int, status.Status) {
	if it.done {
		return 0, status.End
	}
	if it.hasPending {
		it.hasPending = false
		return 0, it.pending
	}

	count := 0
	for count < len(buf) {
		n, st := it.source.Pull()
		switch st {
		case status.OK:
			n.Deliver()
			buf[count] = n
			count++
		case status.End:
			it.done = true
			return count, pick(count, status.End)
		default:
			if count > 0 {
				it.pending = st
				it.hasPending = true
			}
			return count, pick(count, st)
		}
	}
	return count, status.OK
}

// pick returns st unless the batch already produced something, in which
// case OK is returned now and st is left for the next call — a partial
// batch is still useful to the caller and must not be discarded.
func pick(count int, st status.Status) status.Status {
	if count > 0 {
		return status.OK
	}
	return st
}
