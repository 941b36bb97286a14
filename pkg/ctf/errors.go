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

package ctf

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
)

// decodeError is the error value a fatal Pull status is classified from.
// reason is a short, stable label (no interpolated values), so it stays
// useful as a metrics bucket even though Error() also embeds st for
// logs.
type decodeError struct {
	st     status.Status
	reason string
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("ctf: %s (%s)", e.reason, e.st)
}

// defaultClassifier buckets this package's own decodeErrors by their
// reason label, and defers to status.DefaultErrClassifier (empty string)
// for anything else, per SPEC_FULL.md §7's "bucket decode failures... for
// metrics without string-matching error text."
var defaultClassifier = status.ErrClassifierFunc(func(err error) string {
	if de, ok := err.(*decodeError); ok {
		return de.reason
	}
	return status.DefaultErrClassifier.Classify(err)
})

// fail builds, classifies, and logs a fatal status before it is returned
// from Pull, so a classifier installed with SetClassifier sees every fatal
// decode error and can bucket it without inspecting the status/reason text.
func (d *Decoder) fail(st status.Status, reason string) status.Status {
	err := &decodeError{st: st, reason: reason}
	class := d.classifier.Classify(err)
	d.log.Error("ctf: decode failed",
		zap.Error(err),
		zap.String("class", class),
		zap.String("status", st.String()),
	)
	return st
}
