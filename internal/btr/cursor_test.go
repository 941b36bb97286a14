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

package btr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/babeltrace-go/internal/btr"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/traceir"
)

func TestCursorReadBitsBigEndianByteAligned(t *testing.T) {
	c := btr.NewCursor()
	c.Feed([]byte{0x12, 0x34})
	v, st := c.ReadBits(16, traceir.BigEndian)
	require.Equal(t, status.OK, st)
	require.Equal(t, uint64(0x1234), v)
}

func TestCursorReadBitsLittleEndianByteAligned(t *testing.T) {
	c := btr.NewCursor()
	c.Feed([]byte{0x12, 0x34})
	v, st := c.ReadBits(16, traceir.LittleEndian)
	require.Equal(t, status.OK, st)
	require.Equal(t, uint64(0x3412), v)
}

// TestCursorReadBitsLittleEndianSubByte checks the non-byte-aligned LE path:
// bits are taken LSB-first within a byte, then assembled low-to-high as more
// bits are read, not the big-endian bit order the general fallback used to
// apply regardless of byte order.
func TestCursorReadBitsLittleEndianSubByte(t *testing.T) {
	c := btr.NewCursor()
	// 0b10110100 read 4 bits at a time, little-endian: the first nibble
	// read is the byte's low nibble (0100), becoming the low nibble of the
	// result; the second nibble read is the byte's high nibble (1011),
	// becoming the result's high nibble.
	c.Feed([]byte{0xB4})
	lo, st := c.ReadBits(4, traceir.LittleEndian)
	require.Equal(t, status.OK, st)
	require.Equal(t, uint64(0x4), lo)
	hi, st := c.ReadBits(4, traceir.LittleEndian)
	require.Equal(t, status.OK, st)
	require.Equal(t, uint64(0xB), hi)
}

// TestCursorReadBitsLittleEndianUnalignedWidth checks a width that is
// neither byte-aligned nor a multiple of 8, forcing the bit-by-bit LE path
// across two source bytes.
func TestCursorReadBitsLittleEndianUnalignedWidth(t *testing.T) {
	c := btr.NewCursor()
	c.Feed([]byte{0xFF, 0x00})
	// Skip one bit so the 12-bit read below starts unaligned.
	_, st := c.ReadBits(1, traceir.LittleEndian)
	require.Equal(t, status.OK, st)
	v, st := c.ReadBits(12, traceir.LittleEndian)
	require.Equal(t, status.OK, st)
	// Remaining 7 bits of byte 0 (all 1) plus low 5 bits of byte 1 (all 0),
	// assembled LSB-first: the 7 ones land in bits 0-6, the five zero bits
	// from byte 1 land in bits 7-11.
	require.Equal(t, uint64(0x7F), v)
}

func TestCursorReadBitsSuspendsOnShortInput(t *testing.T) {
	c := btr.NewCursor()
	c.Feed([]byte{0xFF})
	_, st := c.ReadBits(16, traceir.BigEndian)
	require.Equal(t, status.Again, st)
}
