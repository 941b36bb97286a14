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

package btr

import (
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/status"
	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/traceir"
)

// Cursor is a byte-granular, bit-addressable read position over whatever
// bytes a medium has handed over so far (spec §4.1, §6.1). It never blocks:
// a read that runs past the fed bytes returns status.Again, leaving the
// cursor exactly where it was so the caller can Feed more bytes and retry.
type Cursor struct {
	buf    []byte
	bitPos uint64 // bit offset into buf, from buf[0] bit 7

	consumed uint64 // total bits ever consumed, across Compact calls
}

// NewCursor returns an empty cursor ready to be Fed.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Feed appends newly available bytes from the medium.
func (c *Cursor) Feed(data []byte) {
	c.buf = append(c.buf, data...)
}

func (c *Cursor) availableBits() uint64 {
	return uint64(len(c.buf))*8 - c.bitPos
}

// Compact drops fully-consumed leading bytes so a long-running decode does
// not retain bytes it will never revisit.
func (c *Cursor) Compact() {
	consumedBytes := c.bitPos / 8
	if consumedBytes == 0 {
		return
	}
	c.buf = append([]byte(nil), c.buf[consumedBytes:]...)
	c.bitPos -= consumedBytes * 8
}

// BitsConsumed returns the total number of bits read since the cursor was
// created, across any number of Compact calls — the figure packet/content
// size discipline (spec §4.4.4) is checked against.
func (c *Cursor) BitsConsumed() uint64 {
	return c.consumed
}

// Align advances the cursor to the next multiple of alignmentBits,
// consuming the skipped padding bits. alignmentBits <= 1 is a no-op.
func (c *Cursor) Align(alignmentBits uint8) status.Status {
	if alignmentBits <= 1 {
		return status.OK
	}
	abs := c.consumed
	rem := abs % uint64(alignmentBits)
	if rem == 0 {
		return status.OK
	}
	skip := uint64(alignmentBits) - rem
	if c.availableBits() < skip {
		return status.Again
	}
	c.bitPos += skip
	c.consumed += skip
	return status.OK
}

// ReadBits reads the next n bits (1-64) according to order, advancing the
// cursor only on success. Big-endian fields are bit-packed MSB-first across
// byte boundaries: the first bit read is the most significant bit of the
// result. Little-endian fields are bit-packed LSB-first within each byte,
// bytes assembled low-to-high (the first bit read is the least significant
// bit of the result) — the byte-aligned, multiple-of-8-width case takes a
// whole-byte shortcut that is equivalent to, but faster than, the general
// bit-by-bit LE path below (spec §6.1).
func (c *Cursor) ReadBits(n uint8, order traceir.ByteOrder) (uint64, status.Status) {
	if n == 0 {
		return 0, status.OK
	}
	if uint64(n) > c.availableBits() {
		return 0, status.Again
	}

	if order == traceir.LittleEndian && c.bitPos%8 == 0 && n%8 == 0 {
		nBytes := int(n / 8)
		start := int(c.bitPos / 8)
		var v uint64
		for i := nBytes - 1; i >= 0; i-- {
			v = v<<8 | uint64(c.buf[start+i])
		}
		c.bitPos += uint64(n)
		c.consumed += uint64(n)
		return v, status.OK
	}

	var v uint64
	if order == traceir.LittleEndian {
		for i := uint8(0); i < n; i++ {
			byteIdx := c.bitPos / 8
			bitIdx := c.bitPos % 8
			bit := (c.buf[byteIdx] >> bitIdx) & 1
			v |= uint64(bit) << i
			c.bitPos++
		}
	} else {
		for i := uint8(0); i < n; i++ {
			byteIdx := c.bitPos / 8
			bitIdx := 7 - (c.bitPos % 8)
			bit := (c.buf[byteIdx] >> bitIdx) & 1
			v = v<<1 | uint64(bit)
			c.bitPos++
		}
	}
	c.consumed += uint64(n)
	return v, status.OK
}
