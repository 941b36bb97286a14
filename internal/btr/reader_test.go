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

func TestReaderDecodesUnsignedInteger(t *testing.T) {
	fc := traceir.NewIntegerFieldClass(16)
	fc.Alignment = 8

	var got uint64
	r := btr.NewReader(btr.Callbacks{
		UnsignedInt: func(_ *traceir.IntegerFieldClass, v uint64) { got = v },
	})
	r.StartDecoding(fc)

	cur := btr.NewCursor()
	cur.Feed([]byte{0x01, 0x02})

	f, st := r.Continue(cur)
	require.Equal(t, status.OK, st)
	require.Equal(t, uint64(0x0102), got)
	require.Equal(t, uint64(0x0102), f.(*traceir.IntegerField).Value)
}

func TestReaderSuspendsOnShortInput(t *testing.T) {
	fc := traceir.NewIntegerFieldClass(32)
	fc.Alignment = 8

	r := btr.NewReader(btr.Callbacks{})
	r.StartDecoding(fc)

	cur := btr.NewCursor()
	cur.Feed([]byte{0xAA, 0xBB})

	_, st := r.Continue(cur)
	require.Equal(t, status.Again, st)
	require.True(t, r.InProgress())

	cur.Feed([]byte{0xCC, 0xDD})
	f, st := r.Continue(cur)
	require.Equal(t, status.OK, st)
	require.Equal(t, uint64(0xAABBCCDD), f.(*traceir.IntegerField).Value)
	require.False(t, r.InProgress())
}

func TestReaderDecodesStructureOfIntegers(t *testing.T) {
	a := traceir.NewIntegerFieldClass(8)
	a.Alignment = 8
	b := traceir.NewIntegerFieldClass(8)
	b.Alignment = 8

	sc := traceir.NewStructureFieldClass()
	sc.AppendMember("a", a)
	sc.AppendMember("b", b)

	var begins, ends int
	r := btr.NewReader(btr.Callbacks{
		CompoundBegin: func(traceir.FieldClass) { begins++ },
		CompoundEnd:   func(traceir.FieldClass) { ends++ },
	})
	r.StartDecoding(sc)

	cur := btr.NewCursor()
	cur.Feed([]byte{0x07, 0x09})

	f, st := r.Continue(cur)
	require.Equal(t, status.OK, st)
	require.Equal(t, 1, begins)
	require.Equal(t, 1, ends)

	sf := f.(*traceir.StructureField)
	av, _ := sf.MemberByName("a")
	bv, _ := sf.MemberByName("b")
	require.EqualValues(t, 0x07, av.(*traceir.IntegerField).Value)
	require.EqualValues(t, 0x09, bv.(*traceir.IntegerField).Value)
}

func TestReaderDecodesStringUntilNul(t *testing.T) {
	sc := traceir.NewStringFieldClass()

	r := btr.NewReader(btr.Callbacks{})
	r.StartDecoding(sc)

	cur := btr.NewCursor()
	cur.Feed([]byte("hi\x00trailing"))

	f, st := r.Continue(cur)
	require.Equal(t, status.OK, st)
	require.Equal(t, "hi", f.(*traceir.StringField).Value)
}

func TestReaderDecodesDynamicSequenceUsingResolvedLength(t *testing.T) {
	elem := traceir.NewIntegerFieldClass(8)
	elem.Alignment = 8
	dc := traceir.NewDynamicSequenceFieldClass(elem, "stream.event.context.len")

	r := btr.NewReader(btr.Callbacks{
		SequenceLength: func(*traceir.DynamicSequenceFieldClass) (uint64, status.Status) {
			return 3, status.OK
		},
	})
	r.StartDecoding(dc)

	cur := btr.NewCursor()
	cur.Feed([]byte{1, 2, 3})

	f, st := r.Continue(cur)
	require.Equal(t, status.OK, st)
	seq := f.(*traceir.DynamicSequenceField)
	require.Len(t, seq.Elements, 3)
	require.EqualValues(t, 2, seq.Elements[1].(*traceir.IntegerField).Value)
}

func TestReaderDecodesVariantUsingSelectedOption(t *testing.T) {
	optA := traceir.NewIntegerFieldClass(8)
	optA.Alignment = 8
	optB := traceir.NewIntegerFieldClass(16)
	optB.Alignment = 8

	vc := traceir.NewVariantFieldClass("event.header.tag")
	vc.AppendOption("a", optA)
	vc.AppendOption("b", optB)

	r := btr.NewReader(btr.Callbacks{
		SelectVariantOption: func(*traceir.VariantFieldClass) (int, status.Status) {
			return 1, status.OK // select "b"
		},
	})
	r.StartDecoding(vc)

	cur := btr.NewCursor()
	cur.Feed([]byte{0x01, 0x02})

	f, st := r.Continue(cur)
	require.Equal(t, status.OK, st)
	vf := f.(*traceir.VariantField)
	require.Equal(t, 1, vf.SelectedIndex)
	require.EqualValues(t, 0x0102, vf.SelectedOption.(*traceir.IntegerField).Value)
}

func TestReaderUnsupportedWithoutSequenceLengthCallback(t *testing.T) {
	elem := traceir.NewIntegerFieldClass(8)
	dc := traceir.NewDynamicSequenceFieldClass(elem, "x")

	r := btr.NewReader(btr.Callbacks{})
	r.StartDecoding(dc)

	cur := btr.NewCursor()
	cur.Feed([]byte{1, 2, 3})

	_, st := r.Continue(cur)
	require.Equal(t, status.Unsupported, st)
}
