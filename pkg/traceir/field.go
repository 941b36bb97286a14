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

package traceir

import (
	"math"

	sf "github.com/wissance/stringFormatter"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
)

// Field is an instantiation of a [FieldClass]: a value set once per event
// and retrieved by index or name (spec §3.2). Every concrete field type
// embeds [object.Freezable] so the owning packet/event can freeze its whole
// field tree in one pass (spec §3.1).
type Field interface {
	object.Freezer
	Class() FieldClass
}

// IntegerField holds a decoded integer value as a raw 64-bit pattern;
// SignedValue sign-extends it according to its class.
type IntegerField struct {
	object.Freezable

	class *IntegerFieldClass
	set   bool
	Value uint64
}

func NewIntegerField(class *IntegerFieldClass) *IntegerField {
	return &IntegerField{class: class}
}

func (f *IntegerField) Class() FieldClass { return f.class }

// SetValue sets the field's value. A field is set once per event (spec
// §3.2); setting it again panics.
func (f *IntegerField) SetValue(v uint64) {
	f.AssertHot("integer field")
	if f.set {
		panic(sf.Format("traceir: integer field already set"))
	}
	f.Value = v
	f.set = true
}

// SignedValue returns Value sign-extended per the field class's bit width,
// if the class is signed.
func (f *IntegerField) SignedValue() int64 {
	w := f.class.BitWidth
	if !f.class.Signed || w == 64 {
		return int64(f.Value)
	}
	signBit := uint64(1) << (w - 1)
	if f.Value&signBit != 0 {
		return int64(f.Value) - int64(uint64(1)<<w)
	}
	return int64(f.Value)
}

// EnumerationField holds a decoded enumeration value (the value of its
// integer container) and resolves it to zero or more matching labels.
type EnumerationField struct {
	object.Freezable

	class *EnumerationFieldClass
	Value uint64
}

func NewEnumerationField(class *EnumerationFieldClass) *EnumerationField {
	return &EnumerationField{class: class}
}

func (f *EnumerationField) Class() FieldClass { return f.class }

func (f *EnumerationField) SetValue(v uint64) {
	f.AssertHot("enumeration field")
	f.Value = v
}

// Label returns the first matching label for the field's current value.
func (f *EnumerationField) Label() (string, bool) {
	return f.class.LabelFor(f.Value)
}

// FloatField holds a decoded floating-point value.
type FloatField struct {
	object.Freezable

	class *FloatFieldClass
	Value float64
}

func NewFloatField(class *FloatFieldClass) *FloatField {
	return &FloatField{class: class}
}

func (f *FloatField) Class() FieldClass { return f.class }

func (f *FloatField) SetValue(v float64) {
	f.AssertHot("float field")
	f.Value = v
}

// SetBits sets the value from its raw IEEE-754 bit pattern, the form the
// BTR decodes (spec §4.3: "floating_point(value, class)").
func (f *FloatField) SetBits(bits uint64, width uint8) {
	if width == 32 {
		f.SetValue(float64(math.Float32frombits(uint32(bits))))
		return
	}
	f.SetValue(math.Float64frombits(bits))
}

// StringField holds a decoded UTF-8 string value, possibly assembled from
// multiple chunks (spec §4.3: "string_begin/string/string_end").
type StringField struct {
	object.Freezable

	class *StringFieldClass
	Value string
}

func NewStringField(class *StringFieldClass) *StringField {
	return &StringField{class: class}
}

func (f *StringField) Class() FieldClass { return f.class }

func (f *StringField) AppendChunk(chunk string) {
	f.AssertHot("string field")
	f.Value += chunk
}

// StructureField holds one instantiated value per member of its class, in
// the same order.
type StructureField struct {
	object.Freezable

	class   *StructureFieldClass
	Members []Field
}

func NewStructureField(class *StructureFieldClass) *StructureField {
	return &StructureField{class: class, Members: make([]Field, len(class.Members))}
}

func (f *StructureField) Class() FieldClass { return f.class }

// MemberByIndex returns the field at index i.
func (f *StructureField) MemberByIndex(i int) Field { return f.Members[i] }

// MemberByName returns the field named name, if the class declares it.
func (f *StructureField) MemberByName(name string) (Field, bool) {
	i, ok := f.class.MemberIndex(name)
	if !ok {
		return nil, false
	}
	return f.Members[i], true
}

// SetMember installs the field instance at index i (the BTR's
// compound_begin/compound_end walk fills these in one at a time).
func (f *StructureField) SetMember(i int, v Field) {
	f.AssertHot("structure field")
	f.Members[i] = v
}

// Freeze propagates to every member field.
func (f *StructureField) Freeze() {
	if f.IsFrozen() {
		return
	}
	for _, m := range f.Members {
		object.FreezeAll(m)
	}
	f.Freezable.Freeze()
}

// VariantField holds the single currently-selected option's field.
type VariantField struct {
	object.Freezable

	class          *VariantFieldClass
	SelectedIndex  int
	SelectedOption Field
}

func NewVariantField(class *VariantFieldClass) *VariantField {
	return &VariantField{class: class, SelectedIndex: -1}
}

func (f *VariantField) Class() FieldClass { return f.class }

// Select sets the active option by index and its field value.
func (f *VariantField) Select(index int, v Field) {
	f.AssertHot("variant field")
	f.SelectedIndex = index
	f.SelectedOption = v
}

func (f *VariantField) Freeze() {
	if f.IsFrozen() {
		return
	}
	object.FreezeAll(f.SelectedOption)
	f.Freezable.Freeze()
}

// StaticArrayField holds a fixed number of element fields.
type StaticArrayField struct {
	object.Freezable

	class    *StaticArrayFieldClass
	Elements []Field
}

func NewStaticArrayField(class *StaticArrayFieldClass) *StaticArrayField {
	return &StaticArrayField{class: class, Elements: make([]Field, 0, class.Length)}
}

func (f *StaticArrayField) Class() FieldClass { return f.class }

func (f *StaticArrayField) Append(v Field) {
	f.AssertHot("static array field")
	f.Elements = append(f.Elements, v)
}

func (f *StaticArrayField) Freeze() {
	if f.IsFrozen() {
		return
	}
	for _, e := range f.Elements {
		object.FreezeAll(e)
	}
	f.Freezable.Freeze()
}

// DynamicSequenceField holds a variable number of element fields, whose
// count was read from an earlier field via the sequence's resolved length
// path (spec §3.2, §4.2).
type DynamicSequenceField struct {
	object.Freezable

	class    *DynamicSequenceFieldClass
	Elements []Field
}

func NewDynamicSequenceField(class *DynamicSequenceFieldClass, length uint64) *DynamicSequenceField {
	return &DynamicSequenceField{class: class, Elements: make([]Field, 0, length)}
}

func (f *DynamicSequenceField) Class() FieldClass { return f.class }

func (f *DynamicSequenceField) Append(v Field) {
	f.AssertHot("dynamic sequence field")
	f.Elements = append(f.Elements, v)
}

func (f *DynamicSequenceField) Freeze() {
	if f.IsFrozen() {
		return
	}
	for _, e := range f.Elements {
		object.FreezeAll(e)
	}
	f.Freezable.Freeze()
}
