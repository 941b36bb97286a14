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

// Package traceir implements the Trace IR data model: trace/stream/event
// classes, field classes, clocks, and their instance counterparts
// (trace/stream/packet/event), per spec §3.2.
package traceir

import (
	"sync/atomic"

	"github.com/GoogleCloudPlatform/babeltrace-go/pkg/object"
)

// FieldClassTypeID discriminates the recursive field-class sum type (spec
// §3.2: "Field class (recursive sum)").
type FieldClassTypeID int

const (
	FieldClassInteger FieldClassTypeID = iota
	FieldClassEnumeration
	FieldClassFloatingPoint
	FieldClassString
	FieldClassStructure
	FieldClassVariant
	FieldClassStaticArray
	FieldClassDynamicSequence
)

func (id FieldClassTypeID) String() string {
	switch id {
	case FieldClassInteger:
		return "integer"
	case FieldClassEnumeration:
		return "enumeration"
	case FieldClassFloatingPoint:
		return "floating-point"
	case FieldClassString:
		return "string"
	case FieldClassStructure:
		return "structure"
	case FieldClassVariant:
		return "variant"
	case FieldClassStaticArray:
		return "static-array"
	case FieldClassDynamicSequence:
		return "dynamic-sequence"
	default:
		return "unknown"
	}
}

// FieldClass is the common interface every field-class variant satisfies.
type FieldClass interface {
	object.Freezer
	TypeID() FieldClassTypeID
}

// fcIDCounter assigns a stable identity to every integer/enumeration field
// class, independent of its structural attributes (bit width, byte order).
// The field-path resolver and the stored-value-index pass (spec §4.2) key
// off this identity rather than off pointer equality so a frozen field class
// shared across event classes resolves to the same slot everywhere it is
// reused.
var fcIDCounter atomic.Uint64

func nextFieldClassID() uint64 {
	return fcIDCounter.Add(1)
}

// ByteOrder is the bit order integer/float field classes decode with.
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// IntegerFieldClass is an integer field class, signed or unsigned, 1–64
// bits wide, optionally mapped to a clock class (spec §3.2).
type IntegerFieldClass struct {
	object.Freezable

	id uint64

	Signed      bool
	BitWidth    uint8
	Base        int // display base: 2, 8, 10, or 16
	Alignment   uint8
	ByteOrder   ByteOrder
	MappedClock *ClockClass
}

// NewIntegerFieldClass constructs an unsigned, bit-aligned (Alignment 1), base-10,
// big-endian integer field class of the given bit width; use the setter
// methods to customize it before freezing.
func NewIntegerFieldClass(bitWidth uint8) *IntegerFieldClass {
	return &IntegerFieldClass{
		id:        nextFieldClassID(),
		BitWidth:  bitWidth,
		Base:      10,
		Alignment: 1,
	}
}

func (f *IntegerFieldClass) TypeID() FieldClassTypeID { return FieldClassInteger }

// ID returns the identity used for field-path resolution and the
// stored-value-index table.
func (f *IntegerFieldClass) ID() uint64 { return f.id }

// SetMappedClock associates this integer field class with a clock class, per
// spec §3.2 ("integer... with an optional mapped clock class").
func (f *IntegerFieldClass) SetMappedClock(cc *ClockClass) {
	f.AssertHot("integer field class")
	f.MappedClock = cc
}

// EnumerationRange is one labelled [Low, High] inclusive range of an
// enumeration field class.
type EnumerationRange struct {
	Label string
	Low   uint64
	High  uint64
}

// EnumerationFieldClass is an enumeration over an integer container with
// labelled value ranges (spec §3.2).
type EnumerationFieldClass struct {
	object.Freezable

	Container *IntegerFieldClass
	Ranges    []EnumerationRange
}

// NewEnumerationFieldClass builds an enumeration field class over container.
func NewEnumerationFieldClass(container *IntegerFieldClass) *EnumerationFieldClass {
	return &EnumerationFieldClass{Container: container}
}

func (f *EnumerationFieldClass) TypeID() FieldClassTypeID { return FieldClassEnumeration }

// ID delegates to the underlying integer container's identity: the decoded
// value the BTR stores in the field-path cache is the container's value.
func (f *EnumerationFieldClass) ID() uint64 { return f.Container.ID() }

// AddRange appends a labelled range.
func (f *EnumerationFieldClass) AddRange(label string, low, high uint64) {
	f.AssertHot("enumeration field class")
	f.Ranges = append(f.Ranges, EnumerationRange{Label: label, Low: low, High: high})
}

// LabelFor returns the label of the first range containing v, and whether
// one was found.
func (f *EnumerationFieldClass) LabelFor(v uint64) (string, bool) {
	for _, r := range f.Ranges {
		if v >= r.Low && v <= r.High {
			return r.Label, true
		}
	}
	return "", false
}

// Freeze propagates to the integer container, per spec §3.1's transitive
// freeze rule.
func (f *EnumerationFieldClass) Freeze() {
	if f.IsFrozen() {
		return
	}
	object.FreezeAll(f.Container)
	f.Freezable.Freeze()
}

// FloatFieldClass is a floating-point field class (32 or 64 bits).
type FloatFieldClass struct {
	object.Freezable

	BitWidth  uint8 // 32 or 64
	Alignment uint8
	ByteOrder ByteOrder
}

func NewFloatFieldClass(bitWidth uint8) *FloatFieldClass {
	return &FloatFieldClass{BitWidth: bitWidth, Alignment: 1}
}

func (f *FloatFieldClass) TypeID() FieldClassTypeID { return FieldClassFloatingPoint }

// StringFieldClass is a null-terminated UTF-8 string field class. The BTR
// reads it byte by byte up to the terminating NUL; length-delimited strings
// are not supported.
type StringFieldClass struct {
	object.Freezable
}

func NewStringFieldClass() *StringFieldClass { return &StringFieldClass{} }

func (f *StringFieldClass) TypeID() FieldClassTypeID { return FieldClassString }

// StructureMember is one named member of a structure field class, in decode
// order.
type StructureMember struct {
	Name  string
	Class FieldClass
}

// StructureFieldClass is an ordered-member structure field class.
type StructureFieldClass struct {
	object.Freezable

	Members     []StructureMember
	indexByName map[string]int
}

func NewStructureFieldClass() *StructureFieldClass {
	return &StructureFieldClass{indexByName: make(map[string]int)}
}

func (f *StructureFieldClass) TypeID() FieldClassTypeID { return FieldClassStructure }

// AppendMember adds a member at the end of the decode order.
func (f *StructureFieldClass) AppendMember(name string, class FieldClass) {
	f.AssertHot("structure field class")
	if f.indexByName == nil {
		f.indexByName = make(map[string]int)
	}
	f.indexByName[name] = len(f.Members)
	f.Members = append(f.Members, StructureMember{Name: name, Class: class})
}

// MemberIndex returns the decode-order index of a named member.
func (f *StructureFieldClass) MemberIndex(name string) (int, bool) {
	i, ok := f.indexByName[name]
	return i, ok
}

// Freeze propagates to every member's field class.
func (f *StructureFieldClass) Freeze() {
	if f.IsFrozen() {
		return
	}
	for _, m := range f.Members {
		object.FreezeAll(m.Class)
	}
	f.Freezable.Freeze()
}

// VariantOption is one named option of a variant field class.
type VariantOption struct {
	Name  string
	Class FieldClass
}

// VariantFieldClass is a tagged union: the active option is selected by the
// value of the field at TagPath (spec §3.2, §4.2).
type VariantFieldClass struct {
	object.Freezable

	TagPathText string // unresolved textual path, e.g. "stream.event.header.id"
	TagPath     *FieldPath
	Options     []VariantOption
	indexByName map[string]int
}

func NewVariantFieldClass(tagPathText string) *VariantFieldClass {
	return &VariantFieldClass{TagPathText: tagPathText, indexByName: make(map[string]int)}
}

func (f *VariantFieldClass) TypeID() FieldClassTypeID { return FieldClassVariant }

// AppendOption adds a named option.
func (f *VariantFieldClass) AppendOption(name string, class FieldClass) {
	f.AssertHot("variant field class")
	if f.indexByName == nil {
		f.indexByName = make(map[string]int)
	}
	f.indexByName[name] = len(f.Options)
	f.Options = append(f.Options, VariantOption{Name: name, Class: class})
}

// OptionIndex returns the index of a named option.
func (f *VariantFieldClass) OptionIndex(name string) (int, bool) {
	i, ok := f.indexByName[name]
	return i, ok
}

// OptionByLabel finds the first option whose name matches an enumeration
// label — the usual way a variant's tag (an enumeration field) selects an
// option.
func (f *VariantFieldClass) OptionByLabel(label string) (int, bool) {
	return f.OptionIndex(label)
}

// Freeze propagates to every option's field class.
func (f *VariantFieldClass) Freeze() {
	if f.IsFrozen() {
		return
	}
	for _, o := range f.Options {
		object.FreezeAll(o.Class)
	}
	f.Freezable.Freeze()
}

// StaticArrayFieldClass is a fixed-length homogeneous array field class.
type StaticArrayFieldClass struct {
	object.Freezable

	Element FieldClass
	Length  uint64
}

func NewStaticArrayFieldClass(element FieldClass, length uint64) *StaticArrayFieldClass {
	return &StaticArrayFieldClass{Element: element, Length: length}
}

func (f *StaticArrayFieldClass) TypeID() FieldClassTypeID { return FieldClassStaticArray }

func (f *StaticArrayFieldClass) Freeze() {
	if f.IsFrozen() {
		return
	}
	object.FreezeAll(f.Element)
	f.Freezable.Freeze()
}

// DynamicSequenceFieldClass is a variable-length homogeneous array field
// class whose length is read from an earlier field (spec §3.2, §4.2).
type DynamicSequenceFieldClass struct {
	object.Freezable

	Element        FieldClass
	LengthPathText string // unresolved textual path
	LengthPath     *FieldPath
}

func NewDynamicSequenceFieldClass(element FieldClass, lengthPathText string) *DynamicSequenceFieldClass {
	return &DynamicSequenceFieldClass{Element: element, LengthPathText: lengthPathText}
}

func (f *DynamicSequenceFieldClass) TypeID() FieldClassTypeID { return FieldClassDynamicSequence }

func (f *DynamicSequenceFieldClass) Freeze() {
	if f.IsFrozen() {
		return
	}
	object.FreezeAll(f.Element)
	f.Freezable.Freeze()
}
