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
	"errors"
	"strings"

	sf "github.com/wissance/stringFormatter"
)

// Scope identifies one of the six dynamic scopes a decoded packet walks
// through in order, per spec §4.2 and the GLOSSARY entry for "dynamic
// scope".
type Scope int

const (
	ScopePacketHeader Scope = iota
	ScopePacketContext
	ScopeEventHeader
	ScopeEventCommonContext
	ScopeEventSpecificContext
	ScopeEventPayload
)

func (s Scope) String() string {
	switch s {
	case ScopePacketHeader:
		return "packet-header"
	case ScopePacketContext:
		return "packet-context"
	case ScopeEventHeader:
		return "event-header"
	case ScopeEventCommonContext:
		return "event-common-context"
	case ScopeEventSpecificContext:
		return "event-specific-context"
	case ScopeEventPayload:
		return "event-payload"
	default:
		return "unknown-scope"
	}
}

// FieldPath is a resolved reference into an earlier dynamic scope: a scope
// root plus a sequence of structure-member indices to descend through to
// reach the target integer/enumeration field (spec §4.2, GLOSSARY).
type FieldPath struct {
	Root       Scope
	Indices    []int
	TargetFCID uint64 // identity of the resolved integer/enum field class
}

// ResolutionError is returned when a variant tag path or sequence length
// path cannot be resolved (spec §4.2: "fails with ResolutionError if no
// earlier field matches").
type ResolutionError struct {
	PathText string
	Reason   string
}

func (e *ResolutionError) Error() string {
	return sf.Format("traceir: cannot resolve field path {0}: {1}", e.PathText, e.Reason)
}

// ErrScopeNotEarlier is wrapped into a ResolutionError when a path's scope
// root is not earlier than (nor the same as) the declaring scope.
var ErrScopeNotEarlier = errors.New("referenced scope is not earlier in decode order")

// ScopeSet carries the (up to) six field classes a trace/stream/event class
// triple contributes to one packet's dynamic scopes. Scopes a trace/stream
// doesn't use are nil.
type ScopeSet struct {
	PacketHeader         FieldClass
	PacketContext        FieldClass
	EventHeader          FieldClass
	EventCommonContext   FieldClass
	EventSpecificContext FieldClass
	EventPayload         FieldClass
}

// Field returns the field class declared for the given scope, or nil.
func (s ScopeSet) Field(scope Scope) FieldClass {
	switch scope {
	case ScopePacketHeader:
		return s.PacketHeader
	case ScopePacketContext:
		return s.PacketContext
	case ScopeEventHeader:
		return s.EventHeader
	case ScopeEventCommonContext:
		return s.EventCommonContext
	case ScopeEventSpecificContext:
		return s.EventSpecificContext
	case ScopeEventPayload:
		return s.EventPayload
	default:
		return nil
	}
}

// scopeKeyword maps the first component of a textual path to a Scope.
var scopeKeyword = map[string]Scope{
	"trace.packet.header":   ScopePacketHeader,
	"stream.packet.context": ScopePacketContext,
	"stream.event.header":   ScopeEventHeader,
	"stream.event.context":  ScopeEventCommonContext,
	"event.context":         ScopeEventSpecificContext,
	"event.fields":          ScopeEventPayload,
}

// scopeKeywordOrder lists scopeKeyword's keys in a fixed order for
// splitPathText to try as a prefix; none of the keywords is itself a prefix
// of another, but trying them in a stable order keeps the match
// deterministic regardless of Go's randomized map iteration.
var scopeKeywordOrder = []string{
	"stream.packet.context",
	"stream.event.header",
	"stream.event.context",
	"trace.packet.header",
	"event.context",
	"event.fields",
}

// splitPathText splits a raw textual path (e.g. "stream.event.header.id")
// into its scope keyword and the dot-separated member names that follow it,
// per the VariantFieldClass.TagPathText / DynamicSequenceFieldClass.
// LengthPathText grammar (spec §4.2).
func splitPathText(pathText string) (rootKey string, members []string, ok bool) {
	for _, kw := range scopeKeywordOrder {
		prefix := kw + "."
		if strings.HasPrefix(pathText, prefix) {
			rest := strings.TrimPrefix(pathText, prefix)
			if rest == "" {
				return "", nil, false
			}
			return kw, strings.Split(rest, "."), true
		}
	}
	return "", nil, false
}

// ResolvePath resolves a textual path of the form "<scope-keyword>.<member>.
// <member>..." against scopes, requiring the resolved scope to be no later
// than declaringScope in decode order (spec §3.3's "earlier in decode
// order" rule) and the target field to be an integer or enumeration field
// class (spec §4.2).
func ResolvePath(scopes ScopeSet, declaringScope Scope, pathText string, rootKey string, members []string) (*FieldPath, error) {
	root, ok := scopeKeyword[rootKey]
	if !ok {
		return nil, &ResolutionError{PathText: pathText, Reason: "unknown scope keyword " + rootKey}
	}
	if root > declaringScope {
		return nil, &ResolutionError{PathText: pathText, Reason: ErrScopeNotEarlier.Error()}
	}

	cur := scopes.Field(root)
	if cur == nil {
		return nil, &ResolutionError{PathText: pathText, Reason: "scope " + root.String() + " has no field class"}
	}

	var indices []int
	for i, name := range members {
		st, ok := cur.(*StructureFieldClass)
		if !ok {
			return nil, &ResolutionError{PathText: pathText, Reason: "non-structure field class along path"}
		}
		idx, ok := st.MemberIndex(name)
		if !ok {
			return nil, &ResolutionError{PathText: pathText, Reason: "no member named " + name}
		}
		indices = append(indices, idx)
		cur = st.Members[idx].Class
		isLast := i == len(members)-1
		if isLast {
			targetID, err := targetFieldClassID(cur)
			if err != nil {
				return nil, &ResolutionError{PathText: pathText, Reason: err.Error()}
			}
			return &FieldPath{Root: root, Indices: indices, TargetFCID: targetID}, nil
		}
	}
	return nil, &ResolutionError{PathText: pathText, Reason: "empty member path"}
}

// resolvePathsWithin walks fc's field-class tree, parsing and resolving
// every variant tag path and dynamic-sequence length path it finds against
// scopes/declaringScope, the tree-walk pass spec §4.2 calls for (grounded on
// original_source's ctf-meta-update-in-ir.c, which performs the equivalent
// walk once per stream class before the first packet is decoded). Resolved
// paths are written directly into VariantFieldClass.TagPath /
// DynamicSequenceFieldClass.LengthPath; an already-resolved path is left
// untouched, so calling this more than once for the same stream class is
// harmless.
func resolvePathsWithin(scopes ScopeSet, declaringScope Scope, fc FieldClass) error {
	switch v := fc.(type) {
	case nil:
		return nil

	case *StructureFieldClass:
		for _, m := range v.Members {
			if err := resolvePathsWithin(scopes, declaringScope, m.Class); err != nil {
				return err
			}
		}

	case *VariantFieldClass:
		if v.TagPath == nil {
			rootKey, members, ok := splitPathText(v.TagPathText)
			if !ok {
				return &ResolutionError{PathText: v.TagPathText, Reason: "cannot parse path text"}
			}
			fp, err := ResolvePath(scopes, declaringScope, v.TagPathText, rootKey, members)
			if err != nil {
				return err
			}
			v.TagPath = fp
		}
		for _, o := range v.Options {
			if err := resolvePathsWithin(scopes, declaringScope, o.Class); err != nil {
				return err
			}
		}

	case *StaticArrayFieldClass:
		return resolvePathsWithin(scopes, declaringScope, v.Element)

	case *DynamicSequenceFieldClass:
		if v.LengthPath == nil {
			rootKey, members, ok := splitPathText(v.LengthPathText)
			if !ok {
				return &ResolutionError{PathText: v.LengthPathText, Reason: "cannot parse path text"}
			}
			fp, err := ResolvePath(scopes, declaringScope, v.LengthPathText, rootKey, members)
			if err != nil {
				return err
			}
			v.LengthPath = fp
		}
		return resolvePathsWithin(scopes, declaringScope, v.Element)
	}
	return nil
}

// targetFieldClassID extracts the stored-value-index identity of an
// integer or enumeration field class, per spec §4.2.
func targetFieldClassID(fc FieldClass) (uint64, error) {
	switch v := fc.(type) {
	case *IntegerFieldClass:
		return v.ID(), nil
	case *EnumerationFieldClass:
		return v.ID(), nil
	default:
		return 0, errors.New("target field is not an integer or enumeration")
	}
}
