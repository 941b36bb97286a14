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

import sf "github.com/wissance/stringFormatter"

// EnvValueKind discriminates the typed values a trace class's environment
// may hold (spec §3.2: "environment entries (name -> typed value)").
type EnvValueKind int

const (
	EnvKindString EnvValueKind = iota
	EnvKindInteger
	EnvKindFloat
)

// EnvValue is one typed environment value.
type EnvValue struct {
	Kind  EnvValueKind
	Str   string
	Int   int64
	Float float64
}

func EnvString(s string) EnvValue { return EnvValue{Kind: EnvKindString, Str: s} }
func EnvInt(i int64) EnvValue     { return EnvValue{Kind: EnvKindInteger, Int: i} }
func EnvFloat(f float64) EnvValue { return EnvValue{Kind: EnvKindFloat, Float: f} }

func (v EnvValue) String() string {
	switch v.Kind {
	case EnvKindString:
		return v.Str
	case EnvKindInteger:
		return sf.Format("{0}", v.Int)
	case EnvKindFloat:
		return sf.Format("{0}", v.Float)
	default:
		return ""
	}
}
