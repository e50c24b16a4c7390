// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"celcore/common"
	celtypes "celcore/types"
)

// String is a CEL string value, indexed by Unicode code point rather than
// byte offset.
type String string

func (s String) Type() *celtypes.Type { return celtypes.StringType }
func (s String) Value() any           { return string(s) }
func (s String) String() string       { return string(s) }
func (s String) Equal(other Value) Value {
	o, ok := other.(String)
	return Bool(ok && s == o)
}

// Size returns the code-point length, the unit CEL's `size()` uses for
// strings.
func (s String) Size() Int { return Int(utf8.RuneCountInString(string(s))) }

// Add implements string concatenation for the `+` overload.
func (s String) Add(other String) String { return s + other }

// Compare implements lexicographic ordering for `< <= > >=`.
func (s String) Compare(other String) int { return strings.Compare(string(s), string(other)) }

// Matches compiles pattern as an RE2-compatible regular expression (spec
// §4.F: "no backreferences, bounded repetition") and reports whether it
// matches anywhere within s. A compile failure is a KindBadFormat error,
// which is how `matches` fails at eval time when the RegexLiteral
// validator did not already reject the pattern at check time (spec §8
// scenario 4).
func (s String) Matches(pattern string) Value {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return NewErr(common.KindBadFormat, "invalid regular expression: %v", err)
	}
	return Bool(re.MatchString(string(s)))
}

// Bytes is a CEL bytes value.
type Bytes []byte

func (b Bytes) Type() *celtypes.Type { return celtypes.BytesType }
func (b Bytes) Value() any           { return []byte(b) }
func (b Bytes) String() string       { return fmt.Sprintf("%q", []byte(b)) }
func (b Bytes) Equal(other Value) Value {
	o, ok := other.(Bytes)
	return Bool(ok && bytes.Equal(b, o))
}

// Size returns the byte length, the unit CEL's `size()` uses for bytes.
func (b Bytes) Size() Int { return Int(len(b)) }

// Add implements bytes concatenation for the `+` overload.
func (b Bytes) Add(other Bytes) Bytes {
	out := make(Bytes, 0, len(b)+len(other))
	out = append(out, b...)
	out = append(out, other...)
	return out
}

// Compare implements byte-wise ordering for `< <= > >=`.
func (b Bytes) Compare(other Bytes) int { return bytes.Compare(b, other) }
