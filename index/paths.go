// Copyright 2026 Dolthub, Inc.
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

package index

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/Zeerooth/yamabiko/registry"
)

// RootPrefix is the reserved subtree under which all materialized index
// entries live.
const RootPrefix = "_index"

// keyHash returns the stable 16-hex-character suffix used to keep index
// leaves unique per record key when multiple records share an indexed
// value. blake3 is used here (rather than the path sharder's xxhash) so
// the two hash-dependent concerns in this module each have a single,
// clearly-scoped owner.
func keyHash(key string) string {
	sum := blake3.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// derivePath computes the materialized leaf path for one (field, value,
// key) triple, per spec.md §3/§4.6.
func derivePath(field string, kind registry.Kind, value interface{}, key string) (string, bool) {
	switch kind {
	case registry.Sequential:
		s, ok := stringify(value)
		if !ok {
			return "", false
		}
		return SequentialDir(field, s) + "/" + keyHash(key), true
	case registry.Numeric:
		n, ok := coerceNumeric(value)
		if !ok {
			return "", false
		}
		encoded := encodeNumeric(n)
		return NumericDir(field) + "/" + encoded[:2] + "/" + encoded + "/" + keyHash(key), true
	default:
		return "", false
	}
}

// SequentialDir is the directory holding every key sharing value under
// field's sequential index, used by the Query Engine to plan an
// equality lookup without needing a specific record key.
func SequentialDir(field, value string) string {
	return fmt.Sprintf("%s/%s/seq/%s/%s", RootPrefix, field, firstChar(value), escapeValue(value))
}

// NumericDir is the root of field's numeric index subtree, used by the
// Query Engine to plan a range scan.
func NumericDir(field string) string {
	return fmt.Sprintf("%s/%s/num", RootPrefix, field)
}

func firstChar(s string) string {
	if s == "" {
		return "_"
	}
	return string([]rune(s)[0])
}

// escapeValue keeps a stringified field value from introducing extra
// path segments; '/' cannot appear in a tree entry name.
func escapeValue(s string) string {
	return strings.ReplaceAll(s, "/", "%2F")
}

func stringify(value interface{}) (string, bool) {
	if value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// coerceNumeric applies the single canonical numeric coercion used for
// all three codec formats: decode to float64. Values that cannot be
// coerced are reported via ok=false and must be skipped by the caller,
// per spec.md §4.6 point 2.
func coerceNumeric(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// numericScale fixes the precision preserved by the numeric index:
// six decimal digits, i.e. microprecision. This is part of the on-disk
// contract for range queries.
const numericScale = 1e6

// encodeNumeric produces a fixed-width, lexicographically-ordered
// encoding of n: one sign byte followed by 19 zero-padded digits of
// n scaled by numericScale, matching spec.md §3's "zero-padded
// fixed-width (e.g., 20 digits, with sign byte)".
func encodeNumeric(n float64) string {
	scaled := int64(math.Round(n * numericScale))
	sign := byte('+')
	if scaled < 0 {
		sign = '-'
		scaled = -scaled
	}
	return fmt.Sprintf("%c%019d", sign, scaled)
}

// EncodeNumericBound is exported for the query engine, which needs to
// translate a literal comparison bound into the same encoding used by
// the materialized index so it can prefix-walk a range.
func EncodeNumericBound(n float64) string {
	return encodeNumeric(n)
}

// DecodeNumericBound reverses EncodeNumericBound, used by the query
// engine to recover the numeric value materialized at an index leaf's
// path so it can test it against a scan's range bounds.
func DecodeNumericBound(s string) (float64, bool) {
	if len(s) != 20 {
		return 0, false
	}
	sign := s[0]
	if sign != '+' && sign != '-' {
		return 0, false
	}
	n, err := strconv.ParseInt(s[1:], 10, 64)
	if err != nil {
		return 0, false
	}
	v := float64(n) / numericScale
	if sign == '-' {
		v = -v
	}
	return v, true
}

// CoerceNumeric exposes the canonical float64 coercion for callers
// outside this package (the Query Engine evaluates numeric predicates
// with the same rule the Index Manager uses to decide what to index).
func CoerceNumeric(value interface{}) (float64, bool) {
	return coerceNumeric(value)
}
