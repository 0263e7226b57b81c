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

package query

import (
	"cmp"
	"fmt"

	"github.com/Zeerooth/yamabiko/index"
)

// Evaluate tests the full predicate tree against a decoded record,
// independent of whatever DNF candidate set selected it as worth
// reading, per spec.md §4.7 point 3 ("evaluate the full predicate").
func Evaluate(p Predicate, record map[string]interface{}) bool {
	switch p.kind {
	case leafKind:
		return evalLeaf(p, record)
	case andKind:
		for _, c := range p.children {
			if !Evaluate(c, record) {
				return false
			}
		}
		return true
	case orKind:
		for _, c := range p.children {
			if Evaluate(c, record) {
				return true
			}
		}
		return false
	case notKind:
		return !Evaluate(p.children[0], record)
	default:
		return false
	}
}

func evalLeaf(p Predicate, record map[string]interface{}) bool {
	v, ok := record[p.field]
	if !ok {
		return false
	}
	if nv, ok := index.CoerceNumeric(v); ok {
		if nl, ok := index.CoerceNumeric(p.literal); ok {
			return compareOrdered(nv, p.op, nl)
		}
	}
	return compareOrdered(fmt.Sprintf("%v", v), p.op, fmt.Sprintf("%v", p.literal))
}

func compareOrdered[T cmp.Ordered](a T, op Op, b T) bool {
	switch op {
	case Eq:
		return a == b
	case Ne:
		return a != b
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	default:
		return false
	}
}
