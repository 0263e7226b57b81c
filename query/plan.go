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
	"fmt"
	"math"

	"github.com/Zeerooth/yamabiko/index"
	"github.com/Zeerooth/yamabiko/registry"
)

// numericEpsilon is the smallest distinguishable step at the numeric
// index's microprecision scale, used to turn a strict (<, >) bound into
// the equivalent inclusive one for the underlying range scan.
const numericEpsilon = 1e-6

// candidate is the indexable leaf a clause planned to use, if any.
type candidate struct {
	field string
	kind  registry.Kind
	// Sequential
	value string
	// Numeric, inclusive bounds
	lo, hi float64
}

// planClause picks the most selective indexable leaf in clause: an
// equality match against a sequential index wins outright (exact,
// single-value lookup); otherwise the comparisons against a single
// numeric-indexed field are folded into one inclusive range. Ties
// between distinct numeric fields are broken by which is seen first;
// this is a simple heuristic, not a cost-based optimizer, since neither
// the engine nor the object store tracks per-index cardinality.
func planClause(reg *registry.Registry, clause []Predicate) (candidate, bool) {
	var numeric *candidate

	for _, leaf := range clause {
		kind, ok := reg.Has(leaf.field)
		if !ok {
			continue
		}
		switch kind {
		case registry.Sequential:
			if leaf.op == Eq {
				return candidate{field: leaf.field, kind: registry.Sequential, value: fmt.Sprintf("%v", leaf.literal)}, true
			}
		case registry.Numeric:
			lit, ok := index.CoerceNumeric(leaf.literal)
			if !ok {
				continue
			}
			if numeric == nil || numeric.field != leaf.field {
				if numeric == nil {
					numeric = &candidate{field: leaf.field, kind: registry.Numeric, lo: math.Inf(-1), hi: math.Inf(1)}
				} else {
					continue // keep the first numeric field found
				}
			}
			applyBound(numeric, leaf.op, lit)
		}
	}

	if numeric != nil {
		return *numeric, true
	}
	return candidate{}, false
}

func applyBound(c *candidate, op Op, lit float64) {
	switch op {
	case Eq:
		c.lo, c.hi = lit, lit
	case Lt:
		if lit-numericEpsilon < c.hi {
			c.hi = lit - numericEpsilon
		}
	case Le:
		if lit < c.hi {
			c.hi = lit
		}
	case Gt:
		if lit+numericEpsilon > c.lo {
			c.lo = lit + numericEpsilon
		}
	case Ge:
		if lit > c.lo {
			c.lo = lit
		}
	case Ne:
		// Not usable for pruning a contiguous range; left to the
		// full-predicate evaluation pass.
	}
}
