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

// toDNF converts p into disjunctive normal form: a slice of clauses,
// each clause a conjunction of leaf predicates. NOT is eliminated by
// pushing negation down to leaves first (De Morgan), so every leaf
// returned here carries its own, possibly negated, operator.
func toDNF(p Predicate) [][]Predicate {
	return expand(nnf(p, false))
}

func negateOp(op Op) Op {
	switch op {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Lt:
		return Ge
	case Le:
		return Gt
	case Gt:
		return Le
	case Ge:
		return Lt
	default:
		return op
	}
}

// nnf pushes negation down to the leaves, eliminating notKind nodes.
func nnf(p Predicate, negate bool) Predicate {
	switch p.kind {
	case leafKind:
		if negate {
			return Leaf(p.field, negateOp(p.op), p.literal)
		}
		return p
	case notKind:
		return nnf(p.children[0], !negate)
	case andKind:
		children := make([]Predicate, len(p.children))
		for i, c := range p.children {
			children[i] = nnf(c, negate)
		}
		if negate {
			return Predicate{kind: orKind, children: children}
		}
		return Predicate{kind: andKind, children: children}
	case orKind:
		children := make([]Predicate, len(p.children))
		for i, c := range p.children {
			children[i] = nnf(c, negate)
		}
		if negate {
			return Predicate{kind: andKind, children: children}
		}
		return Predicate{kind: orKind, children: children}
	default:
		return p
	}
}

// expand turns an NNF predicate (no notKind nodes) into DNF clauses.
func expand(p Predicate) [][]Predicate {
	switch p.kind {
	case leafKind:
		return [][]Predicate{{p}}
	case andKind:
		clauses := [][]Predicate{{}}
		for _, c := range p.children {
			childClauses := expand(c)
			var next [][]Predicate
			for _, base := range clauses {
				for _, cc := range childClauses {
					merged := make([]Predicate, 0, len(base)+len(cc))
					merged = append(merged, base...)
					merged = append(merged, cc...)
					next = append(next, merged)
				}
			}
			clauses = next
		}
		return clauses
	case orKind:
		var clauses [][]Predicate
		for _, c := range p.children {
			clauses = append(clauses, expand(c)...)
		}
		return clauses
	default:
		return nil
	}
}
