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

// Package query is the Query Engine (spec.md §4.7): a predicate tree
// over record fields, planned against the Index Manager's materialized
// indexes with a full-scan fallback, executed against the Object Store
// Adapter.
package query

import "fmt"

// Op is a leaf comparison operator.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "="
	case Ne:
		return "≠"
	case Lt:
		return "<"
	case Le:
		return "≤"
	case Gt:
		return ">"
	case Ge:
		return "≥"
	default:
		return "?"
	}
}

// Predicate is a node in the predicate tree: either a leaf comparison
// or a boolean combinator over child predicates.
type Predicate struct {
	// Leaf fields. Kind == leafKind when these apply.
	field   string
	op      Op
	literal interface{}

	// Combinator fields.
	kind     nodeKind
	children []Predicate
}

type nodeKind int

const (
	leafKind nodeKind = iota
	andKind
	orKind
	notKind
)

// Leaf builds a single (field, op, literal) comparison.
func Leaf(field string, op Op, literal interface{}) Predicate {
	return Predicate{kind: leafKind, field: field, op: op, literal: literal}
}

// And combines predicates with logical AND.
func And(ps ...Predicate) Predicate { return Predicate{kind: andKind, children: ps} }

// Or combines predicates with logical OR.
func Or(ps ...Predicate) Predicate { return Predicate{kind: orKind, children: ps} }

// Not negates p.
func Not(p Predicate) Predicate { return Predicate{kind: notKind, children: []Predicate{p}} }

func (p Predicate) String() string {
	switch p.kind {
	case leafKind:
		return fmt.Sprintf("(%s %s %v)", p.field, p.op, p.literal)
	case andKind:
		return joinChildren(p.children, "AND")
	case orKind:
		return joinChildren(p.children, "OR")
	case notKind:
		return "NOT " + p.children[0].String()
	default:
		return "?"
	}
}

func joinChildren(children []Predicate, sep string) string {
	s := "("
	for i, c := range children {
		if i > 0 {
			s += " " + sep + " "
		}
		s += c.String()
	}
	return s + ")"
}
