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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDNFSingleLeaf(t *testing.T) {
	p := Leaf("a", Eq, 1)
	clauses := toDNF(p)
	assert.Len(t, clauses, 1)
	assert.Len(t, clauses[0], 1)
}

func TestToDNFAndStaysOneClause(t *testing.T) {
	p := And(Leaf("a", Eq, 1), Leaf("b", Eq, 2))
	clauses := toDNF(p)
	assert.Len(t, clauses, 1)
	assert.Len(t, clauses[0], 2)
}

func TestToDNFOrProducesTwoClauses(t *testing.T) {
	p := Or(Leaf("a", Eq, 1), Leaf("b", Eq, 2))
	clauses := toDNF(p)
	assert.Len(t, clauses, 2)
}

func TestToDNFDistributesAndOverOr(t *testing.T) {
	p := And(Leaf("a", Eq, 1), Or(Leaf("b", Eq, 2), Leaf("c", Eq, 3)))
	clauses := toDNF(p)
	assert.Len(t, clauses, 2)
	for _, clause := range clauses {
		assert.Len(t, clause, 2)
	}
}

func TestToDNFNotFlipsLeafOperator(t *testing.T) {
	p := Not(Leaf("a", Eq, 1))
	clauses := toDNF(p)
	assert.Len(t, clauses, 1)
	assert.Equal(t, Ne, clauses[0][0].op)
}

func TestToDNFNotOverAndBecomesOrOfNegations(t *testing.T) {
	p := Not(And(Leaf("a", Eq, 1), Leaf("b", Lt, 2)))
	clauses := toDNF(p)
	assert.Len(t, clauses, 2)
	ops := []Op{clauses[0][0].op, clauses[1][0].op}
	assert.ElementsMatch(t, []Op{Ne, Ge}, ops)
}

func TestToDNFDoubleNegationCancelsOut(t *testing.T) {
	p := Not(Not(Leaf("a", Eq, 1)))
	clauses := toDNF(p)
	assert.Equal(t, Eq, clauses[0][0].op)
}

func TestNegateOpIsInvolution(t *testing.T) {
	for _, op := range []Op{Eq, Ne, Lt, Le, Gt, Ge} {
		assert.Equal(t, op, negateOp(negateOp(op)))
	}
}
