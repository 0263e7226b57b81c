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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeerooth/yamabiko/registry"
)

func TestDerivePathSequential(t *testing.T) {
	p, ok := derivePath("name", registry.Sequential, "alice", "user:1")
	require.True(t, ok)
	assert.Contains(t, p, "_index/name/seq/a/alice/")
}

func TestDerivePathSequentialEmptyValueUsesPlaceholder(t *testing.T) {
	p, ok := derivePath("name", registry.Sequential, "", "user:1")
	require.True(t, ok)
	assert.Contains(t, p, "_index/name/seq/_/")
}

func TestDerivePathNumericOrdersLexicographically(t *testing.T) {
	low, ok := derivePath("age", registry.Numeric, float64(5), "user:1")
	require.True(t, ok)
	high, ok := derivePath("age", registry.Numeric, float64(20), "user:2")
	require.True(t, ok)
	assert.Less(t, low, high)
}

func TestDerivePathNumericHandlesNegatives(t *testing.T) {
	neg, ok := derivePath("delta", registry.Numeric, float64(-5), "k1")
	require.True(t, ok)
	pos, ok := derivePath("delta", registry.Numeric, float64(5), "k2")
	require.True(t, ok)
	assert.Less(t, neg, pos)
}

func TestDerivePathNumericRejectsNonNumeric(t *testing.T) {
	_, ok := derivePath("age", registry.Numeric, "not-a-number", "user:1")
	assert.False(t, ok)
}

func TestDerivePathUnknownKind(t *testing.T) {
	_, ok := derivePath("f", registry.Kind("bogus"), "v", "k")
	assert.False(t, ok)
}

func TestEncodeNumericBoundMatchesDerivePath(t *testing.T) {
	p, ok := derivePath("age", registry.Numeric, float64(42), "user:1")
	require.True(t, ok)
	assert.Contains(t, p, EncodeNumericBound(42))
}

func TestKeyHashIsStableAndFixedWidth(t *testing.T) {
	a := keyHash("user:1")
	b := keyHash("user:1")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestKeyHashDiffersAcrossKeys(t *testing.T) {
	assert.NotEqual(t, keyHash("user:1"), keyHash("user:2"))
}

func TestEscapeValueNeutralizesSlash(t *testing.T) {
	assert.Equal(t, "a%2Fb", escapeValue("a/b"))
}
