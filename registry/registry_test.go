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

package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yerrors "github.com/Zeerooth/yamabiko/errors"
	"github.com/Zeerooth/yamabiko/registry"
)

func TestAddAndHas(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Add("age", registry.Numeric))
	kind, ok := r.Has("age")
	require.True(t, ok)
	assert.Equal(t, registry.Numeric, kind)
}

func TestAddDuplicateFails(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Add("age", registry.Numeric))
	err := r.Add("age", registry.Sequential)
	assert.ErrorIs(t, err, yerrors.ErrIndexAlreadyExists)
}

func TestRemoveUnknownFails(t *testing.T) {
	r := registry.New()
	err := r.Remove("ghost")
	assert.ErrorIs(t, err, yerrors.ErrIndexUnknown)
}

func TestRemoveKnown(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Add("name", registry.Sequential))
	require.NoError(t, r.Remove("name"))
	_, ok := r.Has("name")
	assert.False(t, ok)
}

func TestEntriesAreSortedByField(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Add("zeta", registry.Sequential))
	require.NoError(t, r.Add("alpha", registry.Numeric))
	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha", entries[0].Field)
	assert.Equal(t, "zeta", entries[1].Field)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Add("age", registry.Numeric))
	require.NoError(t, r.Add("name", registry.Sequential))

	blob, err := r.Encode()
	require.NoError(t, err)

	decoded, err := registry.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, r.Entries(), decoded.Entries())
}

func TestDecodeEmptyBlobYieldsEmptyRegistry(t *testing.T) {
	r, err := registry.Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, r.Entries())
}

func TestDecodeMalformedBlobFails(t *testing.T) {
	_, err := registry.Decode([]byte("not json"))
	assert.ErrorIs(t, err, yerrors.ErrDeserializationFailed)
}

func TestCloneIsIndependent(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Add("age", registry.Numeric))

	clone := r.Clone()
	require.NoError(t, clone.Add("name", registry.Sequential))

	_, ok := r.Has("name")
	assert.False(t, ok, "mutating the clone must not affect the original")
}
