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

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yerrors "github.com/Zeerooth/yamabiko/errors"
	"github.com/Zeerooth/yamabiko/store"
)

func TestPushToUnreachableRemoteSurfacesNetworkFailure(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	a, _, err := store.Open(ctx, t.TempDir()+"/repo.git")
	require.NoError(t, err)

	treeOID, err := a.BuildTree(ctx, "refs/heads/main", []store.Mutation{
		{Path: "a", Blob: []byte("1")},
	})
	require.NoError(t, err)
	_, err = a.Commit(ctx, treeOID, nil, "initial", "main", testAuthor())
	require.NoError(t, err)

	err = a.Push(ctx, "origin", "https://127.0.0.1:0/does-not-exist.git", "main", nil)
	require.Error(t, err)

	var pushErr *yerrors.PushError
	require.ErrorAs(t, err, &pushErr)
	assert.Equal(t, "origin", pushErr.Remote)
}
