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

package txn_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yerrors "github.com/Zeerooth/yamabiko/errors"
	"github.com/Zeerooth/yamabiko/hash"
	"github.com/Zeerooth/yamabiko/internal/gitplumb"
	"github.com/Zeerooth/yamabiko/store"
	"github.com/Zeerooth/yamabiko/txn"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not on PATH")
	}
}

func testAuthor() *gitplumb.Identity {
	return &gitplumb.Identity{Name: "Test Author", Email: "test@example.com"}
}

func noopRebuild(ctx context.Context, mergedTree hash.Hash) ([]store.Mutation, error) {
	return nil, nil
}

func seedMain(t *testing.T, ctx context.Context, a *store.Adapter, path, content string) hash.Hash {
	t.Helper()
	tree, err := a.BuildTree(ctx, "refs/heads/main", []store.Mutation{{Path: path, Blob: []byte(content)}})
	require.NoError(t, err)
	oid, err := a.Commit(ctx, tree, nil, "seed", "main", testAuthor())
	require.NoError(t, err)
	return oid
}

func TestNewCreatesBranchAtMainTip(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	a, _, err := store.Open(ctx, t.TempDir()+"/repo.git")
	require.NoError(t, err)
	mainTip := seedMain(t, ctx, a, "k", "v")

	m := txn.New(a)
	require.NoError(t, m.New(ctx, "t1"))

	txnTip, ok, err := a.ResolveRef(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, txnTip.Equal(mainTip))
}

func TestNewRejectsDuplicateName(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	a, _, err := store.Open(ctx, t.TempDir()+"/repo.git")
	require.NoError(t, err)
	seedMain(t, ctx, a, "k", "v")

	m := txn.New(a)
	require.NoError(t, m.New(ctx, "t1"))
	err = m.New(ctx, "t1")
	assert.ErrorIs(t, err, yerrors.ErrTransactionConflict)
}

func TestAbandonDeletesBranch(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	a, _, err := store.Open(ctx, t.TempDir()+"/repo.git")
	require.NoError(t, err)
	seedMain(t, ctx, a, "k", "v")

	m := txn.New(a)
	require.NoError(t, m.New(ctx, "t1"))
	require.NoError(t, m.Abandon(ctx, "t1"))

	_, ok, err := a.ResolveRef(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAbandonUnknownTransactionFails(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	a, _, err := store.Open(ctx, t.TempDir()+"/repo.git")
	require.NoError(t, err)
	seedMain(t, ctx, a, "k", "v")

	m := txn.New(a)
	err = m.Abandon(ctx, "ghost")
	assert.ErrorIs(t, err, yerrors.ErrTransactionNotFound)
}

func TestApplyIsFastForwardWhenMainUnchanged(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	a, _, err := store.Open(ctx, t.TempDir()+"/repo.git")
	require.NoError(t, err)
	seedMain(t, ctx, a, "k", "v0")

	m := txn.New(a)
	require.NoError(t, m.New(ctx, "t1"))

	tree, err := a.BuildTree(ctx, "refs/heads/t1", []store.Mutation{{Path: "k", Blob: []byte("v1")}})
	require.NoError(t, err)
	txnTip, err := a.Commit(ctx, tree, []hash.Hash{mustResolve(t, ctx, a, "t1")}, "txn write", "t1", testAuthor())
	require.NoError(t, err)

	resultTip, err := m.Apply(ctx, "t1", testAuthor(), noopRebuild)
	require.NoError(t, err)
	assert.True(t, resultTip.Equal(txnTip))

	data, ok, err := a.ReadBlob(ctx, "k", "refs/heads/main")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(data))
}

func TestApplyTransactionWinsOnConflict(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	a, _, err := store.Open(ctx, t.TempDir()+"/repo.git")
	require.NoError(t, err)
	seedMain(t, ctx, a, "k", "v0")

	m := txn.New(a)
	require.NoError(t, m.New(ctx, "t1"))

	// Transaction updates k.
	txnTree, err := a.BuildTree(ctx, "refs/heads/t1", []store.Mutation{{Path: "k", Blob: []byte("from-txn")}})
	require.NoError(t, err)
	_, err = a.Commit(ctx, txnTree, []hash.Hash{mustResolve(t, ctx, a, "t1")}, "txn write", "t1", testAuthor())
	require.NoError(t, err)

	// Main also updates k, diverging.
	mainTree, err := a.BuildTree(ctx, "refs/heads/main", []store.Mutation{{Path: "k", Blob: []byte("from-main")}})
	require.NoError(t, err)
	_, err = a.Commit(ctx, mainTree, []hash.Hash{mustResolve(t, ctx, a, "main")}, "main write", "main", testAuthor())
	require.NoError(t, err)

	_, err = m.Apply(ctx, "t1", testAuthor(), noopRebuild)
	require.NoError(t, err)

	data, ok, err := a.ReadBlob(ctx, "k", "refs/heads/main")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "from-txn", string(data))
}

func TestApplyPreservesMainOnlyChanges(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	a, _, err := store.Open(ctx, t.TempDir()+"/repo.git")
	require.NoError(t, err)
	seedMain(t, ctx, a, "k", "v0")

	m := txn.New(a)
	require.NoError(t, m.New(ctx, "t1"))

	// Transaction touches an unrelated key.
	txnTree, err := a.BuildTree(ctx, "refs/heads/t1", []store.Mutation{{Path: "other", Blob: []byte("txn-value")}})
	require.NoError(t, err)
	_, err = a.Commit(ctx, txnTree, []hash.Hash{mustResolve(t, ctx, a, "t1")}, "txn write", "t1", testAuthor())
	require.NoError(t, err)

	// Main updates k, untouched by the transaction.
	mainTree, err := a.BuildTree(ctx, "refs/heads/main", []store.Mutation{{Path: "k", Blob: []byte("main-value")}})
	require.NoError(t, err)
	_, err = a.Commit(ctx, mainTree, []hash.Hash{mustResolve(t, ctx, a, "main")}, "main write", "main", testAuthor())
	require.NoError(t, err)

	_, err = m.Apply(ctx, "t1", testAuthor(), noopRebuild)
	require.NoError(t, err)

	kData, ok, err := a.ReadBlob(ctx, "k", "refs/heads/main")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "main-value", string(kData), "main-only change must survive the merge")

	otherData, ok, err := a.ReadBlob(ctx, "other", "refs/heads/main")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "txn-value", string(otherData))
}

func TestApplyUnknownTransactionFails(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	a, _, err := store.Open(ctx, t.TempDir()+"/repo.git")
	require.NoError(t, err)
	seedMain(t, ctx, a, "k", "v")

	m := txn.New(a)
	_, err = m.Apply(ctx, "ghost", testAuthor(), noopRebuild)
	assert.ErrorIs(t, err, yerrors.ErrTransactionNotFound)
}

func mustResolve(t *testing.T, ctx context.Context, a *store.Adapter, branch string) hash.Hash {
	t.Helper()
	oid, ok, err := a.ResolveRef(ctx, branch)
	require.NoError(t, err)
	require.True(t, ok)
	return oid
}
