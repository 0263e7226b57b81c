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

// Package store is the Object Store Adapter: a thin facade over the
// underlying git-compatible object database (driven, in this module, by
// shelling out to `git` plumbing commands — see internal/gitplumb — and
// by go-git for networked push). All reads and writes on a given
// repository are linearized by the caller (the Collection); the adapter
// itself does not arbitrate concurrent access.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	yerrors "github.com/Zeerooth/yamabiko/errors"
	"github.com/Zeerooth/yamabiko/hash"
	"github.com/Zeerooth/yamabiko/internal/gitplumb"
)

// Mutation is one path-level change to apply when building a new tree.
// Blob == nil means "delete this path".
type Mutation struct {
	Path string
	Blob []byte
}

// Adapter drives a single bare repository.
type Adapter struct {
	runner *gitplumb.Runner
	api    *gitplumb.GitAPI
	scratch string
}

// Open opens the bare repository at path, initializing one if none
// exists yet. created reports whether a new repository was initialized.
func Open(ctx context.Context, path string) (a *Adapter, created bool, err error) {
	created = !gitplumb.IsBareRepo(path)

	runner, err := gitplumb.InitBare(ctx, path)
	if err != nil {
		return nil, false, yerrors.WrapObjectStore("open repository", err)
	}

	scratch := filepath.Join(path, "yamabiko-scratch")
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, false, yerrors.WrapObjectStore("create scratch dir", err)
	}

	return &Adapter{
		runner:  runner,
		api:     gitplumb.NewGitAPIImpl(runner),
		scratch: scratch,
	}, created, nil
}

// GitDir returns the underlying repository directory.
func (a *Adapter) GitDir() string { return a.runner.GitDir() }

// ReadBlob reads the blob at path under ref's tree. ok is false (and err
// nil) if the path does not exist, matching the "absence, not an error"
// contract for reads.
func (a *Adapter) ReadBlob(ctx context.Context, path, ref string) (data []byte, ok bool, err error) {
	commitOID, found, err := a.api.TryResolveRefCommit(ctx, ref)
	if err != nil {
		return nil, false, yerrors.WrapObjectStore("resolve ref", err)
	}
	if !found {
		return nil, false, nil
	}

	blobOID, err := a.api.ResolvePathBlob(ctx, commitOID, path)
	if err != nil {
		if _, isNotFound := err.(*gitplumb.PathNotFoundError); isNotFound {
			return nil, false, nil
		}
		return nil, false, yerrors.WrapObjectStore("resolve path", err)
	}

	rc, err := a.api.BlobReader(ctx, blobOID)
	if err != nil {
		return nil, false, yerrors.WrapObjectStore("read blob", err)
	}
	defer rc.Close()

	buf, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, yerrors.WrapObjectStore("read blob", err)
	}
	return buf, true, nil
}

// ListTree lists the immediate children of path under ref's tree.
func (a *Adapter) ListTree(ctx context.Context, path, ref string) ([]gitplumb.TreeEntry, error) {
	commitOID, found, err := a.api.TryResolveRefCommit(ctx, ref)
	if err != nil {
		return nil, yerrors.WrapObjectStore("resolve ref", err)
	}
	if !found {
		return nil, nil
	}
	entries, err := a.api.ListTree(ctx, commitOID, path)
	if err != nil {
		return nil, yerrors.WrapObjectStore("list tree", err)
	}
	return entries, nil
}

// ListTreeRecursive lists every blob entry reachable under path.
func (a *Adapter) ListTreeRecursive(ctx context.Context, path, ref string) ([]gitplumb.TreeEntry, error) {
	commitOID, found, err := a.api.TryResolveRefCommit(ctx, ref)
	if err != nil {
		return nil, yerrors.WrapObjectStore("resolve ref", err)
	}
	if !found {
		return nil, nil
	}
	entries, err := a.api.ListTreeRecursive(ctx, commitOID, path)
	if err != nil {
		return nil, yerrors.WrapObjectStore("list tree recursive", err)
	}
	return entries, nil
}

// WriteBlob writes data as a new blob and returns its oid.
func (a *Adapter) WriteBlob(ctx context.Context, data []byte) (hash.Hash, error) {
	oid, err := a.api.HashObject(ctx, byteReader(data))
	if err != nil {
		return hash.Empty, yerrors.WrapObjectStore("write blob", err)
	}
	return oid, nil
}

// BuildTree starts from baseRef's current tree (or an empty tree if
// baseRef does not resolve yet) and applies mutations, reusing unchanged
// subtrees via git's own index/tree machinery (structural sharing is
// inherent to how `git write-tree` constructs objects).
func (a *Adapter) BuildTree(ctx context.Context, baseRef string, mutations []Mutation) (hash.Hash, error) {
	indexFile := a.scratchIndexPath()
	defer os.Remove(indexFile)

	baseCommit, found, err := a.api.TryResolveRefCommit(ctx, baseRef)
	if err != nil {
		return hash.Empty, yerrors.WrapObjectStore("resolve base ref", err)
	}
	if found {
		if err := a.api.ReadTree(ctx, baseCommit, indexFile); err != nil {
			return hash.Empty, yerrors.WrapObjectStore("read base tree", err)
		}
	} else {
		if err := a.api.ReadTreeEmpty(ctx, indexFile); err != nil {
			return hash.Empty, yerrors.WrapObjectStore("read empty tree", err)
		}
	}

	return a.applyMutationsAndWrite(ctx, indexFile, mutations)
}

// BuildTreeFromCommit is BuildTree but seeds the scratch index from a
// known commit oid rather than resolving a branch ref, used by the
// Transaction Manager when merging two branches that have already
// diverged from the ref the caller cares about.
func (a *Adapter) BuildTreeFromCommit(ctx context.Context, baseCommit hash.Hash, mutations []Mutation) (hash.Hash, error) {
	indexFile := a.scratchIndexPath()
	defer os.Remove(indexFile)

	if err := a.api.ReadTree(ctx, baseCommit, indexFile); err != nil {
		return hash.Empty, yerrors.WrapObjectStore("read base tree", err)
	}
	return a.applyMutationsAndWrite(ctx, indexFile, mutations)
}

// BuildTreeFromOID is BuildTreeFromCommit under another name for
// callers that already hold a tree (rather than commit) oid to seed
// from; `git read-tree` accepts either.
func (a *Adapter) BuildTreeFromOID(ctx context.Context, baseTree hash.Hash, mutations []Mutation) (hash.Hash, error) {
	return a.BuildTreeFromCommit(ctx, baseTree, mutations)
}

func (a *Adapter) applyMutationsAndWrite(ctx context.Context, indexFile string, mutations []Mutation) (hash.Hash, error) {
	for _, m := range mutations {
		if m.Blob == nil {
			if err := a.api.RemoveIndexPath(ctx, indexFile, m.Path); err != nil {
				return hash.Empty, yerrors.WrapObjectStore("stage deletion", err)
			}
			continue
		}
		blobOID, err := a.api.HashObject(ctx, byteReader(m.Blob))
		if err != nil {
			return hash.Empty, yerrors.WrapObjectStore("hash blob", err)
		}
		if err := a.api.UpdateIndexCacheInfo(ctx, indexFile, "100644", blobOID, m.Path); err != nil {
			return hash.Empty, yerrors.WrapObjectStore("stage blob", err)
		}
	}

	treeOID, err := a.api.WriteTree(ctx, indexFile)
	if err != nil {
		return hash.Empty, yerrors.WrapObjectStore("write tree", err)
	}
	return treeOID, nil
}

// FirstParentChain returns tip and its ancestors along the first-parent
// line, newest first, used by the Transaction Manager to find the
// common ancestor of main and a transaction branch.
func (a *Adapter) FirstParentChain(ctx context.Context, tip hash.Hash) ([]hash.Hash, error) {
	chain, err := a.api.RevListFirstParent(ctx, tip)
	if err != nil {
		return nil, yerrors.WrapObjectStore("walk first-parent chain", err)
	}
	return chain, nil
}

// Commit creates a commit for treeOID with parents and fast-forwards
// branch to it. If branch already points somewhere other than
// parents[0] (when parents is non-empty), the update is rejected
// (ObjectStoreError) rather than silently clobbering concurrent history.
func (a *Adapter) Commit(ctx context.Context, treeOID hash.Hash, parents []hash.Hash, msg, branch string, author *gitplumb.Identity) (hash.Hash, error) {
	commitOID, err := a.api.CommitTree(ctx, treeOID, parents, msg, author)
	if err != nil {
		return hash.Empty, yerrors.WrapObjectStore("commit tree", err)
	}

	ref := branchRef(branch)
	if len(parents) > 0 {
		if err := a.api.UpdateRefCAS(ctx, ref, commitOID, parents[0], msg); err != nil {
			return hash.Empty, yerrors.WrapObjectStore("update ref (ref moved concurrently)", err)
		}
	} else {
		if err := a.api.UpdateRef(ctx, ref, commitOID, msg); err != nil {
			return hash.Empty, yerrors.WrapObjectStore("update ref", err)
		}
	}
	return commitOID, nil
}

// ResolveRef resolves a branch name to its tip commit.
func (a *Adapter) ResolveRef(ctx context.Context, branch string) (hash.Hash, bool, error) {
	oid, ok, err := a.api.TryResolveRefCommit(ctx, branchRef(branch))
	if err != nil {
		return hash.Empty, false, yerrors.WrapObjectStore("resolve ref", err)
	}
	return oid, ok, nil
}

// UpdateRef points branch directly at oid (used for transaction creation
// and fast-forward transaction apply).
func (a *Adapter) UpdateRef(ctx context.Context, branch string, oid hash.Hash, reason string) error {
	if err := a.api.UpdateRef(ctx, branchRef(branch), oid, reason); err != nil {
		return yerrors.WrapObjectStore("update ref", err)
	}
	return nil
}

// DeleteBranch removes branch's ref entirely.
func (a *Adapter) DeleteBranch(ctx context.Context, branch string) error {
	if err := a.api.DeleteRef(ctx, branchRef(branch)); err != nil {
		return yerrors.WrapObjectStore("delete ref", err)
	}
	return nil
}

// DiffCommits reports which paths differ between two commits.
func (a *Adapter) DiffCommits(ctx context.Context, from, to hash.Hash) ([]gitplumb.DiffEntry, error) {
	entries, err := a.api.DiffCommits(ctx, from, to)
	if err != nil {
		return nil, yerrors.WrapObjectStore("diff commits", err)
	}
	return entries, nil
}

// ReadBlobAtTree reads the blob at path under treeOID directly, without
// resolving a ref first. Used by callers (the Transaction Manager's
// rebuild hook) that already hold a merged tree oid that may not be any
// branch's current tip.
func (a *Adapter) ReadBlobAtTree(ctx context.Context, treeOID hash.Hash, path string) (data []byte, ok bool, err error) {
	blobOID, err := a.api.ResolvePathBlob(ctx, treeOID, path)
	if err != nil {
		if _, isNotFound := err.(*gitplumb.PathNotFoundError); isNotFound {
			return nil, false, nil
		}
		return nil, false, yerrors.WrapObjectStore("resolve path", err)
	}

	rc, err := a.api.BlobReader(ctx, blobOID)
	if err != nil {
		return nil, false, yerrors.WrapObjectStore("read blob", err)
	}
	defer rc.Close()

	buf, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, yerrors.WrapObjectStore("read blob", err)
	}
	return buf, true, nil
}

// ListTreeRecursiveAtTree lists every blob entry reachable under path
// within treeOID directly, without resolving a ref first.
func (a *Adapter) ListTreeRecursiveAtTree(ctx context.Context, treeOID hash.Hash, path string) ([]gitplumb.TreeEntry, error) {
	entries, err := a.api.ListTreeRecursive(ctx, treeOID, path)
	if err != nil {
		return nil, yerrors.WrapObjectStore("list tree recursive", err)
	}
	return entries, nil
}

func branchRef(branch string) string {
	return "refs/heads/" + branch
}

func (a *Adapter) scratchIndexPath() string {
	return filepath.Join(a.scratch, "index-"+strconv.FormatInt(int64(os.Getpid()), 10)+"-"+randSuffix())
}

var scratchCounter uint64

func randSuffix() string {
	n := atomic.AddUint64(&scratchCounter, 1)
	return fmt.Sprintf("%d", n)
}

func byteReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
