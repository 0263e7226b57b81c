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

// Package txn is the Transaction Manager (spec.md §4.5): long-lived
// branches diverging from main, merged back with "transaction wins"
// conflict resolution on record paths and a full index rebuild rather
// than a raw tree merge.
package txn

import (
	"context"
	"fmt"

	yerrors "github.com/Zeerooth/yamabiko/errors"
	"github.com/Zeerooth/yamabiko/hash"
	"github.com/Zeerooth/yamabiko/internal/gitplumb"
	"github.com/Zeerooth/yamabiko/store"
)

const mainBranch = "main"

// Manager drives branch creation, fast-forward/merge apply, and abandon
// over a single repository.
type Manager struct {
	adapter *store.Adapter
}

// New returns a Manager bound to adapter.
func New(adapter *store.Adapter) *Manager {
	return &Manager{adapter: adapter}
}

// New creates branch name at main's current tip. Returns
// ErrTransactionConflict if the branch already exists.
func (m *Manager) New(ctx context.Context, name string) error {
	if _, ok, err := m.adapter.ResolveRef(ctx, name); err != nil {
		return err
	} else if ok {
		return yerrors.Wrap(yerrors.ErrTransactionConflict, nil, fmt.Sprintf("transaction %q already exists", name))
	}

	mainTip, ok, err := m.adapter.ResolveRef(ctx, mainBranch)
	if err != nil {
		return err
	}
	if !ok {
		return yerrors.Wrap(yerrors.ErrObjectStore, nil, "main has no commits yet")
	}
	return m.adapter.UpdateRef(ctx, name, mainTip, "new_transaction "+name)
}

// Abandon deletes name's branch ref, leaving its objects for the object
// store's own garbage collection.
func (m *Manager) Abandon(ctx context.Context, name string) error {
	if _, ok, err := m.adapter.ResolveRef(ctx, name); err != nil {
		return err
	} else if !ok {
		return yerrors.Wrap(yerrors.ErrTransactionNotFound, nil, name)
	}
	return m.adapter.DeleteBranch(ctx, name)
}

// RebuildFunc recomputes the `_index/` subtree for the merged record set
// and returns the index-leaf mutations needed to bring it up to date.
// Collection supplies this so txn stays free of a direct dependency on
// the codec/registry-aware Index Manager.
type RebuildFunc func(ctx context.Context, mergedTreeOID hash.Hash) ([]store.Mutation, error)

// Apply fast-forwards main to name's tip if main has not advanced since
// name branched; otherwise it performs a three-way "transaction wins"
// merge: main's changes to paths the transaction did not touch are
// preserved, every path the transaction touched uses the transaction's
// value, and rebuild recomputes every index entry from the merged record
// set (never merged as raw trees, per spec.md §4.5).
func (m *Manager) Apply(ctx context.Context, name string, author *gitplumb.Identity, rebuild RebuildFunc) (hash.Hash, error) {
	txnTip, ok, err := m.adapter.ResolveRef(ctx, name)
	if err != nil {
		return hash.Empty, err
	}
	if !ok {
		return hash.Empty, yerrors.Wrap(yerrors.ErrTransactionNotFound, nil, name)
	}

	mainTip, ok, err := m.adapter.ResolveRef(ctx, mainBranch)
	if err != nil {
		return hash.Empty, err
	}
	if !ok {
		// main has no commits: fast-forward trivially.
		if err := m.adapter.UpdateRef(ctx, mainBranch, txnTip, "apply_transaction "+name+" (fast-forward)"); err != nil {
			return hash.Empty, err
		}
		return txnTip, nil
	}
	if mainTip.Equal(txnTip) {
		return mainTip, nil
	}

	ancestor, err := m.commonAncestor(ctx, mainTip, txnTip)
	if err != nil {
		return hash.Empty, err
	}
	if ancestor.Equal(mainTip) {
		// main has not advanced since the transaction branched: pure
		// fast-forward, no merge commit needed.
		if err := m.adapter.UpdateRef(ctx, mainBranch, txnTip, "apply_transaction "+name+" (fast-forward)"); err != nil {
			return hash.Empty, err
		}
		return txnTip, nil
	}

	mergedTree, err := m.mergeRecordTrees(ctx, ancestor, mainTip, txnTip)
	if err != nil {
		return hash.Empty, err
	}

	mutations, err := rebuild(ctx, mergedTree)
	if err != nil {
		return hash.Empty, err
	}
	finalTree, err := m.adapter.BuildTreeFromOID(ctx, mergedTree, mutations)
	if err != nil {
		return hash.Empty, err
	}

	msg := "apply_transaction " + name
	commitOID, err := m.adapter.Commit(ctx, finalTree, []hash.Hash{mainTip, txnTip}, msg, mainBranch, author)
	if err != nil {
		return hash.Empty, err
	}
	return commitOID, nil
}

// commonAncestor walks both branches' first-parent history (this module
// never creates commits with unrelated histories other than merges it
// authors itself) looking for the first commit reachable from both.
func (m *Manager) commonAncestor(ctx context.Context, a, b hash.Hash) (hash.Hash, error) {
	ancestorsOfA, err := m.firstParentChain(ctx, a)
	if err != nil {
		return hash.Empty, err
	}
	seen := make(map[string]bool, len(ancestorsOfA))
	for _, c := range ancestorsOfA {
		seen[c.String()] = true
	}

	chainB, err := m.firstParentChain(ctx, b)
	if err != nil {
		return hash.Empty, err
	}
	for _, c := range chainB {
		if seen[c.String()] {
			return c, nil
		}
	}
	return hash.Empty, yerrors.Wrap(yerrors.ErrTransactionConflict, nil, "no common ancestor between main and transaction")
}

func (m *Manager) firstParentChain(ctx context.Context, tip hash.Hash) ([]hash.Hash, error) {
	return m.adapter.FirstParentChain(ctx, tip)
}

// mergeRecordTrees computes the merged tree oid: start from the
// transaction's tree (transaction wins on anything it touched), then
// overlay any path main changed relative to ancestor that the
// transaction did NOT also change.
func (m *Manager) mergeRecordTrees(ctx context.Context, ancestor, mainTip, txnTip hash.Hash) (hash.Hash, error) {
	mainDiff, err := m.adapter.DiffCommits(ctx, ancestor, mainTip)
	if err != nil {
		return hash.Empty, err
	}
	txnDiff, err := m.adapter.DiffCommits(ctx, ancestor, txnTip)
	if err != nil {
		return hash.Empty, err
	}

	touchedByTxn := make(map[string]bool, len(txnDiff))
	for _, d := range txnDiff {
		touchedByTxn[d.Path] = true
	}

	var overlay []store.Mutation
	for _, d := range mainDiff {
		if touchedByTxn[d.Path] {
			continue // transaction wins
		}
		if d.Status == "D" {
			overlay = append(overlay, store.Mutation{Path: d.Path, Blob: nil})
			continue
		}
		data, ok, err := m.adapter.ReadBlob(ctx, d.Path, "refs/heads/"+mainBranch)
		if err != nil {
			return hash.Empty, err
		}
		if !ok {
			continue
		}
		overlay = append(overlay, store.Mutation{Path: d.Path, Blob: data})
	}

	return m.adapter.BuildTreeFromCommit(ctx, txnTip, overlay)
}
