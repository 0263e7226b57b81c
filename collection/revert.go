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

package collection

import (
	"context"
	"fmt"

	yerrors "github.com/Zeerooth/yamabiko/errors"
	"github.com/Zeerooth/yamabiko/hash"
	"github.com/Zeerooth/yamabiko/store"
)

// RevertN creates a new commit on main whose record tree equals the
// tree n commits back from main's current tip. Index trees are always
// rebuilt from that record tree using main's current registry, never
// carried by raw tree copy — the registry at the reverted-to commit may
// differ from the one in effect now (spec.md §4.4/§9).
func (c *Collection) RevertN(ctx context.Context, n int) (hash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tip, ok, err := c.adapter.ResolveRef(ctx, mainBranch)
	if err != nil {
		return hash.Empty, err
	}
	if !ok {
		return hash.Empty, yerrors.Wrap(yerrors.ErrObjectStore, nil, "main has no commits yet")
	}

	chain, err := c.adapter.FirstParentChain(ctx, tip)
	if err != nil {
		return hash.Empty, err
	}
	if n < 0 || n >= len(chain) {
		return hash.Empty, yerrors.Wrap(yerrors.ErrObjectStore, nil, fmt.Sprintf("revert_n: %d commits back exceeds history depth %d", n, len(chain)-1))
	}

	return c.revertToCommit(ctx, chain[n], fmt.Sprintf("revert_n %d", n))
}

// RevertTo creates a new commit on main whose record tree equals
// commitOID's record tree.
func (c *Collection) RevertTo(ctx context.Context, commitOID hash.Hash) (hash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revertToCommit(ctx, commitOID, "revert_to "+commitOID.String())
}

func (c *Collection) revertToCommit(ctx context.Context, target hash.Hash, msg string) (hash.Hash, error) {
	// BuildTreeFromCommit with no mutations simply round-trips target's
	// tree through the scratch index, yielding its tree oid.
	targetTree, err := c.adapter.BuildTreeFromCommit(ctx, target, nil)
	if err != nil {
		return hash.Empty, err
	}

	reg, err := c.loadRegistry(ctx, mainBranch)
	if err != nil {
		return hash.Empty, err
	}
	mutations, err := c.rebuildFromTree(ctx, targetTree, reg)
	if err != nil {
		return hash.Empty, err
	}
	// The target commit carries its own (possibly stale) registry blob.
	// Overwrite it with the registry that actually drove the rebuild
	// above, so the committed _index_registry stays the authoritative
	// description of the _index/ subtree it is committed alongside
	// (spec.md §3 invariant 3).
	mutations = append(mutations, store.Mutation{Path: registryPath, Blob: mustEncodeRegistry(reg)})

	finalTree, err := c.adapter.BuildTreeFromOID(ctx, targetTree, mutations)
	if err != nil {
		return hash.Empty, err
	}

	mainTip, ok, err := c.adapter.ResolveRef(ctx, mainBranch)
	if err != nil {
		return hash.Empty, err
	}
	var parents []hash.Hash
	if ok {
		parents = []hash.Hash{mainTip}
	}
	return c.adapter.Commit(ctx, finalTree, parents, msg, mainBranch, c.author)
}
