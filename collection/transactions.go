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

	"github.com/Zeerooth/yamabiko/hash"
	"github.com/Zeerooth/yamabiko/index"
	"github.com/Zeerooth/yamabiko/registry"
	"github.com/Zeerooth/yamabiko/shard"
	"github.com/Zeerooth/yamabiko/store"
)

// NewTransaction creates branch name at main's current tip.
func (c *Collection) NewTransaction(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txnMgr.New(ctx, name)
}

// AbandonTransaction deletes name's branch without merging it.
func (c *Collection) AbandonTransaction(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txnMgr.Abandon(ctx, name)
}

// ApplyTransaction fast-forwards main to name's tip if possible,
// otherwise performs the "transaction wins" merge described in
// spec.md §4.5, rebuilding every index from the merged record set using
// main's current registry (never merging raw index trees).
func (c *Collection) ApplyTransaction(ctx context.Context, name string) (hash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reg, err := c.loadRegistry(ctx, mainBranch)
	if err != nil {
		return hash.Empty, err
	}

	return c.txnMgr.Apply(ctx, name, c.author, func(ctx context.Context, mergedTree hash.Hash) ([]store.Mutation, error) {
		return c.rebuildFromTree(ctx, mergedTree, reg)
	})
}

// rebuildFromTree recomputes the entire `_index/` subtree for reg from
// the records materialized in treeOID: every existing index leaf is
// cleared and a fresh set is emitted from a full scan, per spec.md
// §4.6's rebuild-not-merge rule.
func (c *Collection) rebuildFromTree(ctx context.Context, treeOID hash.Hash, reg *registry.Registry) ([]store.Mutation, error) {
	existing, err := c.adapter.ListTreeRecursiveAtTree(ctx, treeOID, index.RootPrefix)
	if err != nil {
		return nil, err
	}
	var clear []index.Mutation
	for _, e := range existing {
		clear = append(clear, index.Mutation{Path: e.Name, Blob: nil})
	}

	allEntries, err := c.adapter.ListTreeRecursiveAtTree(ctx, treeOID, "")
	if err != nil {
		return nil, err
	}
	records := map[string][]byte{}
	for _, e := range allEntries {
		if isReservedPath(e.Name) {
			continue
		}
		data, ok, err := c.adapter.ReadBlobAtTree(ctx, treeOID, e.Name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		records[shard.KeyFromPath(e.Name)] = data
	}

	rebuilt, err := c.idxMgr.Rebuild(ctx, reg, records)
	if err != nil {
		return nil, err
	}

	return index.ToStoreMutations(append(clear, rebuilt...)), nil
}
