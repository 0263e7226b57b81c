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

// Indexes returns the indexes currently declared on target, sorted by
// field name, per the `_index_registry` blob in effect at its tip.
func (c *Collection) Indexes(ctx context.Context, target string) ([]registry.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	reg, err := c.loadRegistry(ctx, target)
	if err != nil {
		return nil, err
	}
	return reg.Entries(), nil
}

// AddIndex declares field as indexed with kind on target, performs a
// full scan decoding every record, and commits every materialized index
// entry for field in one commit.
func (c *Collection) AddIndex(ctx context.Context, field string, kind registry.Kind, target string) (hash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reg, err := c.loadRegistry(ctx, target)
	if err != nil {
		return hash.Empty, err
	}
	if err := reg.Add(field, kind); err != nil {
		return hash.Empty, err
	}

	tip, _, err := c.adapter.ResolveRef(ctx, target)
	if err != nil {
		return hash.Empty, err
	}
	baseTree, err := c.adapter.BuildTreeFromCommit(ctx, tip, nil)
	if err != nil {
		return hash.Empty, err
	}

	records, err := c.scanRecords(ctx, baseTree)
	if err != nil {
		return hash.Empty, err
	}
	added, err := c.idxMgr.Rebuild(ctx, singleFieldRegistry(field, kind), records)
	if err != nil {
		return hash.Empty, err
	}

	mutations := append([]store.Mutation{{Path: registryPath, Blob: mustEncodeRegistry(reg)}}, index.ToStoreMutations(added)...)
	return c.commit(ctx, target, mutations, "add_index "+field)
}

// RemoveIndex undeclares field on target and commits the removal of
// every materialized leaf under `_index/<field>/…`.
func (c *Collection) RemoveIndex(ctx context.Context, field string, target string) (hash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reg, err := c.loadRegistry(ctx, target)
	if err != nil {
		return hash.Empty, err
	}
	if err := reg.Remove(field); err != nil {
		return hash.Empty, err
	}

	fieldDir := index.RootPrefix + "/" + field
	leaves, err := c.adapter.ListTreeRecursive(ctx, fieldDir, refFor(target))
	if err != nil {
		return hash.Empty, err
	}
	clear := make([]store.Mutation, 0, len(leaves))
	for _, e := range leaves {
		clear = append(clear, store.Mutation{Path: e.Name, Blob: nil})
	}

	mutations := append([]store.Mutation{{Path: registryPath, Blob: mustEncodeRegistry(reg)}}, clear...)
	return c.commit(ctx, target, mutations, "remove_index "+field)
}

func (c *Collection) scanRecords(ctx context.Context, treeOID hash.Hash) (map[string][]byte, error) {
	entries, err := c.adapter.ListTreeRecursiveAtTree(ctx, treeOID, "")
	if err != nil {
		return nil, err
	}
	records := map[string][]byte{}
	for _, e := range entries {
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
	return records, nil
}

func singleFieldRegistry(field string, kind registry.Kind) *registry.Registry {
	reg := registry.New()
	_ = reg.Add(field, kind)
	return reg
}
