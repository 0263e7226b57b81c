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

	"github.com/Zeerooth/yamabiko/hash"
	"github.com/Zeerooth/yamabiko/index"
	"github.com/Zeerooth/yamabiko/query"
	"github.com/Zeerooth/yamabiko/replication"
	"github.com/Zeerooth/yamabiko/shard"
	"github.com/Zeerooth/yamabiko/store"
)

// Get decodes the record stored at key on target and returns it as the
// caller's value type T. A missing key reports ok=false with a nil
// error, per spec.md §4.4.
func Get[T any](ctx context.Context, c *Collection, key, target string) (value T, ok bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path, err := shard.Path(key)
	if err != nil {
		return value, false, err
	}
	data, found, err := c.adapter.ReadBlob(ctx, path, refFor(target))
	if err != nil || !found {
		return value, false, err
	}
	if err := c.codec.Decode(data, &value); err != nil {
		return value, false, err
	}
	return value, true, nil
}

// Set encodes value, writes it at key on target in a new commit, updates
// affected secondary indexes under the same commit, and triggers the
// Replication Policy for target == main. Transaction branches are
// process-local staging areas and are never themselves pushed.
func Set[T any](ctx context.Context, c *Collection, key string, value T, target string) ([]*replication.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, err := shard.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := c.codec.Encode(value)
	if err != nil {
		return nil, err
	}

	oldData, _, err := c.adapter.ReadBlob(ctx, path, refFor(target))
	if err != nil {
		return nil, err
	}

	mutations, err := c.recordMutations(ctx, target, key, path, oldData, data)
	if err != nil {
		return nil, err
	}

	if _, err := c.commit(ctx, target, mutations, "set "+key); err != nil {
		return nil, err
	}
	return c.maybeReplicate(ctx, target), nil
}

// BatchEntry is one (key, encoded value) pair for SetBatch. Values are
// encoded ahead of the call so a type parameter can apply per-entry.
type BatchEntry struct {
	Key  string
	Data []byte
}

// SetBatch writes every entry in one commit; index mutations across all
// entries are coalesced into that same commit. If the same key appears
// more than once, the last entry for that key wins, per spec.md §4.4.
func SetBatch(ctx context.Context, c *Collection, entries []BatchEntry, target string) ([]*replication.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	latest := map[string][]byte{}
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, seen := latest[e.Key]; !seen {
			order = append(order, e.Key)
		}
		latest[e.Key] = e.Data
	}

	var mutations []store.Mutation
	for _, key := range order {
		data := latest[key]
		path, err := shard.Path(key)
		if err != nil {
			return nil, err
		}
		oldData, _, err := c.adapter.ReadBlob(ctx, path, refFor(target))
		if err != nil {
			return nil, err
		}
		entryMutations, err := c.recordMutations(ctx, target, key, path, oldData, data)
		if err != nil {
			return nil, err
		}
		mutations = append(mutations, entryMutations...)
	}

	if _, err := c.commit(ctx, target, mutations, fmt.Sprintf("set_batch (%d keys)", len(order))); err != nil {
		return nil, err
	}
	return c.maybeReplicate(ctx, target), nil
}

// Delete removes key's record and its index entries on target. A delete
// of an absent key is a no-op that produces no commit, per the
// deliberate deviation documented in DESIGN.md.
func Delete(ctx context.Context, c *Collection, key, target string) ([]*replication.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, err := shard.Path(key)
	if err != nil {
		return nil, err
	}
	oldData, ok, err := c.adapter.ReadBlob(ctx, path, refFor(target))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	mutations, err := c.recordMutations(ctx, target, key, path, oldData, nil)
	if err != nil {
		return nil, err
	}
	if _, err := c.commit(ctx, target, mutations, "delete "+key); err != nil {
		return nil, err
	}
	return c.maybeReplicate(ctx, target), nil
}

// recordMutations builds the record write/delete plus its index deltas
// for one key, against target's currently declared registry.
func (c *Collection) recordMutations(ctx context.Context, target, key, path string, oldData, newData []byte) ([]store.Mutation, error) {
	reg, err := c.loadRegistry(ctx, target)
	if err != nil {
		return nil, err
	}
	deltas, err := c.idxMgr.ComputeDeltas(reg, key, oldData, newData)
	if err != nil {
		return nil, err
	}
	mutations := make([]store.Mutation, 0, 1+len(deltas))
	mutations = append(mutations, store.Mutation{Path: path, Blob: newData})
	mutations = append(mutations, index.ToStoreMutations(deltas)...)
	return mutations, nil
}

// commit builds a tree from target's current tip, applies mutations, and
// commits with that tip as the sole parent.
func (c *Collection) commit(ctx context.Context, target string, mutations []store.Mutation, msg string) (hash.Hash, error) {
	treeOID, err := c.adapter.BuildTree(ctx, refFor(target), mutations)
	if err != nil {
		return hash.Empty, err
	}
	tip, ok, err := c.adapter.ResolveRef(ctx, target)
	if err != nil {
		return hash.Empty, err
	}
	var parents []hash.Hash
	if ok {
		parents = []hash.Hash{tip}
	}
	return c.adapter.Commit(ctx, treeOID, parents, msg, target, c.author)
}

func (c *Collection) maybeReplicate(ctx context.Context, target string) []*replication.Outcome {
	if !isMain(target) {
		return nil
	}
	return c.replMgr.OnCommit(ctx, target)
}

// Query runs pred against target, per the Query Engine's planner and
// full-scan fallback (spec.md §4.7).
func (c *Collection) Query(ctx context.Context, pred query.Predicate, target string, limit int) ([]query.Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	reg, err := c.loadRegistry(ctx, target)
	if err != nil {
		return nil, err
	}
	return query.Execute(ctx, c.adapter, c.codec, reg, refFor(target), pred, limit)
}
