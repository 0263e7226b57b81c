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

package query

import (
	"context"
	"strings"

	"github.com/Zeerooth/yamabiko/codec"
	"github.com/Zeerooth/yamabiko/index"
	"github.com/Zeerooth/yamabiko/registry"
	"github.com/Zeerooth/yamabiko/shard"
	"github.com/Zeerooth/yamabiko/store"
)

// Result is one matching record, identified by its original key.
type Result struct {
	Key    string
	Record map[string]interface{}
}

// Execute runs pred against the collection rooted at ref, returning up
// to limit matches (limit <= 0 means unbounded). Ordering is stable
// within one call but otherwise implementation-defined, per spec.md
// §4.7.
func Execute(ctx context.Context, a *store.Adapter, c codec.Codec, reg *registry.Registry, ref string, pred Predicate, limit int) ([]Result, error) {
	clauses := toDNF(pred)

	seen := map[string]bool{}
	var results []Result

	for _, clause := range clauses {
		keys, usedIndex, err := candidateKeys(ctx, a, reg, ref, clause)
		if err != nil {
			return nil, err
		}
		if !usedIndex {
			keys, err = fullScanKeys(ctx, a, ref)
			if err != nil {
				return nil, err
			}
		}

		for _, key := range keys {
			if seen[key] {
				continue
			}
			record, ok, err := readRecord(ctx, a, c, key, ref)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if !Evaluate(pred, record) {
				continue
			}
			seen[key] = true
			results = append(results, Result{Key: key, Record: record})
			if limit > 0 && len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

func readRecord(ctx context.Context, a *store.Adapter, c codec.Codec, key, ref string) (map[string]interface{}, bool, error) {
	path, err := shard.Path(key)
	if err != nil {
		return nil, false, err
	}
	data, ok, err := a.ReadBlob(ctx, path, ref)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := c.DecodeMap(data)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func candidateKeys(ctx context.Context, a *store.Adapter, reg *registry.Registry, ref string, clause []Predicate) ([]string, bool, error) {
	cand, ok := planClause(reg, clause)
	if !ok {
		return nil, false, nil
	}

	switch cand.kind {
	case registry.Sequential:
		dir := index.SequentialDir(cand.field, cand.value)
		entries, err := a.ListTree(ctx, dir, ref)
		if err != nil {
			return nil, false, err
		}
		var keys []string
		for _, e := range entries {
			data, ok, err := a.ReadBlob(ctx, dir+"/"+e.Name, ref)
			if err != nil {
				return nil, false, err
			}
			if ok {
				keys = append(keys, string(data))
			}
		}
		return keys, true, nil

	case registry.Numeric:
		dir := index.NumericDir(cand.field)
		entries, err := a.ListTreeRecursive(ctx, dir, ref)
		if err != nil {
			return nil, false, err
		}
		var keys []string
		for _, e := range entries {
			segs := strings.Split(e.Name, "/")
			if len(segs) < 2 {
				continue
			}
			encoded := segs[len(segs)-2]
			v, ok := index.DecodeNumericBound(encoded)
			if !ok || v < cand.lo || v > cand.hi {
				continue
			}
			data, ok, err := a.ReadBlob(ctx, e.Name, ref)
			if err != nil {
				return nil, false, err
			}
			if ok {
				keys = append(keys, string(data))
			}
		}
		return keys, true, nil

	default:
		return nil, false, nil
	}
}

// fullScanKeys enumerates every record key in the tree, skipping the
// reserved `_index/` subtree and top-level metadata blobs.
func fullScanKeys(ctx context.Context, a *store.Adapter, ref string) ([]string, error) {
	entries, err := a.ListTreeRecursive(ctx, "", ref)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name, index.RootPrefix+"/") {
			continue
		}
		if e.Name == "_format" || e.Name == "_index_registry" {
			continue
		}
		keys = append(keys, shard.KeyFromPath(e.Name))
	}
	return keys, nil
}
