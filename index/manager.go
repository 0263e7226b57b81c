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

// Package index is the Index Manager (spec.md §4.6): it turns a write or
// delete of a record into the set of secondary-index leaf mutations that
// keep the `_index/` subtree consistent with the declared registry, and
// can rebuild that subtree from scratch when the registry itself changes
// or a transaction is merged.
package index

import (
	"context"

	"github.com/Zeerooth/yamabiko/codec"
	"github.com/Zeerooth/yamabiko/registry"
	"github.com/Zeerooth/yamabiko/store"
)

// Mutation is an index-leaf-level change. It has the same shape as
// store.Mutation and is converted to one by the caller; keeping index
// free of a direct dependency on store's Mutation type is not warranted
// here since both live in the same module and the conversion is trivial,
// but the explicit type keeps this package's public surface self
// describing.
type Mutation struct {
	Path string
	Blob []byte
}

// ToStoreMutations adapts a slice of index Mutations to store Mutations.
func ToStoreMutations(ms []Mutation) []store.Mutation {
	out := make([]store.Mutation, 0, len(ms))
	for _, m := range ms {
		out = append(out, store.Mutation{Path: m.Path, Blob: m.Blob})
	}
	return out
}

// Manager computes index deltas using c to decode indexed field values
// out of record blobs.
type Manager struct {
	c codec.Codec
}

// New returns a Manager that decodes records with c.
func New(c codec.Codec) *Manager {
	return &Manager{c: c}
}

// ComputeDeltas returns the leaf mutations needed to move the index
// forward for one record write or delete. oldRecord is the record's
// previous encoded value (nil if it did not previously exist); newRecord
// is its new encoded value (nil for a delete). reg declares which fields
// are indexed and how.
//
// A field whose old and new derived paths are identical (value did not
// change) produces no mutation for that field, so an unrelated field
// update never touches indexes it did not affect.
func (m *Manager) ComputeDeltas(reg *registry.Registry, key string, oldRecord, newRecord []byte) ([]Mutation, error) {
	var out []Mutation
	for _, entry := range reg.Entries() {
		oldPath, oldOK := m.fieldPath(entry, key, oldRecord)
		newPath, newOK := m.fieldPath(entry, key, newRecord)

		if oldOK && (!newOK || oldPath != newPath) {
			out = append(out, Mutation{Path: oldPath, Blob: nil})
		}
		if newOK && (!oldOK || oldPath != newPath) {
			out = append(out, Mutation{Path: newPath, Blob: []byte(key)})
		}
	}
	return out, nil
}

func (m *Manager) fieldPath(entry registry.Entry, key string, record []byte) (string, bool) {
	if record == nil {
		return "", false
	}
	value, present, err := m.c.DecodeField(record, entry.Field)
	if err != nil || !present {
		return "", false
	}
	return derivePath(entry.Field, entry.Kind, value, key)
}

// Rebuild recomputes the entire `_index/` subtree for reg from the live
// set of records, used by add_index, by revert and after a
// transaction merge (spec.md §4.6 point 3, §4.5 rebuild-not-merge rule).
// records maps each record key to its current encoded value.
func (m *Manager) Rebuild(ctx context.Context, reg *registry.Registry, records map[string][]byte) ([]Mutation, error) {
	var out []Mutation
	for _, entry := range reg.Entries() {
		for key, record := range records {
			path, ok := m.fieldPath(entry, key, record)
			if !ok {
				continue
			}
			out = append(out, Mutation{Path: path, Blob: []byte(key)})
		}
	}
	return out, nil
}

// ClearAll returns one deletion for each path in existing, the
// currently-materialized leaves under RootPrefix.
func ClearAll(existing []Mutation) []Mutation {
	out := make([]Mutation, 0, len(existing))
	for _, e := range existing {
		out = append(out, Mutation{Path: e.Path, Blob: nil})
	}
	return out
}
