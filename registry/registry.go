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

// Package registry models the `_index_registry` blob: the authoritative,
// in-commit declaration of which secondary indexes the Index Manager
// maintains. It is written in every commit that changes it, so the
// history of the collection's schema is preserved (spec.md §9).
package registry

import (
	"sort"

	json "github.com/goccy/go-json"

	yerrors "github.com/Zeerooth/yamabiko/errors"
)

// Kind is the materialization strategy for one indexed field.
type Kind string

const (
	Sequential Kind = "seq"
	Numeric    Kind = "num"
)

// Entry declares one indexed field.
type Entry struct {
	Field string `json:"field"`
	Kind  Kind   `json:"kind"`
}

// Registry is the set of declared indexes, keyed by field name.
type Registry struct {
	entries map[string]Kind
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: map[string]Kind{}}
}

// Decode parses the `_index_registry` blob contents.
func Decode(data []byte) (*Registry, error) {
	if len(data) == 0 {
		return New(), nil
	}
	var list []Entry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, yerrors.Wrap(yerrors.ErrDeserializationFailed, err, "_index_registry")
	}
	r := New()
	for _, e := range list {
		r.entries[e.Field] = e.Kind
	}
	return r, nil
}

// Encode serializes the registry back to its canonical, sorted blob form.
func (r *Registry) Encode() ([]byte, error) {
	list := r.Entries()
	b, err := json.Marshal(list)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.ErrSerializationFailed, err, "_index_registry")
	}
	return b, nil
}

// Entries returns the declared indexes sorted by field name, for
// deterministic encoding and iteration.
func (r *Registry) Entries() []Entry {
	fields := make([]string, 0, len(r.entries))
	for f := range r.entries {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	list := make([]Entry, 0, len(fields))
	for _, f := range fields {
		list = append(list, Entry{Field: f, Kind: r.entries[f]})
	}
	return list
}

// Has reports whether field is indexed, and with which kind.
func (r *Registry) Has(field string) (Kind, bool) {
	k, ok := r.entries[field]
	return k, ok
}

// Add declares field with the given kind. Returns ErrIndexAlreadyExists
// if field is already declared.
func (r *Registry) Add(field string, kind Kind) error {
	if _, ok := r.entries[field]; ok {
		return yerrors.Wrap(yerrors.ErrIndexAlreadyExists, nil, field)
	}
	r.entries[field] = kind
	return nil
}

// Remove undeclares field. Returns ErrIndexUnknown if it was not declared.
func (r *Registry) Remove(field string) error {
	if _, ok := r.entries[field]; !ok {
		return yerrors.Wrap(yerrors.ErrIndexUnknown, nil, field)
	}
	delete(r.entries, field)
	return nil
}

// Clone returns a deep copy, used when computing a rebuilt registry
// without mutating the caller's view mid-operation.
func (r *Registry) Clone() *Registry {
	out := New()
	for f, k := range r.entries {
		out.entries[f] = k
	}
	return out
}
