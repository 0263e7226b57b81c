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

// Package collection is the public façade (spec.md §4.4): it wires the
// Codec, Path Sharder, Object Store Adapter, Index Manager, Transaction
// Manager, and Replication Policy together behind a single handle, and
// owns the collection-wide lock that serializes every mutating call.
package collection

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Zeerooth/yamabiko/codec"
	"github.com/Zeerooth/yamabiko/config"
	yerrors "github.com/Zeerooth/yamabiko/errors"
	"github.com/Zeerooth/yamabiko/index"
	"github.com/Zeerooth/yamabiko/internal/gitplumb"
	"github.com/Zeerooth/yamabiko/log"
	"github.com/Zeerooth/yamabiko/registry"
	"github.com/Zeerooth/yamabiko/replication"
	"github.com/Zeerooth/yamabiko/shard"
	"github.com/Zeerooth/yamabiko/store"
	"github.com/Zeerooth/yamabiko/txn"
)

const (
	mainBranch     = "main"
	formatPath     = "_format"
	registryPath   = "_index_registry"
	initialMessage = "open_or_create: initialize collection"
)

// Identity is re-exported so callers never need to import internal/gitplumb
// directly to supply a commit author.
type Identity = gitplumb.Identity

// Collection is a handle bound to one repository path and one fixed
// data format, per spec.md §3.
type Collection struct {
	path   string
	format codec.Format
	codec  codec.Codec
	author *Identity
	logger zerolog.Logger

	adapter *store.Adapter
	idxMgr  *index.Manager
	txnMgr  *txn.Manager
	replMgr *replication.Manager
	cfg     *config.Store

	mu sync.RWMutex
}

// Option customizes OpenOrCreate.
type Option func(*Collection)

// WithAuthor sets the commit identity used for every write. Defaults to
// a fixed "yamabiko" identity if not given.
func WithAuthor(id Identity) Option {
	return func(c *Collection) { c.author = &id }
}

// WithLogger overrides the default per-repo logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Collection) { c.logger = logger }
}

// OpenOrCreate opens the collection at path, verifying its persisted
// format matches, or initializes a new one with format if none exists.
func OpenOrCreate(ctx context.Context, path string, format codec.Format, opts ...Option) (*Collection, error) {
	if _, err := codec.Parse(string(format)); err != nil {
		return nil, err
	}

	adapter, created, err := store.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	c := &Collection{
		path:    path,
		format:  format,
		codec:   codec.New(format),
		author:  &Identity{Name: "yamabiko", Email: "yamabiko@localhost"},
		logger:  log.ForRepo(path),
		adapter: adapter,
		txnMgr:  txn.New(adapter),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.idxMgr = index.New(c.codec)
	c.replMgr = replication.New(adapter, c.logger)

	if created {
		if err := c.initialize(ctx); err != nil {
			return nil, err
		}
	} else if err := c.verifyFormat(ctx); err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	for _, r := range cfg.Replicas() {
		c.replMgr.AddReplica(r.Name, r.URL, r.Policy(), r.Credentials())
	}

	return c, nil
}

func (c *Collection) initialize(ctx context.Context) error {
	mutations := []store.Mutation{
		{Path: formatPath, Blob: []byte(c.format)},
		{Path: registryPath, Blob: mustEncodeRegistry(registry.New())},
	}
	treeOID, err := c.adapter.BuildTree(ctx, "refs/heads/"+mainBranch, mutations)
	if err != nil {
		return err
	}
	_, err = c.adapter.Commit(ctx, treeOID, nil, initialMessage, mainBranch, c.author)
	return err
}

func (c *Collection) verifyFormat(ctx context.Context) error {
	data, ok, err := c.adapter.ReadBlob(ctx, formatPath, "refs/heads/"+mainBranch)
	if err != nil {
		return err
	}
	if !ok {
		return yerrors.Wrap(yerrors.ErrFormatMismatch, nil, "collection has no persisted format")
	}
	if codec.Format(data) != c.format {
		return yerrors.Wrap(yerrors.ErrFormatMismatch, nil, fmt.Sprintf("persisted format %q, requested %q", data, c.format))
	}
	return nil
}

func mustEncodeRegistry(reg *registry.Registry) []byte {
	b, err := reg.Encode()
	if err != nil {
		// An empty registry always encodes; a failure here would be a
		// programming error in registry.Encode, not a runtime condition.
		panic(err)
	}
	return b
}

func refFor(target string) string { return "refs/heads/" + target }

func isMain(target string) bool { return target == mainBranch }

// loadRegistry reads the authoritative `_index_registry` blob at
// target's current tip; an absent blob (never happens past
// initialization, but tolerated) is treated as an empty registry.
func (c *Collection) loadRegistry(ctx context.Context, target string) (*registry.Registry, error) {
	data, ok, err := c.adapter.ReadBlob(ctx, registryPath, refFor(target))
	if err != nil {
		return nil, err
	}
	if !ok {
		return registry.New(), nil
	}
	return registry.Decode(data)
}

// Path returns the filesystem path this collection is bound to.
func (c *Collection) Path() string { return c.path }

// Format returns the format fixed at creation.
func (c *Collection) Format() codec.Format { return c.format }

func isReservedPath(path string) bool {
	return path == formatPath || path == registryPath || strings.HasPrefix(path, shard.ReservedPrefix+"/")
}
