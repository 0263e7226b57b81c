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

package replication

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Zeerooth/yamabiko/store"
)

// Remote is one configured replication target.
type Remote struct {
	Name   string
	URL    string
	Policy Policy
	Creds  *store.Credentials
}

type registeredRemote struct {
	Remote
	state *remoteState
}

// Manager evaluates and fans out pushes for every configured remote on
// each commit. It never retries a failed push itself (spec.md §7
// propagation policy); callers see the failure on the returned Outcome.
type Manager struct {
	adapter *store.Adapter
	logger  zerolog.Logger

	mu      sync.RWMutex
	remotes map[string]*registeredRemote

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// New returns a Manager pushing through adapter, logging with logger.
func New(adapter *store.Adapter, logger zerolog.Logger) *Manager {
	return &Manager{
		adapter: adapter,
		logger:  logger,
		remotes: map[string]*registeredRemote{},
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddReplica registers or replaces a remote.
func (m *Manager) AddReplica(name, url string, policy Policy, creds *store.Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remotes[name] = &registeredRemote{
		Remote: Remote{Name: name, URL: url, Policy: policy, Creds: creds},
		state:  &remoteState{},
	}
}

// RemoveReplica unregisters a remote; it is a no-op if name is unknown.
func (m *Manager) RemoveReplica(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.remotes, name)
}

// Replicas returns the configured remotes sorted by name.
func (m *Manager) Replicas() []Remote {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Remote, 0, len(m.remotes))
	for _, r := range m.remotes {
		out = append(out, r.Remote)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// OnCommit evaluates every remote's policy for the commit just made on
// branch and fans out the pushes the policies select, using an
// errgroup to run them concurrently. It returns immediately with one
// Outcome per remote, in the same stable order as Replicas(); it never
// blocks on the pushes themselves.
func (m *Manager) OnCommit(ctx context.Context, branch string) []*Outcome {
	m.mu.RLock()
	names := make([]string, 0, len(m.remotes))
	for name := range m.remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	selected := make([]*registeredRemote, len(names))
	for i, name := range names {
		selected[i] = m.remotes[name]
	}
	m.mu.RUnlock()

	now := time.Now()
	outcomes := make([]*Outcome, len(selected))
	g, _ := errgroup.WithContext(ctx)

	for i, remote := range selected {
		i, remote := i, remote
		if !remote.Policy.shouldPush(now, remote.state, m.rnd, &m.rndMu) {
			outcomes[i] = skippedOutcome(remote.Name)
			continue
		}

		pushCtx, cancel := context.WithCancel(ctx)
		oc := newOutcome(remote.Name, cancel)
		outcomes[i] = oc

		g.Go(func() error {
			err := m.adapter.Push(pushCtx, remote.Name, remote.URL, branch, remote.Creds)
			m.logger.Debug().Str("remote", remote.Name).AnErr("push_error", err).Msg("replication push")
			oc.complete(err)
			return nil
		})
	}

	// Reaped in the background purely to avoid leaking the errgroup's
	// internal goroutines; push failures are observed via each
	// Outcome, not via g.Wait()'s return value.
	go func() { _ = g.Wait() }()

	return outcomes
}
