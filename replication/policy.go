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

// Package replication is the Replication Policy (spec.md §4.8): for
// each configured remote it decides, per commit, whether to push, and
// fans concurrent pushes out to multiple remotes. Pushes started by
// successive commits run independently of each other, so the order in
// which they complete for one remote is not defined.
package replication

import (
	"math/rand"
	"sync"
	"time"
)

// Kind dispatches the three replication methods spec.md §4.8 defines.
type Kind int

const (
	KindAll Kind = iota
	KindRandom
	KindPeriodic
)

// Policy is a tagged-variant value: exactly one of All, Random(p), or
// Periodic(interval), never dynamically extended.
type Policy struct {
	kind     Kind
	p        float64
	interval time.Duration
}

// All always pushes.
func All() Policy { return Policy{kind: KindAll} }

// Random pushes iff a freshly drawn uniform random number is < p.
func Random(p float64) Policy { return Policy{kind: KindRandom, p: p} }

// Periodic pushes iff at least interval has elapsed since the last
// push to this remote; the first evaluation always pushes.
func Periodic(interval time.Duration) Policy { return Policy{kind: KindPeriodic, interval: interval} }

// Kind reports which variant p is.
func (p Policy) Kind() Kind { return p.kind }

// Param reports Random's probability, the zero value otherwise. Used by the config package to persist the policy.
func (p Policy) Param() float64 { return p.p }

// Interval reports Periodic's interval, the zero value otherwise. Used
// by the config package to persist the policy.
func (p Policy) Interval() time.Duration { return p.interval }

// remoteState is per-remote, in-memory-only state: last_push is
// explicitly NOT persisted across process restarts (spec.md §4.8).
type remoteState struct {
	mu        sync.Mutex
	hasPushed bool
	lastPush  time.Time
}

func (p Policy) shouldPush(now time.Time, st *remoteState, rnd *rand.Rand, rndMu *sync.Mutex) bool {
	switch p.kind {
	case KindAll:
		return true
	case KindRandom:
		rndMu.Lock()
		draw := rnd.Float64()
		rndMu.Unlock()
		return draw < p.p
	case KindPeriodic:
		st.mu.Lock()
		defer st.mu.Unlock()
		if !st.hasPushed || now.Sub(st.lastPush) >= p.interval {
			st.hasPushed = true
			st.lastPush = now
			return true
		}
		return false
	default:
		return false
	}
}
