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
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllAlwaysPushes(t *testing.T) {
	p := All()
	st := &remoteState{}
	rnd := rand.New(rand.NewSource(1))
	var mu sync.Mutex
	now := time.Now()
	for i := 0; i < 5; i++ {
		assert.True(t, p.shouldPush(now, st, rnd, &mu))
	}
}

func TestRandomApproximatelyMatchesProbability(t *testing.T) {
	p := Random(0.3)
	rnd := rand.New(rand.NewSource(42))
	var mu sync.Mutex
	now := time.Now()

	const n = 5000
	pushes := 0
	for i := 0; i < n; i++ {
		st := &remoteState{}
		if p.shouldPush(now, st, rnd, &mu) {
			pushes++
		}
	}
	ratio := float64(pushes) / float64(n)
	assert.InDelta(t, 0.3, ratio, 0.05)
}

func TestPeriodicAlwaysPushesOnFirstCall(t *testing.T) {
	p := Periodic(2 * time.Second)
	st := &remoteState{}
	rnd := rand.New(rand.NewSource(1))
	var mu sync.Mutex
	assert.True(t, p.shouldPush(time.Unix(0, 0), st, rnd, &mu))
}

func TestPeriodicSkipsWithinInterval(t *testing.T) {
	p := Periodic(2 * time.Second)
	st := &remoteState{}
	rnd := rand.New(rand.NewSource(1))
	var mu sync.Mutex

	base := time.Unix(0, 0)
	assert.True(t, p.shouldPush(base, st, rnd, &mu))
	assert.False(t, p.shouldPush(base.Add(1*time.Second), st, rnd, &mu))
}

func TestPeriodicPushesAgainAfterInterval(t *testing.T) {
	p := Periodic(2 * time.Second)
	st := &remoteState{}
	rnd := rand.New(rand.NewSource(1))
	var mu sync.Mutex

	base := time.Unix(0, 0)
	assert.True(t, p.shouldPush(base, st, rnd, &mu))
	assert.False(t, p.shouldPush(base.Add(1*time.Second), st, rnd, &mu))
	assert.True(t, p.shouldPush(base.Add(3*time.Second), st, rnd, &mu))
}
