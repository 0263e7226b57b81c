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

import "context"

// Outcome is the deferred handle spec.md §4.8/§5 describes: the caller
// may Wait on it, ignore it entirely, or Cancel it to drop an in-flight
// push without leaking network state.
type Outcome struct {
	Remote  string
	skipped bool
	done    chan struct{}
	err     error
	cancel  context.CancelFunc
}

func newOutcome(remote string, cancel context.CancelFunc) *Outcome {
	return &Outcome{Remote: remote, done: make(chan struct{}), cancel: cancel}
}

func skippedOutcome(remote string) *Outcome {
	o := &Outcome{Remote: remote, done: make(chan struct{}), skipped: true}
	close(o.done)
	return o
}

func (o *Outcome) complete(err error) {
	o.err = err
	close(o.done)
}

// Skipped reports whether the policy decided not to push at all, in
// which case Wait returns immediately with a nil error.
func (o *Outcome) Skipped() bool { return o.skipped }

// Wait blocks until the push completes, ctx is done, or the outcome was
// skipped outright.
func (o *Outcome) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel aborts an in-flight push. It is a no-op on a skipped outcome
// or one that has already completed.
func (o *Outcome) Cancel() {
	if o.cancel != nil {
		o.cancel()
	}
}
