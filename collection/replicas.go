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
	"github.com/Zeerooth/yamabiko/config"
	"github.com/Zeerooth/yamabiko/replication"
	"github.com/Zeerooth/yamabiko/store"
)

// Replicas lists every configured remote.
func (c *Collection) Replicas() []replication.Remote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.replMgr.Replicas()
}

// AddReplica registers remote with the Replication Policy and persists
// it to the collection's local (uncommitted) configuration file.
func (c *Collection) AddReplica(name, url string, policy replication.Policy, creds *store.Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replMgr.AddReplica(name, url, policy, creds)
	c.cfg.AddReplica(config.ReplicaFromPolicy(name, url, policy, creds))
	return c.cfg.Save()
}

// RemoveReplica unregisters remote and removes it from the persisted
// configuration.
func (c *Collection) RemoveReplica(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replMgr.RemoveReplica(name)
	c.cfg.RemoveReplica(name)
	return c.cfg.Save()
}
