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

// Package config persists a collection's replicator list: local,
// human-editable, and deliberately kept out of the committed tree
// (spec.md §4.4/§6 — replicas are process-local configuration, not
// part of the repository's content-addressed history).
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Zeerooth/yamabiko/replication"
	"github.com/Zeerooth/yamabiko/store"
)

// Method names the three replication policy variants as they appear in
// the TOML file. Kept as plain strings (rather than replication.Kind's
// int) so the file stays readable and stable across internal renumbering.
type Method string

const (
	MethodAll      Method = "all"
	MethodRandom   Method = "random"
	MethodPeriodic Method = "periodic"
)

// Credential mirrors store.Credentials for TOML serialization; fields
// are omitted from the file when empty.
type Credential struct {
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
	Passphrase     string `toml:"passphrase,omitempty"`
	Username       string `toml:"username,omitempty"`
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
}

func (c Credential) toStoreCredentials() *store.Credentials {
	if c == (Credential{}) {
		return nil
	}
	return &store.Credentials{
		PrivateKeyPath: c.PrivateKeyPath,
		Passphrase:     c.Passphrase,
		Username:       c.Username,
		PublicKeyPath:  c.PublicKeyPath,
	}
}

func credentialFromStore(c *store.Credentials) Credential {
	if c == nil {
		return Credential{}
	}
	return Credential{
		PrivateKeyPath: c.PrivateKeyPath,
		Passphrase:     c.Passphrase,
		Username:       c.Username,
		PublicKeyPath:  c.PublicKeyPath,
	}
}

// Replica is one configured remote, as persisted on disk.
type Replica struct {
	Name       string     `toml:"name"`
	URL        string     `toml:"url"`
	Method     Method     `toml:"method"`
	Param      float64    `toml:"param,omitempty"`
	Credential Credential `toml:"credential,omitempty"`
}

// Policy reconstructs the replication.Policy this replica describes.
func (r Replica) Policy() replication.Policy {
	switch r.Method {
	case MethodRandom:
		return replication.Random(r.Param)
	case MethodPeriodic:
		return replication.Periodic(time.Duration(r.Param * float64(time.Second)))
	default:
		return replication.All()
	}
}

// Credentials reconstructs the store.Credentials this replica describes.
func (r Replica) Credentials() *store.Credentials {
	return r.Credential.toStoreCredentials()
}

// file is the on-disk shape: a flat list under a single table array.
type file struct {
	Replica []Replica `toml:"replica"`
}

// Store is the in-memory, loaded replicator configuration for one
// collection. It is not goroutine-safe; callers serialize access the
// same way the Collection serializes every other mutating operation.
type Store struct {
	path     string
	replicas []Replica
}

// Path returns the configuration file location for a collection rooted
// at repoPath: a dotfile next to the repository directory, never inside
// it, so it is never accidentally committed.
func Path(repoPath string) string {
	dir := filepath.Dir(repoPath)
	base := filepath.Base(repoPath)
	return filepath.Join(dir, "."+base+".replicas.toml")
}

// Load reads the configuration file for repoPath. A missing file is not
// an error: it is treated as an empty, freshly-initialized Store.
func Load(repoPath string) (*Store, error) {
	path := Path(repoPath)
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	var f file
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, err
	}
	s.replicas = f.Replica
	return s, nil
}

// Save writes the current replica list back to disk.
func (s *Store) Save() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := toml.NewEncoder(f)
	err = enc.Encode(file{Replica: s.replicas})
	closeErr := f.Close()
	if err != nil {
		os.Remove(tmp)
		return err
	}
	if closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}
	return os.Rename(tmp, s.path)
}

// Replicas lists every configured remote.
func (s *Store) Replicas() []Replica {
	out := make([]Replica, len(s.replicas))
	copy(out, s.replicas)
	return out
}

// AddReplica adds or replaces the replica named name.
func (s *Store) AddReplica(r Replica) {
	for i, existing := range s.replicas {
		if existing.Name == r.Name {
			s.replicas[i] = r
			return
		}
	}
	s.replicas = append(s.replicas, r)
}

// RemoveReplica removes the replica named name, reporting whether it
// was present.
func (s *Store) RemoveReplica(name string) bool {
	for i, existing := range s.replicas {
		if existing.Name == name {
			s.replicas = append(s.replicas[:i], s.replicas[i+1:]...)
			return true
		}
	}
	return false
}

// ReplicaFromPolicy builds the persisted Replica shape for a live
// replication.Remote, the inverse of Replica.Policy/Credentials.
func ReplicaFromPolicy(name, url string, p replication.Policy, creds *store.Credentials) Replica {
	r := Replica{Name: name, URL: url, Credential: credentialFromStore(creds)}
	switch p.Kind() {
	case replication.KindRandom:
		r.Method = MethodRandom
		r.Param = p.Param()
	case replication.KindPeriodic:
		r.Method = MethodPeriodic
		r.Param = p.Interval().Seconds()
	default:
		r.Method = MethodAll
	}
	return r
}
