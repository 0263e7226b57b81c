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

package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeerooth/yamabiko/config"
	"github.com/Zeerooth/yamabiko/replication"
	"github.com/Zeerooth/yamabiko/store"
)

func TestPathIsADotfileAdjacentToTheRepo(t *testing.T) {
	p := config.Path("/srv/data/mycollection.git")
	assert.Equal(t, "/srv/data/.mycollection.git.replicas.toml", p)
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	repo := filepath.Join(t.TempDir(), "repo.git")
	s, err := config.Load(repo)
	require.NoError(t, err)
	assert.Empty(t, s.Replicas())
}

func TestAddSaveLoadRoundTrip(t *testing.T) {
	repo := filepath.Join(t.TempDir(), "repo.git")

	s, err := config.Load(repo)
	require.NoError(t, err)

	s.AddReplica(config.Replica{
		Name:   "origin",
		URL:    "git@example.com:repo.git",
		Method: config.MethodPeriodic,
		Param:  30,
		Credential: config.Credential{
			PrivateKeyPath: "/home/user/.ssh/id_ed25519",
		},
	})
	require.NoError(t, s.Save())

	reloaded, err := config.Load(repo)
	require.NoError(t, err)
	replicas := reloaded.Replicas()
	require.Len(t, replicas, 1)
	assert.Equal(t, "origin", replicas[0].Name)
	assert.Equal(t, config.MethodPeriodic, replicas[0].Method)
	assert.Equal(t, 30.0, replicas[0].Param)
	assert.Equal(t, "/home/user/.ssh/id_ed25519", replicas[0].Credential.PrivateKeyPath)
}

func TestAddReplicaReplacesSameName(t *testing.T) {
	s, err := config.Load(filepath.Join(t.TempDir(), "repo.git"))
	require.NoError(t, err)

	s.AddReplica(config.Replica{Name: "origin", URL: "a", Method: config.MethodAll})
	s.AddReplica(config.Replica{Name: "origin", URL: "b", Method: config.MethodAll})

	replicas := s.Replicas()
	require.Len(t, replicas, 1)
	assert.Equal(t, "b", replicas[0].URL)
}

func TestRemoveReplica(t *testing.T) {
	s, err := config.Load(filepath.Join(t.TempDir(), "repo.git"))
	require.NoError(t, err)

	s.AddReplica(config.Replica{Name: "origin", URL: "a", Method: config.MethodAll})
	assert.True(t, s.RemoveReplica("origin"))
	assert.False(t, s.RemoveReplica("origin"))
	assert.Empty(t, s.Replicas())
}

func TestReplicaPolicyReconstructsPeriodic(t *testing.T) {
	r := config.Replica{Method: config.MethodPeriodic, Param: 45}
	p := r.Policy()
	assert.Equal(t, replication.KindPeriodic, p.Kind())
	assert.Equal(t, 45*time.Second, p.Interval())
}

func TestReplicaPolicyReconstructsRandom(t *testing.T) {
	r := config.Replica{Method: config.MethodRandom, Param: 0.25}
	p := r.Policy()
	assert.Equal(t, replication.KindRandom, p.Kind())
	assert.Equal(t, 0.25, p.Param())
}

func TestReplicaPolicyDefaultsToAll(t *testing.T) {
	r := config.Replica{Method: config.MethodAll}
	assert.Equal(t, replication.KindAll, r.Policy().Kind())
}

func TestReplicaFromPolicyIsInverse(t *testing.T) {
	creds := &store.Credentials{PrivateKeyPath: "/k", Username: "git"}
	r := config.ReplicaFromPolicy("origin", "url", replication.Periodic(90*time.Second), creds)
	assert.Equal(t, config.MethodPeriodic, r.Method)
	assert.Equal(t, 90.0, r.Param)
	assert.Equal(t, "/k", r.Credential.PrivateKeyPath)

	reconstructed := r.Policy()
	assert.Equal(t, replication.KindPeriodic, reconstructed.Kind())
	assert.Equal(t, 90*time.Second, reconstructed.Interval())
}

func TestReplicaCredentialsNilWhenEmpty(t *testing.T) {
	r := config.Replica{Name: "origin", Method: config.MethodAll}
	assert.Nil(t, r.Credentials())
}
