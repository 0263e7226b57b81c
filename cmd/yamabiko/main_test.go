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

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not on PATH")
	}
}

// capture runs run() with stdout/stderr redirected to temp files and
// returns their contents alongside the exit code.
func capture(t *testing.T, args []string) (stdout, stderr string, code int) {
	t.Helper()

	outFile, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	defer outFile.Close()
	errFile, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)
	defer errFile.Close()

	code = run(args, outFile, errFile)

	outBytes, err := os.ReadFile(outFile.Name())
	require.NoError(t, err)
	errBytes, err := os.ReadFile(errFile.Name())
	require.NoError(t, err)
	return string(outBytes), string(errBytes), code
}

func TestRunHelpPrintsUsageAndExitsZero(t *testing.T) {
	stdout, _, code := capture(t, []string{"--help"})
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "usage: yamabiko")
}

func TestRunWithTooFewArgsPrintsUsageToStderr(t *testing.T) {
	_, stderr, code := capture(t, []string{})
	assert.Equal(t, exitOther, code)
	assert.Contains(t, stderr, "usage: yamabiko")
}

func TestRunSetThenGetRoundTrips(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, stderr, code := capture(t, []string{repo, "set", "k1", `{"a":1}`})
	require.Equal(t, exitOK, code, stderr)

	stdout, stderr, code := capture(t, []string{repo, "get", "k1"})
	require.Equal(t, exitOK, code, stderr)
	assert.True(t, strings.Contains(stdout, `"a":1`))
}

func TestRunGetOfMissingKeyExitsNotFound(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, _, code := capture(t, []string{repo, "set", "seed", `{"a":1}`})
	require.Equal(t, exitOK, code)

	_, stderr, code := capture(t, []string{repo, "get", "missing"})
	assert.Equal(t, exitNotFound, code)
	assert.Contains(t, stderr, "not found")
}

func TestRunSetWithMalformedValueExitsDeserializationError(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, stderr, code := capture(t, []string{repo, "set", "k1", `not json`})
	assert.Equal(t, exitDeserializationError, code)
	assert.NotEmpty(t, stderr)
}

func TestRunIndexesAddTwiceExitsRepositoryError(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, stderr, code := capture(t, []string{repo, "set", "k1", `{"score":5}`})
	require.Equal(t, exitOK, code, stderr)

	_, stderr, code = capture(t, []string{repo, "indexes", "add", "score", "num"})
	require.Equal(t, exitOK, code, stderr)

	_, stderr, code = capture(t, []string{repo, "indexes", "add", "score", "num"})
	assert.Equal(t, exitRepositoryError, code, stderr)
}

func TestRunIndexesListPrintsDeclaredFields(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, _, code := capture(t, []string{repo, "set", "k1", `{"score":5}`})
	require.Equal(t, exitOK, code)

	_, stderr, code := capture(t, []string{repo, "indexes", "add", "score", "num"})
	require.Equal(t, exitOK, code, stderr)

	stdout, stderr, code := capture(t, []string{repo, "indexes", "list"})
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "score")
	assert.Contains(t, stdout, "num")
}

func TestRunIndexesWithUnknownKindExitsOther(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, _, code := capture(t, []string{repo, "set", "k1", `{"score":5}`})
	require.Equal(t, exitOK, code)

	_, stderr, code := capture(t, []string{repo, "indexes", "add", "score", "bogus"})
	assert.Equal(t, exitOther, code)
	assert.Contains(t, stderr, "unknown index kind")
}

func TestRunRevertNBeyondHistoryExitsRepositoryError(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, _, code := capture(t, []string{repo, "set", "k1", `{"a":1}`})
	require.Equal(t, exitOK, code)

	_, stderr, code := capture(t, []string{repo, "revert-n-commits", "99"})
	assert.Equal(t, exitRepositoryError, code, stderr)
}

func TestRunRevertToCommitWithMalformedOidExitsOther(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, _, code := capture(t, []string{repo, "set", "k1", `{"a":1}`})
	require.Equal(t, exitOK, code)

	_, stderr, code := capture(t, []string{repo, "revert-to-commit", "not-an-oid"})
	assert.Equal(t, exitOther, code)
	assert.Contains(t, stderr, "not a valid commit id")
}

func TestRunUnknownCommandExitsOther(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, stderr, code := capture(t, []string{repo, "bogus"})
	assert.Equal(t, exitOther, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestRunRespectsFormatFlagForNewCollection(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo.git")

	_, stderr, code := capture(t, []string{"--format", "yaml", repo, "set", "k1", `{"a":1}`})
	require.Equal(t, exitOK, code, stderr)

	stdout, stderr, code := capture(t, []string{"--format", "yaml", repo, "get", "k1"})
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "a:")
}
