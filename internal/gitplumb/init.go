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

package gitplumb

import (
	"context"
	"os"
	"os/exec"
)

// InitBare creates a bare repository at dir if one does not already
// exist, and returns a Runner bound to it.
func InitBare(ctx context.Context, dir string) (*Runner, error) {
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		cmd := exec.CommandContext(ctx, "git", "init", "--bare", "-q", dir)
		if out, runErr := cmd.CombinedOutput(); runErr != nil {
			return nil, &CommandError{Args: []string{"init", "--bare", dir}, Stderr: string(out), Cause: runErr}
		}
	}
	return NewRunner(dir)
}

// IsBareRepo reports whether dir looks like an already-initialized bare
// repository (has a HEAD file and an objects directory).
func IsBareRepo(dir string) bool {
	if _, err := os.Stat(dir + "/HEAD"); err != nil {
		return false
	}
	if _, err := os.Stat(dir + "/objects"); err != nil {
		return false
	}
	return true
}
