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

// Package log provides the structured logger each Collection binds to
// its own repository path. It is a thin zerolog wrapper, not a general
// logging facility: every event a Collection emits is scoped with the
// repo path up front so multiple open collections in one process don't
// need to repeat it at every call site.
package log

import (
	"os"

	"github.com/rs/zerolog"
)

// ForRepo returns a logger scoped to repoPath, writing to stderr at
// info level by default.
func ForRepo(repoPath string) zerolog.Logger {
	return zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("repo", repoPath).
		Logger().
		Level(zerolog.InfoLevel)
}

// Discard returns a logger that drops every event, used in tests that
// don't want log noise.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}
