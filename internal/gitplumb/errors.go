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

import "fmt"

// RefNotFoundError is returned when a ref does not resolve to a commit.
type RefNotFoundError struct {
	Ref string
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("gitplumb: ref %q not found", e.Ref)
}

// PathNotFoundError is returned when a path does not exist in a commit's tree.
type PathNotFoundError struct {
	Commit string
	Path   string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("gitplumb: path %q not found in commit %q", e.Path, e.Commit)
}
