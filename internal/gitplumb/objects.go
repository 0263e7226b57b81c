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
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Zeerooth/yamabiko/hash"
)

// Identity is the author/committer identity recorded on each commit.
type Identity struct {
	Name  string
	Email string
}

func (id *Identity) env(prefix string) []string {
	if id == nil {
		return nil
	}
	return []string{
		prefix + "_NAME=" + id.Name,
		prefix + "_EMAIL=" + id.Email,
	}
}

// GitAPI is the thin facade over `git`'s plumbing commands used by the
// object store adapter: hashing blobs, building trees via a scratch
// index, committing, and resolving/updating refs.
type GitAPI struct {
	r *Runner
}

// NewGitAPIImpl constructs a GitAPI bound to r.
func NewGitAPIImpl(r *Runner) *GitAPI {
	return &GitAPI{r: r}
}

// HashObject writes content as a new blob object and returns its oid.
func (a *GitAPI) HashObject(ctx context.Context, content io.Reader) (hash.Hash, error) {
	out, err := a.r.Run(ctx, RunOptions{Stdin: content}, "hash-object", "-w", "--stdin")
	if err != nil {
		return hash.Empty, err
	}
	return parseOID(out)
}

// CatFileType returns the object type ("blob", "tree", or "commit") of oid.
func (a *GitAPI) CatFileType(ctx context.Context, oid hash.Hash) (string, error) {
	out, err := a.r.Run(ctx, RunOptions{}, "cat-file", "-t", oid.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// BlobSize returns the size in bytes of the blob named by oid.
func (a *GitAPI) BlobSize(ctx context.Context, oid hash.Hash) (int64, error) {
	out, err := a.r.Run(ctx, RunOptions{}, "cat-file", "-s", oid.String())
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
}

// BlobReader returns the full content of the blob named by oid.
func (a *GitAPI) BlobReader(ctx context.Context, oid hash.Hash) (io.ReadCloser, error) {
	out, err := a.r.Run(ctx, RunOptions{}, "cat-file", "-p", oid.String())
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(out)), nil
}

// ResolveRefCommit resolves ref to its current commit oid, returning
// *RefNotFoundError if the ref does not exist.
func (a *GitAPI) ResolveRefCommit(ctx context.Context, ref string) (hash.Hash, error) {
	oid, ok, err := a.TryResolveRefCommit(ctx, ref)
	if err != nil {
		return hash.Empty, err
	}
	if !ok {
		return hash.Empty, &RefNotFoundError{Ref: ref}
	}
	return oid, nil
}

// TryResolveRefCommit is ResolveRefCommit without the not-found error.
func (a *GitAPI) TryResolveRefCommit(ctx context.Context, ref string) (hash.Hash, bool, error) {
	out, err := a.r.Run(ctx, RunOptions{}, "show-ref", "--verify", "--hash", ref)
	if err != nil {
		if _, ok := err.(*CommandError); ok {
			return hash.Empty, false, nil
		}
		return hash.Empty, false, err
	}
	oid, err := parseOID(out)
	if err != nil {
		return hash.Empty, false, err
	}
	return oid, true, nil
}

// ReadTreeEmpty initializes indexFile as an empty index, the starting
// point for a commit with no parent.
func (a *GitAPI) ReadTreeEmpty(ctx context.Context, indexFile string) error {
	_, err := a.r.Run(ctx, RunOptions{Env: indexEnv(indexFile)}, "read-tree", "--empty")
	return err
}

// ReadTree seeds indexFile from commitOID's tree, the starting point for
// a commit that carries forward unchanged paths.
func (a *GitAPI) ReadTree(ctx context.Context, commitOID hash.Hash, indexFile string) error {
	_, err := a.r.Run(ctx, RunOptions{Env: indexEnv(indexFile)}, "read-tree", commitOID.String())
	return err
}

// UpdateIndexCacheInfo stages a path in indexFile to point at blobOID with
// the given octal mode (typically "100644").
func (a *GitAPI) UpdateIndexCacheInfo(ctx context.Context, indexFile, mode string, blobOID hash.Hash, path string) error {
	entry := fmt.Sprintf("%s,%s,%s", mode, blobOID.String(), path)
	_, err := a.r.Run(ctx, RunOptions{Env: indexEnv(indexFile)}, "update-index", "--add", "--cacheinfo", entry)
	return err
}

// RemoveIndexPath removes path from indexFile, used to tombstone a
// record or a stale index leaf. It is not an error if path is absent.
func (a *GitAPI) RemoveIndexPath(ctx context.Context, indexFile, path string) error {
	_, err := a.r.Run(ctx, RunOptions{Env: indexEnv(indexFile)}, "update-index", "--remove", "--force-remove", "--", path)
	if err != nil {
		if ce, ok := err.(*CommandError); ok && strings.Contains(ce.Stderr, "does not exist") {
			return nil
		}
	}
	return err
}

// WriteTree flushes indexFile to a tree object and returns its oid.
func (a *GitAPI) WriteTree(ctx context.Context, indexFile string) (hash.Hash, error) {
	out, err := a.r.Run(ctx, RunOptions{Env: indexEnv(indexFile)}, "write-tree")
	if err != nil {
		return hash.Empty, err
	}
	return parseOID(out)
}

// CommitTree creates a commit object for treeOID with the given parents
// (zero, one, or two-or-more for a merge commit), message, and identity.
func (a *GitAPI) CommitTree(ctx context.Context, treeOID hash.Hash, parents []hash.Hash, message string, author *Identity) (hash.Hash, error) {
	args := []string{"commit-tree", treeOID.String()}
	for _, p := range parents {
		args = append(args, "-p", p.String())
	}
	args = append(args, "-m", message)

	env := append(author.env("GIT_AUTHOR"), author.env("GIT_COMMITTER")...)
	out, err := a.r.Run(ctx, RunOptions{Env: env}, args...)
	if err != nil {
		return hash.Empty, err
	}
	return parseOID(out)
}

// UpdateRef points ref at oid unconditionally.
func (a *GitAPI) UpdateRef(ctx context.Context, ref string, oid hash.Hash, reason string) error {
	_, err := a.r.Run(ctx, RunOptions{}, "update-ref", "-m", reason, ref, oid.String())
	return err
}

// UpdateRefCAS points ref at newOID only if it currently points at
// oldOID, failing atomically otherwise (git's native ref-update CAS).
func (a *GitAPI) UpdateRefCAS(ctx context.Context, ref string, newOID, oldOID hash.Hash, reason string) error {
	_, err := a.r.Run(ctx, RunOptions{}, "update-ref", "-m", reason, ref, newOID.String(), oldOID.String())
	return err
}

// DeleteRef removes ref entirely (used to abandon a transaction branch).
func (a *GitAPI) DeleteRef(ctx context.Context, ref string) error {
	_, err := a.r.Run(ctx, RunOptions{}, "update-ref", "-d", ref)
	return err
}

// ResolvePathBlob resolves path inside commitOID's tree to a blob oid.
func (a *GitAPI) ResolvePathBlob(ctx context.Context, commitOID hash.Hash, path string) (hash.Hash, error) {
	out, err := a.r.Run(ctx, RunOptions{}, "rev-parse", "--verify", commitOID.String()+":"+path)
	if err != nil {
		if ce, ok := err.(*CommandError); ok && strings.Contains(ce.Stderr, "fatal") {
			return hash.Empty, &PathNotFoundError{Commit: commitOID.String(), Path: path}
		}
		return hash.Empty, err
	}
	return parseOID(out)
}

// TreeEntry is one row of a tree listing.
type TreeEntry struct {
	Mode string
	Type string
	OID  hash.Hash
	Name string
}

// ListTree lists the immediate entries of commitOID's tree at path
// ("" for the root).
func (a *GitAPI) ListTree(ctx context.Context, commitOID hash.Hash, path string) ([]TreeEntry, error) {
	rev := commitOID.String()
	if path != "" {
		rev += ":" + path
	} else {
		rev += ":"
	}
	out, err := a.r.Run(ctx, RunOptions{}, "ls-tree", rev)
	if err != nil {
		if ce, ok := err.(*CommandError); ok && strings.Contains(ce.Stderr, "fatal") {
			return nil, nil
		}
		return nil, err
	}
	return parseTreeEntries(out)
}

// ListTreeRecursive lists every blob entry reachable under path, with
// Name set to the full path relative to the tree root.
func (a *GitAPI) ListTreeRecursive(ctx context.Context, commitOID hash.Hash, path string) ([]TreeEntry, error) {
	args := []string{"ls-tree", "-r", commitOID.String()}
	if path != "" {
		args = append(args, "--", path)
	}
	out, err := a.r.Run(ctx, RunOptions{}, args...)
	if err != nil {
		if ce, ok := err.(*CommandError); ok && strings.Contains(ce.Stderr, "fatal") {
			return nil, nil
		}
		return nil, err
	}
	return parseTreeEntries(out)
}

// DiffEntry is one row of a tree-to-tree diff (used for transaction merges).
type DiffEntry struct {
	Status string // "A", "M", "D"
	Path   string
}

// DiffCommits reports the paths that differ between from and to
// (from may be the empty hash, meaning "diff against the empty tree").
func (a *GitAPI) DiffCommits(ctx context.Context, from, to hash.Hash) ([]DiffEntry, error) {
	fromRev := from.String()
	if from.IsEmpty() {
		fromRev = "4b825dc642cb6eb9a060e54bf8d69288fbee4904" // git's empty tree
	}
	args := []string{"diff", "--name-status", fromRev, to.String()}
	out, err := a.r.Run(ctx, RunOptions{}, args...)
	if err != nil {
		return nil, err
	}
	var entries []DiffEntry
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			continue
		}
		entries = append(entries, DiffEntry{Status: fields[0], Path: fields[1]})
	}
	return entries, nil
}

// FetchRef fetches remoteRef from remoteName into localRef. A remote
// that no longer has remoteRef is treated as "empty", deleting localRef
// rather than erroring.
func (a *GitAPI) FetchRef(ctx context.Context, remoteName, remoteRef, localRef string) error {
	refspec := remoteRef + ":" + localRef
	_, err := a.r.Run(ctx, RunOptions{}, "fetch", "--force", remoteName, refspec)
	if err != nil {
		if ce, ok := err.(*CommandError); ok && strings.Contains(ce.Stderr, "couldn't find remote ref") {
			_, ok, resolveErr := a.TryResolveRefCommit(ctx, localRef)
			if resolveErr != nil {
				return resolveErr
			}
			if ok {
				return a.DeleteRef(ctx, localRef)
			}
			return nil
		}
		return err
	}
	return nil
}

// RevListFirstParent returns tip and its ancestors along the
// first-parent line, newest first.
func (a *GitAPI) RevListFirstParent(ctx context.Context, tip hash.Hash) ([]hash.Hash, error) {
	out, err := a.r.Run(ctx, RunOptions{}, "rev-list", "--first-parent", tip.String())
	if err != nil {
		return nil, err
	}
	var chain []hash.Hash
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		oid, ok := hash.MaybeParse(line)
		if !ok {
			continue
		}
		chain = append(chain, oid)
	}
	return chain, nil
}

func indexEnv(indexFile string) []string {
	return []string{"GIT_INDEX_FILE=" + indexFile}
}

func parseOID(out []byte) (hash.Hash, error) {
	s := strings.TrimSpace(string(out))
	oid, ok := hash.MaybeParse(s)
	if !ok {
		return hash.Empty, fmt.Errorf("gitplumb: unexpected oid output %q", s)
	}
	return oid, nil
}

func parseTreeEntries(out []byte) ([]TreeEntry, error) {
	var entries []TreeEntry
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		metaAndName := strings.SplitN(line, "\t", 2)
		if len(metaAndName) != 2 {
			continue
		}
		meta := strings.Fields(metaAndName[0])
		if len(meta) != 3 {
			continue
		}
		oid, valid := hash.MaybeParse(meta[2])
		if !valid {
			continue
		}
		entries = append(entries, TreeEntry{
			Mode: meta[0],
			Type: meta[1],
			OID:  oid,
			Name: metaAndName[1],
		})
	}
	return entries, nil
}
