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

// Package shard maps a user key to the path at which its record lives
// in the tree. The hash function used for flat (no '/') keys is part of
// the on-disk contract and must never change: the low 32 bits of
// xxhash.Sum64, per spec.
package shard

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	yerrors "github.com/Zeerooth/yamabiko/errors"
)

// ReservedPrefix is the tree subtree reserved for index materialization
// and collection metadata; user keys may never resolve into it.
const ReservedPrefix = "_index"

// Path computes the in-tree path for key, validating it along the way.
// Keys are rejected if empty, begin with '/', contain a ".." segment, or
// have a segment starting with ReservedPrefix.
func Path(key string) (string, error) {
	if key == "" {
		return "", yerrors.Wrap(yerrors.ErrInvalidKey, nil, "key is empty")
	}
	if strings.HasPrefix(key, "/") {
		return "", yerrors.Wrap(yerrors.ErrInvalidKey, nil, "key has a leading slash")
	}

	if !strings.Contains(key, "/") {
		return flatPath(key), nil
	}

	segments := strings.Split(key, "/")
	for _, seg := range segments {
		if seg == "" || seg == ".." {
			return "", yerrors.Wrap(yerrors.ErrInvalidKey, nil, "key contains an empty or \"..\" segment")
		}
		if strings.HasPrefix(seg, ReservedPrefix) {
			return "", yerrors.Wrap(yerrors.ErrInvalidKey, nil, "key collides with the reserved namespace")
		}
	}
	return key, nil
}

func flatPath(key string) string {
	h := uint32(xxhash.Sum64String(key))
	return fmt.Sprintf("%02x/%02x/%s", byte(h>>24), byte((h>>16)&0xff), key)
}

// KeyFromPath reverses Path for the full-scan and rebuild walks that
// only have the in-tree path to work from: a hierarchical key's path IS
// the key, so it is returned unchanged; a flat key's path carries two
// leading two-hex-digit shard buckets ahead of it, which are stripped.
func KeyFromPath(path string) string {
	segs := strings.Split(path, "/")
	if len(segs) >= 3 && isShardBucket(segs[0]) && isShardBucket(segs[1]) {
		return strings.Join(segs[2:], "/")
	}
	return path
}

func isShardBucket(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}
