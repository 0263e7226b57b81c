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

// Package hash models the content-addressed object ids (OIDs) the
// underlying git-compatible object database hands back for blobs,
// trees, and commits. It is a thin, comparable wrapper around the
// hex-encoded object name, in the spirit of the teacher's own
// store/hash package, sized for git's native (SHA-1, 40 hex digit)
// object ids rather than the teacher's internal content hash.
package hash

import (
	"fmt"
	"strings"
)

const hexLen = 40

// Hash is a parsed, validated git object id.
type Hash struct {
	hex string
}

// Empty is the zero-value Hash, printed as 40 zero digits.
var Empty = Hash{}

// Parse parses s, panicking if it is not a well-formed object id. Mirrors
// the teacher's Parse/MaybeParse split: use this only where malformed
// input is a programmer error (e.g. literals in tests or trusted internal
// callers); otherwise use MaybeParse.
func Parse(s string) Hash {
	h, ok := MaybeParse(s)
	if !ok {
		panic(fmt.Sprintf("hash: invalid object id %q", s))
	}
	return h
}

// MaybeParse parses s, returning ok=false instead of panicking on
// malformed input.
func MaybeParse(s string) (Hash, bool) {
	if len(s) != hexLen {
		return Empty, false
	}
	for _, r := range s {
		if !isHexDigit(r) {
			return Empty, false
		}
	}
	return Hash{hex: strings.ToLower(s)}, true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// String returns the hex encoding of the object id.
func (h Hash) String() string {
	if h.hex == "" {
		return strings.Repeat("0", hexLen)
	}
	return h.hex
}

// IsEmpty reports whether h is the zero-value hash (all-zero object id,
// which git uses to mean "no object" in ref-update plumbing).
func (h Hash) IsEmpty() bool {
	return h.hex == "" || h.hex == strings.Repeat("0", hexLen)
}

// Less reports whether h sorts before o, lexicographically over the hex
// encoding.
func (h Hash) Less(o Hash) bool {
	return h.String() < o.String()
}

// Compare returns -1, 0, or 1 as h is less than, equal to, or greater
// than o.
func (h Hash) Compare(o Hash) int {
	return strings.Compare(h.String(), o.String())
}

// Equal reports whether h and o designate the same object id.
func (h Hash) Equal(o Hash) bool {
	return h.String() == o.String()
}
