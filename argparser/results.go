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

package argparser

import "strconv"

// ArgParseResults is the outcome of a successful ArgParser.Parse: the
// resolved option values plus whatever positional arguments remained.
type ArgParseResults struct {
	options       map[string]string
	Args          []string
	parser        *ArgParser
	maxPositional int
}

// StrSet is a minimal unordered set of strings, returned by the
// flag-membership queries below.
type StrSet struct {
	items map[string]bool
}

func newStrSet() *StrSet { return &StrSet{items: map[string]bool{}} }

// Size reports how many elements the set holds.
func (s *StrSet) Size() int { return len(s.items) }

// Contains reports whether name is in the set.
func (s *StrSet) Contains(name string) bool { return s.items[name] }

// ContainsAll reports whether every name in names was supplied.
func (apr *ArgParseResults) ContainsAll(names ...string) bool {
	for _, n := range names {
		if _, ok := apr.options[n]; !ok {
			return false
		}
	}
	return true
}

// ContainsAny reports whether at least one name in names was supplied.
func (apr *ArgParseResults) ContainsAny(names ...string) bool {
	for _, n := range names {
		if _, ok := apr.options[n]; ok {
			return true
		}
	}
	return false
}

// GetValue returns name's value and whether it was supplied at all.
func (apr *ArgParseResults) GetValue(name string) (string, bool) {
	v, ok := apr.options[name]
	return v, ok
}

// MustGetValue returns name's value, panicking if it was not supplied.
// Callers should only use this after ContainsAll has confirmed presence.
func (apr *ArgParseResults) MustGetValue(name string) string {
	v, ok := apr.options[name]
	if !ok {
		panic("argparser: MustGetValue called for unset option `" + name + "'")
	}
	return v
}

// GetValueOrDefault returns name's value, or def if it was not supplied.
func (apr *ArgParseResults) GetValueOrDefault(name, def string) string {
	if v, ok := apr.options[name]; ok {
		return v
	}
	return def
}

// GetInt parses name's value as an integer.
func (apr *ArgParseResults) GetInt(name string) (int, bool) {
	v, ok := apr.options[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetIntOrDefault returns name's integer value, or def if absent or
// unparsable.
func (apr *ArgParseResults) GetIntOrDefault(name string, def int) int {
	if n, ok := apr.GetInt(name); ok {
		return n
	}
	return def
}

// AnyFlagsEqualTo partitions every registered flag-type option by
// whether it was supplied (present == true means "was passed"), and
// returns the set matching present.
func (apr *ArgParseResults) AnyFlagsEqualTo(present bool) *StrSet {
	names := make([]string, 0, len(apr.parser.options))
	for _, opt := range apr.parser.options {
		if opt.OptType == OptionalFlag {
			names = append(names, opt.Name)
		}
	}
	return apr.FlagsEqualTo(names, present)
}

// FlagsEqualTo reports, among names, which were (present == true) or
// were not (present == false) supplied.
func (apr *ArgParseResults) FlagsEqualTo(names []string, present bool) *StrSet {
	out := newStrSet()
	for _, n := range names {
		_, ok := apr.options[n]
		if ok == present {
			out.items[n] = true
		}
	}
	return out
}

// NArg returns the number of positional arguments.
func (apr *ArgParseResults) NArg() int { return len(apr.Args) }

// Arg returns the i'th positional argument.
func (apr *ArgParseResults) Arg(i int) string { return apr.Args[i] }

// DropValue returns a copy of apr with name's option value removed.
func (apr *ArgParseResults) DropValue(name string) *ArgParseResults {
	options := make(map[string]string, len(apr.options))
	for k, v := range apr.options {
		if k == name {
			continue
		}
		options[k] = v
	}
	return &ArgParseResults{options: options, Args: apr.Args, parser: apr.parser, maxPositional: apr.maxPositional}
}
