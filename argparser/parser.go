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

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHelp is returned when -h or --help appears anywhere in the argument
// list; the caller is expected to print usage and exit.
var ErrHelp = errors.New("Help")

// UnknownArgumentParam is returned when an argument looks like an option
// (starts with - or --) but does not match any supported Option.
type UnknownArgumentParam struct {
	Name string
}

func (e UnknownArgumentParam) Error() string {
	return fmt.Sprintf("error: unknown option `%s'", e.Name)
}

// NO_POSITIONAL_ARGS marks an ArgParser with no limit on how many
// positional arguments it accepts.
const NO_POSITIONAL_ARGS = -1

// ArgParser parses a command's flags and positional arguments against a
// fixed set of supported Options.
type ArgParser struct {
	Name          string
	MaxPositional int
	options       []*Option
	byName        map[string]*Option
	byAbbrev      map[string]*Option
}

// NewArgParserWithVariableArgs returns a parser for name with no cap on
// the number of positional arguments.
func NewArgParserWithVariableArgs(name string) *ArgParser {
	return NewArgParserWithMaxArgs(name, NO_POSITIONAL_ARGS)
}

// NewArgParserWithMaxArgs returns a parser for name that rejects more
// than maxArgs positional arguments.
func NewArgParserWithMaxArgs(name string, maxArgs int) *ArgParser {
	return &ArgParser{
		Name:          name,
		MaxPositional: maxArgs,
		byName:        map[string]*Option{},
		byAbbrev:      map[string]*Option{},
	}
}

// SupportOption registers opt as a supported flag and returns the parser
// for chaining.
func (ap *ArgParser) SupportOption(opt *Option) *ArgParser {
	ap.options = append(ap.options, opt)
	ap.byName[opt.Name] = opt
	if opt.Abbrev != "" {
		ap.byAbbrev[opt.Abbrev] = opt
	}
	return ap
}

// SupportsFlag registers a boolean flag taking no value.
func (ap *ArgParser) SupportsFlag(name, abbrev, desc string) *ArgParser {
	return ap.SupportOption(&Option{Name: name, Abbrev: abbrev, OptType: OptionalFlag, Desc: desc})
}

// SupportsString registers a string-valued option.
func (ap *ArgParser) SupportsString(name, abbrev, valDesc, desc string) *ArgParser {
	return ap.SupportOption(&Option{Name: name, Abbrev: abbrev, ValDesc: valDesc, OptType: OptionalValue, Desc: desc})
}

// SupportsInt registers an integer-valued option.
func (ap *ArgParser) SupportsInt(name, abbrev, valDesc, desc string) *ArgParser {
	return ap.SupportOption(&Option{Name: name, Abbrev: abbrev, ValDesc: valDesc, OptType: OptionalValue, Desc: desc})
}

// Parse processes args against ap's supported options, returning the
// resolved flag values and remaining positional arguments.
func (ap *ArgParser) Parse(args []string) (*ArgParseResults, error) {
	options := map[string]string{}
	var positional []string

	i := 0
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			return nil, ErrHelp

		case strings.HasPrefix(arg, "--"):
			consumed, err := ap.parseLong(arg[2:], args, i, options)
			if err != nil {
				return nil, err
			}
			if consumed < 0 {
				// A list-type option consumed every remaining argument.
				i = len(args)
				break
			}
			i += consumed

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			consumed, err := ap.parseShort(arg[1:], args, i, options, &positional)
			if err != nil {
				return nil, err
			}
			i += consumed

		default:
			positional = append(positional, arg)
			i++
		}
	}

	if options == nil {
		options = map[string]string{}
	}
	if positional == nil {
		positional = []string{}
	}

	if ap.MaxPositional != NO_POSITIONAL_ARGS && len(positional) > ap.MaxPositional {
		return nil, fmt.Errorf(
			"error: %s has too many positional arguments. Expected at most %d, found %d: %s",
			ap.Name, ap.MaxPositional, len(positional), strings.Join(positional, ", "),
		)
	}

	return &ArgParseResults{options: options, Args: positional, parser: ap, maxPositional: ap.MaxPositional}, nil
}

// parseLong handles one "--name", "--name=value", "--name:value", or
// "--name value" token. It returns how many elements of args it
// consumed, or -1 if a list-type option consumed the remainder.
func (ap *ArgParser) parseLong(body string, args []string, i int, options map[string]string) (int, error) {
	name := body
	inlineValue := ""
	hasInline := false
	if idx := strings.IndexAny(body, "=:"); idx >= 0 {
		name = body[:idx]
		inlineValue = body[idx+1:]
		hasInline = true
	}

	opt, ok := ap.byName[name]
	if !ok {
		return 0, UnknownArgumentParam{Name: body}
	}
	if _, dup := options[opt.Name]; dup {
		return 0, fmt.Errorf("error: multiple values provided for `%s'", opt.Name)
	}

	if opt.OptType == OptionalFlag {
		options[opt.Name] = ""
		return 1, nil
	}

	if opt.IsList {
		rest := args[i+1:]
		if hasInline {
			rest = append([]string{inlineValue}, rest...)
		}
		options[opt.Name] = strings.Join(rest, ",")
		return -1, nil
	}

	if hasInline {
		options[opt.Name] = inlineValue
		return 1, nil
	}
	if i+1 >= len(args) {
		return 0, fmt.Errorf("error: no value for option `%s'", opt.Name)
	}
	options[opt.Name] = args[i+1]
	return 2, nil
}

// parseShort handles one "-x", "-xvalue", or combined "-xy..." token,
// where at most one letter in the chain may be a value-taking option
// (consuming the remainder of the token, or the next array element if
// the token has nothing left). Any unrecognized character ends the
// chain and the remainder becomes a single positional argument.
func (ap *ArgParser) parseShort(body string, args []string, i int, options map[string]string, positional *[]string) (int, error) {
	pos := 0
	for pos < len(body) {
		letter := string(body[pos])
		opt, ok := ap.byAbbrev[letter]
		if !ok {
			*positional = append(*positional, body[pos:])
			return 1, nil
		}
		if _, dup := options[opt.Name]; dup {
			if pos > 0 {
				// A repeat within an already-started combined flag
				// chain isn't another flag: treat the rest of the
				// token as a literal positional argument.
				*positional = append(*positional, body[pos:])
				return 1, nil
			}
			return 0, fmt.Errorf("error: multiple values provided for `%s'", opt.Name)
		}

		if opt.OptType == OptionalFlag {
			options[opt.Name] = ""
			pos++
			continue
		}

		remainder := strings.TrimLeft(body[pos+1:], " ")
		if remainder != "" {
			options[opt.Name] = remainder
			return 1, nil
		}
		if i+1 >= len(args) {
			return 0, fmt.Errorf("error: no value for option `%s'", opt.Name)
		}
		options[opt.Name] = args[i+1]
		return 2, nil
	}
	return 1, nil
}
