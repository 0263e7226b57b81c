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

// Command yamabiko is the command-line surface over a collection:
// get/set a record, manage secondary indexes, and revert history.
// Exit codes: 0 success, 2 not-found, 3 deserialization error, 4
// repository error, 1 anything else.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Zeerooth/yamabiko/argparser"
	"github.com/Zeerooth/yamabiko/codec"
	"github.com/Zeerooth/yamabiko/collection"
	yerrors "github.com/Zeerooth/yamabiko/errors"
	"github.com/Zeerooth/yamabiko/hash"
	"github.com/Zeerooth/yamabiko/registry"
)

const (
	exitOK                   = 0
	exitOther                = 1
	exitNotFound             = 2
	exitDeserializationError = 3
	exitRepositoryError      = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	ap := argparser.NewArgParserWithVariableArgs("yamabiko")
	ap.SupportsString("format", "", "json|yaml|pot", "data format, required when creating a new collection")

	apr, err := ap.Parse(args)
	if err != nil {
		if err == argparser.ErrHelp {
			printUsage(stdout)
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitOther
	}

	if apr.NArg() < 2 {
		printUsage(stderr)
		return exitOther
	}

	repo := apr.Arg(0)
	command := apr.Arg(1)
	rest := apr.Args[2:]
	format := codec.Format(apr.GetValueOrDefault("format", string(codec.JSON)))

	ctx := context.Background()
	c, err := collection.OpenOrCreate(ctx, repo, format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}

	switch command {
	case "get":
		return cmdGet(ctx, c, rest, stdout, stderr)
	case "set":
		return cmdSet(ctx, c, rest, stderr)
	case "indexes":
		return cmdIndexes(ctx, c, rest, stdout, stderr)
	case "revert-n-commits":
		return cmdRevertN(ctx, c, rest, stderr)
	case "revert-to-commit":
		return cmdRevertTo(ctx, c, rest, stderr)
	default:
		fmt.Fprintf(stderr, "error: unknown command %q\n", command)
		return exitOther
	}
}

func cmdGet(ctx context.Context, c *collection.Collection, args []string, stdout, stderr *os.File) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: yamabiko <repo> get <key>")
		return exitOther
	}
	value, ok, err := collection.Get[map[string]interface{}](ctx, c, args[0], "main")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	if !ok {
		fmt.Fprintf(stderr, "error: key %q not found\n", args[0])
		return exitNotFound
	}

	cdc := codec.New(c.Format())
	encoded, err := cdc.Encode(value)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	stdout.Write(encoded)
	fmt.Fprintln(stdout)
	return exitOK
}

func cmdSet(ctx context.Context, c *collection.Collection, args []string, stderr *os.File) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "usage: yamabiko <repo> set <key> <value>")
		return exitOther
	}
	cdc := codec.New(c.Format())
	record, err := cdc.DecodeMap([]byte(args[1]))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitDeserializationError
	}

	if _, err := collection.Set(ctx, c, args[0], record, "main"); err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	return exitOK
}

func cmdIndexes(ctx context.Context, c *collection.Collection, args []string, stdout, stderr *os.File) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "usage: yamabiko <repo> indexes {add|remove|list} ...")
		return exitOther
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			fmt.Fprintln(stderr, "usage: yamabiko <repo> indexes add <field> <seq|num>")
			return exitOther
		}
		kind := registry.Kind(args[2])
		if kind != registry.Sequential && kind != registry.Numeric {
			fmt.Fprintf(stderr, "error: unknown index kind %q (want seq or num)\n", args[2])
			return exitOther
		}
		if _, err := c.AddIndex(ctx, args[1], kind, "main"); err != nil {
			fmt.Fprintln(stderr, err)
			return exitCodeFor(err)
		}
		return exitOK

	case "remove":
		if len(args) != 2 {
			fmt.Fprintln(stderr, "usage: yamabiko <repo> indexes remove <field>")
			return exitOther
		}
		if _, err := c.RemoveIndex(ctx, args[1], "main"); err != nil {
			fmt.Fprintln(stderr, err)
			return exitCodeFor(err)
		}
		return exitOK

	case "list":
		entries, err := c.Indexes(ctx, "main")
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitCodeFor(err)
		}
		for _, e := range entries {
			fmt.Fprintf(stdout, "%s\t%s\n", e.Field, e.Kind)
		}
		return exitOK

	default:
		fmt.Fprintf(stderr, "error: unknown indexes subcommand %q\n", args[0])
		return exitOther
	}
}

func cmdRevertN(ctx context.Context, c *collection.Collection, args []string, stderr *os.File) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: yamabiko <repo> revert-n-commits <n>")
		return exitOther
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "error: %q is not a valid commit count\n", args[0])
		return exitOther
	}
	if _, err := c.RevertN(ctx, n); err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	return exitOK
}

func cmdRevertTo(ctx context.Context, c *collection.Collection, args []string, stderr *os.File) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: yamabiko <repo> revert-to-commit <oid>")
		return exitOther
	}
	oid, ok := hash.MaybeParse(args[0])
	if !ok {
		fmt.Fprintf(stderr, "error: %q is not a valid commit id\n", args[0])
		return exitOther
	}
	if _, err := c.RevertTo(ctx, oid); err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	return exitOK
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, yerrors.ErrNotFound):
		return exitNotFound
	case errors.Is(err, yerrors.ErrDeserializationFailed), errors.Is(err, yerrors.ErrSerializationFailed):
		return exitDeserializationError
	case errors.Is(err, yerrors.ErrObjectStore), errors.Is(err, yerrors.ErrFormatMismatch),
		errors.Is(err, yerrors.ErrTransactionNotFound), errors.Is(err, yerrors.ErrTransactionConflict),
		errors.Is(err, yerrors.ErrIndexUnknown), errors.Is(err, yerrors.ErrIndexAlreadyExists),
		errors.Is(err, yerrors.ErrPushFailed):
		return exitRepositoryError
	default:
		return exitOther
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "usage: yamabiko [--format json|yaml|pot] <repo> <command> [args...]")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  get <key>")
	fmt.Fprintln(w, "  set <key> <value>")
	fmt.Fprintln(w, "  indexes {add <field> <seq|num>|remove <field>|list}")
	fmt.Fprintln(w, "  revert-n-commits <n>")
	fmt.Fprintln(w, "  revert-to-commit <oid>")
}
