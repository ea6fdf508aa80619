// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package arguments parses raw CLI argument slices into structured values,
// returning diagnostics for anything invalid. Parsing never performs I/O;
// every validation here happens before the command touches the filesystem.
package arguments

import (
	"flag"
	"io"

	"github.com/hashicorp/mutx/internal/diags"
)

// defaultFlagSet creates a default flag set for commands.
func defaultFlagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)

	// If an error occurs, we want to capture it in a diagnostic rather
	// than have the flag package print its own usage text.
	f.SetOutput(io.Discard)
	f.Usage = func() {}

	return f
}

// flagSetWrapper lets the housekeep parsers share flag registration and
// fold parse failures straight into diagnostics.
type flagSetWrapper struct {
	*flag.FlagSet
}

func (f *flagSetWrapper) parse(args []string, diagnostics diags.Diagnostics) diags.Diagnostics {
	if err := f.Parse(args); err != nil {
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Failed to parse command-line flags",
			err.Error(),
		))
	}
	return diagnostics
}
