// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/mitchellh/go-wordwrap"
)

// helpFunc is a cli.HelpFunc that can be used to output the help CLI
// instructions for mutx.
func helpFunc(commands map[string]cli.CommandFactory) string {
	var buf bytes.Buffer

	buf.WriteString("Usage: mutx [global options] <subcommand> [args]\n\n")
	buf.WriteString(wordwrap.WrapString(
		"The available commands for execution are listed below. "+
			"Giving a file path instead of a subcommand runs the \"write\" "+
			"command against it, which is the most common usage: "+
			"\"mutx FILE\" atomically replaces FILE with content from stdin.",
		78))
	buf.WriteString("\n\n")

	buf.WriteString("Main commands:\n")
	for _, name := range PrimaryCommands {
		buf.WriteString(listCommand(commands, name))
	}

	// Filter out the primary and hidden commands; the rest go under
	// "all other commands".
	var otherCommands []string
	for name := range commands {
		if _, ok := HiddenCommands[name]; ok {
			continue
		}
		primary := false
		for _, primaryName := range PrimaryCommands {
			if name == primaryName {
				primary = true
				break
			}
		}
		if !primary {
			otherCommands = append(otherCommands, name)
		}
	}
	sort.Strings(otherCommands)

	buf.WriteString("\nAll other commands:\n")
	for _, name := range otherCommands {
		buf.WriteString(listCommand(commands, name))
	}

	buf.WriteString("\nGlobal options (use these before the subcommand, if any):\n")
	buf.WriteString("  -version      An alias for the \"version\" subcommand.\n")
	buf.WriteString("  -help         Show this help output, or the help for a specified subcommand.\n")

	return strings.TrimSpace(buf.String())
}

func listCommand(commands map[string]cli.CommandFactory, name string) string {
	commandFunc, ok := commands[name]
	if !ok {
		// This can happen if the command is only available on certain
		// platforms or is otherwise not registered in this build.
		return ""
	}

	command, err := commandFunc()
	if err != nil {
		log.Printf("[ERR] cli: Command %q failed to load: %s", name, err)
		return ""
	}

	return fmt.Sprintf("  %-14s %s\n", name, command.Synopsis())
}
