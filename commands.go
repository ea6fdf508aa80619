// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"github.com/hashicorp/cli"

	"github.com/hashicorp/mutx/internal/command"
	"github.com/hashicorp/mutx/version"
)

// Commands is the mapping of all the available commands.
var Commands map[string]cli.CommandFactory

// PrimaryCommands is an ordered sequence of the top-level commands, to
// list them in the help output in a sensible order rather than
// alphabetically.
var PrimaryCommands = []string{
	"write",
	"housekeep",
}

// HiddenCommands is a set of commands that are "hidden" from the help
// output.
var HiddenCommands = map[string]struct{}{
	"housekeep locks":   {},
	"housekeep backups": {},
	"housekeep all":     {},
}

func initCommands(meta command.Meta) map[string]cli.CommandFactory {
	commands := map[string]cli.CommandFactory{
		"write": func() (cli.Command, error) {
			return &command.WriteCommand{
				Meta: meta,
			}, nil
		},

		"housekeep": func() (cli.Command, error) {
			return &command.HousekeepCommand{
				Meta: meta,
			}, nil
		},

		"housekeep locks": func() (cli.Command, error) {
			return &command.HousekeepLocksCommand{
				Meta: meta,
			}, nil
		},

		"housekeep backups": func() (cli.Command, error) {
			return &command.HousekeepBackupsCommand{
				Meta: meta,
			}, nil
		},

		"housekeep all": func() (cli.Command, error) {
			return &command.HousekeepAllCommand{
				Meta: meta,
			}, nil
		},

		"version": func() (cli.Command, error) {
			return &command.VersionCommand{
				Meta:              meta,
				Version:           version.Version,
				VersionPrerelease: version.Prerelease,
			}, nil
		},
	}

	return commands
}
