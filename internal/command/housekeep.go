// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"strings"

	"github.com/hashicorp/cli"
	"github.com/mitchellh/go-homedir"

	"github.com/hashicorp/mutx/internal/command/arguments"
	"github.com/hashicorp/mutx/internal/housekeep"
	"github.com/hashicorp/mutx/internal/lockpath"
)

// HousekeepCommand is the parent command for the housekeep subcommands: it
// only delegates to its subcommand help.
type HousekeepCommand struct {
	Meta
}

func (c *HousekeepCommand) Run(args []string) int {
	return cli.RunResultHelp
}

func (c *HousekeepCommand) Help() string {
	helpText := `
Usage: mutx [global options] housekeep <subcommand> [options] [DIR]

  Find and remove the artifacts that writes deliberately leave behind:
  lock files whose holding process is gone, and backup files that the
  retention policy no longer wants.

  Symbolic links encountered during the scan are never followed and never
  deleted.

Subcommands:
    locks      Remove orphaned lock files
    backups    Remove old backup files
    all        Remove both

`
	return strings.TrimSpace(helpText)
}

func (c *HousekeepCommand) Synopsis() string {
	return "Clean up orphaned lock files and old backups"
}

// lockConfig converts parsed housekeep arguments into a lock cleaning
// configuration, resolving the default directory (the derived lock cache)
// when none was given.
func (m *Meta) lockConfig(parsed *arguments.Housekeep, dir string) (*housekeep.LocksConfig, error) {
	if dir == "" {
		cacheDir, err := lockpath.CacheDir()
		if err != nil {
			return nil, err
		}
		dir = cacheDir
	} else {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return nil, err
		}
		dir = expanded
	}

	cfg := &housekeep.LocksConfig{
		Dir:       dir,
		Recursive: parsed.Recursive,
		DryRun:    parsed.DryRun,
	}
	if parsed.HasOlderThan {
		cfg.OlderThan = parsed.OlderThan
	}
	return cfg, nil
}

// backupConfig converts parsed housekeep arguments into a backup cleaning
// configuration. Backups default to the current working directory.
func (m *Meta) backupConfig(parsed *arguments.Housekeep, dir string) (*housekeep.BackupsConfig, error) {
	if dir == "" {
		dir = "."
	} else {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return nil, err
		}
		dir = expanded
	}

	cfg := &housekeep.BackupsConfig{
		Dir:        dir,
		Suffix:     parsed.Suffix,
		Recursive:  parsed.Recursive,
		KeepNewest: -1,
		DryRun:     parsed.DryRun,
	}
	if parsed.HasOlderThan {
		cfg.OlderThan = parsed.OlderThan
	}
	if parsed.HasKeepNewest {
		cfg.KeepNewest = parsed.KeepNewest
	}
	return cfg, nil
}
