// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"strings"

	"github.com/posener/complete"

	"github.com/hashicorp/mutx/internal/command/arguments"
	"github.com/hashicorp/mutx/internal/command/views"
	"github.com/hashicorp/mutx/internal/housekeep"
)

// HousekeepAllCommand is a Command implementation that cleans both lock
// files and backups in one pass.
type HousekeepAllCommand struct {
	Meta
}

func (c *HousekeepAllCommand) Run(rawArgs []string) int {
	args := c.Meta.process(rawArgs)

	parsed, parseDiags := arguments.ParseHousekeepAll(args)
	if parseDiags.HasErrors() {
		c.showDiagnostics(parseDiags)
		return ExitError
	}

	view := views.NewHousekeep(c.Meta.View())
	ret := ExitSuccess

	lockCfg, err := c.lockConfig(parsed, parsed.LocksDir)
	if err != nil {
		c.showError(err)
		return ExitError
	}

	lockReport, err := housekeep.CleanLocks(lockCfg)
	if lockReport != nil {
		view.Report("lock", lockReport, parsed.DryRun, parsed.Verbose)
	}
	if err != nil {
		c.showError(err)
		ret = ExitError
	}

	backupCfg, err := c.backupConfig(parsed, parsed.BackupsDir)
	if err != nil {
		c.showError(err)
		return ExitError
	}

	backupReport, err := housekeep.CleanBackups(backupCfg)
	if backupReport != nil {
		view.Report("backup", backupReport, parsed.DryRun, parsed.Verbose)
	}
	if err != nil {
		c.showError(err)
		ret = ExitError
	}

	return ret
}

func (c *HousekeepAllCommand) AutocompleteArgs() complete.Predictor {
	return completePredictSequence{
		complete.PredictNothing, // placeholder for "all" subcommand name
		complete.PredictDirs(""),
	}
}

func (c *HousekeepAllCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{
		"-locks-dir":   complete.PredictDirs(""),
		"-backups-dir": complete.PredictDirs(""),
		"-recursive":   complete.PredictNothing,
		"-older-than":  complete.PredictAnything,
		"-suffix":      complete.PredictAnything,
		"-keep-newest": complete.PredictAnything,
		"-dry-run":     complete.PredictNothing,
		"-verbose":     complete.PredictNothing,
	}
}

func (c *HousekeepAllCommand) Help() string {
	helpText := `
Usage: mutx [global options] housekeep all [options] [DIR]

  Remove both orphaned lock files and old backup files.

  Either give a single DIR that is scanned for both categories, or give
  -locks-dir and -backups-dir to scan two different directories. Giving
  neither, or mixing the two forms, is an error.

Options:

  -locks-dir DIR        Directory to scan for lock files.

  -backups-dir DIR      Directory to scan for backup files.

  -recursive            Scan subdirectories too. Symbolic links are
                        never followed.

  -suffix SUFFIX        Backup suffix to recognize. Defaults to
                        ".mutx.backup".

  -keep-newest N        For each base file, keep only the N newest
                        backups and delete the rest.

  -older-than DURATION  Age threshold, as an integer with an optional
                        s, m, h or d suffix (seconds when omitted).

  -dry-run              Report what would be deleted without deleting.

  -verbose              List every deleted file.

`
	return strings.TrimSpace(helpText)
}

func (c *HousekeepAllCommand) Synopsis() string {
	return "Remove orphaned locks and old backups together"
}
