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

// HousekeepBackupsCommand is a Command implementation that removes backup
// files selected by the retention policy.
type HousekeepBackupsCommand struct {
	Meta
}

func (c *HousekeepBackupsCommand) Run(rawArgs []string) int {
	args := c.Meta.process(rawArgs)

	parsed, parseDiags := arguments.ParseHousekeepBackups(args)
	if parseDiags.HasErrors() {
		c.showDiagnostics(parseDiags)
		return ExitError
	}

	view := views.NewHousekeep(c.Meta.View())

	cfg, err := c.backupConfig(parsed, parsed.Dir)
	if err != nil {
		c.showError(err)
		return ExitError
	}

	report, err := housekeep.CleanBackups(cfg)
	if report != nil {
		view.Report("backup", report, parsed.DryRun, parsed.Verbose)
	}
	if err != nil {
		c.showError(err)
		return ExitError
	}

	return ExitSuccess
}

func (c *HousekeepBackupsCommand) AutocompleteArgs() complete.Predictor {
	return completePredictSequence{
		complete.PredictNothing, // placeholder for "backups" subcommand name
		complete.PredictDirs(""),
	}
}

func (c *HousekeepBackupsCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{
		"-recursive":   complete.PredictNothing,
		"-older-than":  complete.PredictAnything,
		"-suffix":      complete.PredictAnything,
		"-keep-newest": complete.PredictAnything,
		"-dry-run":     complete.PredictNothing,
		"-verbose":     complete.PredictNothing,
	}
}

func (c *HousekeepBackupsCommand) Help() string {
	helpText := `
Usage: mutx [global options] housekeep backups [options] [DIR]

  Remove old backup files from DIR (default: the current directory).

  Only files whose names match the backup grammar for the configured
  suffix are candidates: {base}[.{YYYYMMDD_HHMMSS}]{suffix}. A name that
  merely contains the suffix, or that carries a malformed timestamp
  segment, is never deleted.

  Without -older-than or -keep-newest every recognized backup is
  deleted. When both are given, a file matching either policy is
  deleted.

Options:

  -recursive            Scan subdirectories too. Symbolic links are
                        never followed.

  -suffix SUFFIX        Backup suffix to recognize. Defaults to
                        ".mutx.backup".

  -keep-newest N        For each base file, keep only the N newest
                        backups and delete the rest.

  -older-than DURATION  Delete backups not modified within DURATION,
                        given as an integer with an optional s, m, h or
                        d suffix (seconds when omitted).

  -dry-run              Report what would be deleted without deleting.

  -verbose              List every deleted file.

`
	return strings.TrimSpace(helpText)
}

func (c *HousekeepBackupsCommand) Synopsis() string {
	return "Remove old backup files"
}
