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

// HousekeepLocksCommand is a Command implementation that removes orphaned
// lock files.
type HousekeepLocksCommand struct {
	Meta
}

func (c *HousekeepLocksCommand) Run(rawArgs []string) int {
	args := c.Meta.process(rawArgs)

	parsed, parseDiags := arguments.ParseHousekeepLocks(args)
	if parseDiags.HasErrors() {
		c.showDiagnostics(parseDiags)
		return ExitError
	}

	view := views.NewHousekeep(c.Meta.View())

	cfg, err := c.lockConfig(parsed, parsed.Dir)
	if err != nil {
		c.showError(err)
		return ExitError
	}

	report, err := housekeep.CleanLocks(cfg)
	if report != nil {
		view.Report("lock", report, parsed.DryRun, parsed.Verbose)
	}
	if err != nil {
		c.showError(err)
		return ExitError
	}

	return ExitSuccess
}

func (c *HousekeepLocksCommand) AutocompleteArgs() complete.Predictor {
	return completePredictSequence{
		complete.PredictNothing, // placeholder for "locks" subcommand name
		complete.PredictDirs(""),
	}
}

func (c *HousekeepLocksCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{
		"-recursive":  complete.PredictNothing,
		"-older-than": complete.PredictAnything,
		"-dry-run":    complete.PredictNothing,
		"-verbose":    complete.PredictNothing,
	}
}

func (c *HousekeepLocksCommand) Help() string {
	helpText := `
Usage: mutx [global options] housekeep locks [options] [DIR]

  Remove orphaned lock files from DIR, or from the per-user lock cache
  directory when DIR is omitted.

  A lock file is orphaned when a non-blocking probe lock on it succeeds,
  which proves no live process is holding it. Lock files held by running
  writers are left alone. Files whose names don't end in ".lock" are
  never touched.

Options:

  -recursive            Scan subdirectories too. Symbolic links are
                        never followed.

  -older-than DURATION  Only consider lock files not modified within
                        DURATION, given as an integer with an optional
                        s, m, h or d suffix (seconds when omitted).

  -dry-run              Report what would be deleted without deleting.

  -verbose              List every deleted file.

`
	return strings.TrimSpace(helpText)
}

func (c *HousekeepLocksCommand) Synopsis() string {
	return "Remove orphaned lock files"
}
