// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package views

import (
	"fmt"

	"github.com/hashicorp/mutx/internal/housekeep"
)

// The Housekeep view is used for the housekeep subcommands.
type Housekeep interface {
	// Report renders the outcome of one category's cleaning pass. The
	// category is a singular noun ("lock" or "backup") used in the
	// summary line.
	Report(category string, report *housekeep.Report, dryRun, verbose bool)
}

// NewHousekeep returns the human-readable Housekeep implementation.
func NewHousekeep(view *View) Housekeep {
	return &housekeepHuman{view: view}
}

type housekeepHuman struct {
	view *View
}

var _ Housekeep = (*housekeepHuman)(nil)

// Report prints one line per file a dry run would delete (and, with
// verbose, one per file actually deleted), then a summary. The summary
// wording distinguishes a hypothetical pass from a real one: readers of
// scripts and logs must never mistake a dry run for deletions.
func (v *housekeepHuman) Report(category string, report *housekeep.Report, dryRun, verbose bool) {
	for _, entry := range report.Entries {
		switch entry.Action {
		case housekeep.ActionWouldDelete:
			v.view.output(fmt.Sprintf("[bold]Would delete:[reset] %s", entry.Path))
		case housekeep.ActionDeleted:
			if verbose {
				v.view.output(fmt.Sprintf("Deleted: %s", entry.Path))
			}
		}
	}

	count := report.Locks
	if category == "backup" {
		count = report.Backups
	}

	if dryRun {
		v.view.output(fmt.Sprintf("Would clean %d %s file(s)", count, category))
	} else {
		v.view.output(fmt.Sprintf("Cleaned %d %s file(s)", count, category))
	}
}
