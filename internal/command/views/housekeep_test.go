// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package views

import (
	"strings"
	"testing"

	"github.com/hashicorp/cli"
	"github.com/mitchellh/colorstring"

	"github.com/hashicorp/mutx/internal/housekeep"
)

func testView(t *testing.T) (*View, *cli.MockUi) {
	t.Helper()
	ui := cli.NewMockUi()
	colorize := &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: true,
		Reset:   true,
	}
	return NewView(ui, colorize), ui
}

func TestHousekeepReportDryRun(t *testing.T) {
	view, ui := testView(t)

	report := &housekeep.Report{
		Entries: []housekeep.Entry{
			{Path: "/tmp/a.lock", Action: housekeep.ActionWouldDelete},
			{Path: "/tmp/b.lock", Action: housekeep.ActionSkipped},
		},
		Locks: 1,
	}

	NewHousekeep(view).Report("lock", report, true, false)

	stdout := ui.OutputWriter.String()
	if !strings.Contains(stdout, "Would delete: /tmp/a.lock") {
		t.Errorf("missing per-file line:\n%s", stdout)
	}
	if strings.Contains(stdout, "b.lock") {
		t.Errorf("skipped file leaked into output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Would clean 1 lock file(s)") {
		t.Errorf("missing summary:\n%s", stdout)
	}
}

func TestHousekeepReportReal(t *testing.T) {
	view, ui := testView(t)

	report := &housekeep.Report{
		Entries: []housekeep.Entry{
			{Path: "/tmp/a.lock", Action: housekeep.ActionDeleted},
		},
		Locks: 1,
	}

	// Without verbose only the summary appears.
	NewHousekeep(view).Report("lock", report, false, false)
	stdout := ui.OutputWriter.String()
	if strings.Contains(stdout, "Deleted: /tmp/a.lock") {
		t.Errorf("per-file line printed without verbose:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Cleaned 1 lock file(s)") {
		t.Errorf("missing summary:\n%s", stdout)
	}

	// With verbose, the per-file line appears too.
	view2, ui2 := testView(t)
	NewHousekeep(view2).Report("lock", report, false, true)
	if !strings.Contains(ui2.OutputWriter.String(), "Deleted: /tmp/a.lock") {
		t.Errorf("per-file line missing with verbose:\n%s", ui2.OutputWriter.String())
	}
}
