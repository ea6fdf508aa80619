// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package arguments

import (
	"fmt"
	"time"

	"github.com/hashicorp/mutx/internal/backup"
	"github.com/hashicorp/mutx/internal/diags"
)

// Housekeep represents the command-line arguments shared by the housekeep
// subcommands. Fields that only apply to one subcommand are documented as
// such.
type Housekeep struct {
	// Dir is the single positional directory, when given.
	Dir string

	// LocksDir and BackupsDir split the scan targets for "housekeep all".
	LocksDir   string
	BackupsDir string

	// Recursive descends into subdirectories.
	Recursive bool

	// OlderThan restricts (locks) or selects (backups) by age when
	// HasOlderThan is set.
	OlderThan    time.Duration
	HasOlderThan bool

	// DryRun reports what would be deleted without deleting.
	DryRun bool

	// Verbose lists every affected file even outside dry run.
	Verbose bool

	// Suffix is the backup suffix to recognize (backups/all only).
	Suffix string

	// KeepNewest keeps N newest backups per file when HasKeepNewest is
	// set (backups/all only).
	KeepNewest    int
	HasKeepNewest bool
}

// housekeepFlagSet registers the flags common to all housekeep
// subcommands.
func housekeepFlagSet(name string, hk *Housekeep, olderThan *string) *flagSetWrapper {
	cmdFlags := defaultFlagSet(name)
	cmdFlags.BoolVar(&hk.Recursive, "recursive", false, "scan subdirectories")
	cmdFlags.StringVar(olderThan, "older-than", "", "age threshold")
	cmdFlags.BoolVar(&hk.DryRun, "dry-run", false, "report only")
	cmdFlags.BoolVar(&hk.Verbose, "verbose", false, "verbose output")
	return &flagSetWrapper{cmdFlags}
}

// ParseHousekeepLocks processes CLI arguments for "housekeep locks".
func ParseHousekeepLocks(args []string) (*Housekeep, diags.Diagnostics) {
	var diagnostics diags.Diagnostics
	hk := &Housekeep{}

	var olderThan string
	cmdFlags := housekeepFlagSet("housekeep locks", hk, &olderThan)

	diagnostics = cmdFlags.parse(args, diagnostics)
	diagnostics = hk.finishCommon(cmdFlags, olderThan, diagnostics)
	return hk, diagnostics
}

// ParseHousekeepBackups processes CLI arguments for "housekeep backups".
func ParseHousekeepBackups(args []string) (*Housekeep, diags.Diagnostics) {
	var diagnostics diags.Diagnostics
	hk := &Housekeep{}

	var olderThan string
	cmdFlags := housekeepFlagSet("housekeep backups", hk, &olderThan)
	hk.addBackupFlags(cmdFlags)

	diagnostics = cmdFlags.parse(args, diagnostics)
	diagnostics = hk.finishCommon(cmdFlags, olderThan, diagnostics)
	diagnostics = hk.finishBackup(diagnostics)
	return hk, diagnostics
}

// ParseHousekeepAll processes CLI arguments for "housekeep all". It
// requires either a single positional directory used for both categories,
// or both -locks-dir and -backups-dir; anything else is ambiguous and
// rejected.
func ParseHousekeepAll(args []string) (*Housekeep, diags.Diagnostics) {
	var diagnostics diags.Diagnostics
	hk := &Housekeep{}

	var olderThan string
	cmdFlags := housekeepFlagSet("housekeep all", hk, &olderThan)
	hk.addBackupFlags(cmdFlags)
	cmdFlags.StringVar(&hk.LocksDir, "locks-dir", "", "lock scan directory")
	cmdFlags.StringVar(&hk.BackupsDir, "backups-dir", "", "backup scan directory")

	diagnostics = cmdFlags.parse(args, diagnostics)
	diagnostics = hk.finishCommon(cmdFlags, olderThan, diagnostics)
	diagnostics = hk.finishBackup(diagnostics)

	split := hk.LocksDir != "" || hk.BackupsDir != ""
	switch {
	case hk.Dir != "" && split:
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Ambiguous housekeep directories",
			"Give either a single DIR argument for both categories, or both -locks-dir and -backups-dir, not a mixture.",
		))
	case hk.Dir == "" && !split:
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Missing housekeep directories",
			"The all subcommand needs either a single DIR argument or both -locks-dir and -backups-dir.",
		))
	case hk.Dir == "" && (hk.LocksDir == "" || hk.BackupsDir == ""):
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Ambiguous housekeep directories",
			"The -locks-dir and -backups-dir options must be given together.",
		))
	case hk.Dir != "":
		hk.LocksDir = hk.Dir
		hk.BackupsDir = hk.Dir
	}

	return hk, diagnostics
}

func (hk *Housekeep) addBackupFlags(cmdFlags *flagSetWrapper) {
	cmdFlags.StringVar(&hk.Suffix, "suffix", backup.DefaultSuffix, "backup suffix")
	cmdFlags.IntVar(&hk.KeepNewest, "keep-newest", -1, "keep N newest backups per file")
}

func (hk *Housekeep) finishCommon(cmdFlags *flagSetWrapper, olderThan string, diagnostics diags.Diagnostics) diags.Diagnostics {
	positional := cmdFlags.Args()
	switch len(positional) {
	case 0:
	case 1:
		hk.Dir = positional[0]
	default:
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Too many command line arguments",
			"Expected at most a single directory argument.",
		))
	}

	if olderThan != "" {
		d, err := ParseDuration(olderThan)
		if err != nil {
			diagnostics = diagnostics.Append(diags.Sourceless(
				diags.Error,
				"Invalid -older-than duration",
				err.Error(),
			))
		} else {
			hk.OlderThan = d
			hk.HasOlderThan = true
		}
	}

	return diagnostics
}

func (hk *Housekeep) finishBackup(diagnostics diags.Diagnostics) diags.Diagnostics {
	if err := backup.ValidateSuffix(hk.Suffix); err != nil {
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Invalid backup suffix",
			fmt.Sprintf("The suffix %q is not allowed: it must be non-empty and not a bare dot.", hk.Suffix),
		))
	}
	if hk.KeepNewest >= 0 {
		hk.HasKeepNewest = true
	}
	return diagnostics
}
