// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package arguments

import (
	"fmt"
	"time"

	"github.com/hashicorp/mutx/internal/backup"
	"github.com/hashicorp/mutx/internal/diags"
)

// Write represents the command-line arguments for the write command.
type Write struct {
	// OutputPath is the file to replace.
	OutputPath string

	// InputPath reads input from a file instead of stdin when non-empty.
	InputPath string

	// Streaming selects chunked ingestion with constant memory.
	Streaming bool

	// NoWait fails immediately if the lock is held.
	NoWait bool

	// Timeout bounds lock acquisition when HasTimeout is set.
	Timeout    time.Duration
	HasTimeout bool

	// MaxPollInterval caps the retry interval when HasMaxPollInterval is
	// set. Only meaningful together with Timeout.
	MaxPollInterval    time.Duration
	HasMaxPollInterval bool

	// LockFile overrides the derived lock path.
	LockFile string

	// FollowSymlinks permits the output path to be a symlink.
	FollowSymlinks bool

	// FollowLockSymlinks permits the lock path to be a symlink. Implies
	// FollowSymlinks: anyone trusting symlinks on the more dangerous
	// surface has already accepted them on the weaker one.
	FollowLockSymlinks bool

	// Backup snapshots the pre-existing target before the write.
	Backup bool

	// BackupSuffix is the literal suffix on the backup artifact.
	BackupSuffix string

	// BackupDir places backups in a directory other than the target's.
	BackupDir string

	// BackupTimestamp adds a timestamp segment to the backup name.
	BackupTimestamp bool

	// Verbose reports progress as the write proceeds.
	Verbose bool
}

// ParseWrite processes CLI arguments, returning a Write value and errors.
// If errors are encountered, a Write value is still returned representing
// the best effort interpretation of the arguments.
func ParseWrite(args []string) (*Write, diags.Diagnostics) {
	var diagnostics diags.Diagnostics
	write := &Write{
		BackupSuffix: backup.DefaultSuffix,
	}

	var timeoutMS, maxPollMS int
	var verboseShort bool

	cmdFlags := defaultFlagSet("write")
	cmdFlags.StringVar(&write.InputPath, "input", "", "input file")
	cmdFlags.BoolVar(&write.Streaming, "stream", false, "streaming mode")
	cmdFlags.BoolVar(&write.NoWait, "no-wait", false, "fail immediately if locked")
	cmdFlags.IntVar(&timeoutMS, "timeout", -1, "lock timeout in milliseconds")
	cmdFlags.IntVar(&maxPollMS, "max-poll-interval", -1, "max poll interval in milliseconds")
	cmdFlags.StringVar(&write.LockFile, "lock-file", "", "custom lock file location")
	cmdFlags.BoolVar(&write.FollowSymlinks, "follow-symlinks", false, "follow output symlinks")
	cmdFlags.BoolVar(&write.FollowLockSymlinks, "follow-lock-symlinks", false, "follow lock symlinks")
	cmdFlags.BoolVar(&write.Backup, "backup", false, "create backup before overwrite")
	cmdFlags.StringVar(&write.BackupSuffix, "backup-suffix", backup.DefaultSuffix, "backup filename suffix")
	cmdFlags.StringVar(&write.BackupDir, "backup-dir", "", "backup directory")
	cmdFlags.BoolVar(&write.BackupTimestamp, "backup-timestamp", false, "timestamp in backup name")
	cmdFlags.BoolVar(&write.Verbose, "verbose", false, "verbose output")
	cmdFlags.BoolVar(&verboseShort, "v", false, "verbose output (shorthand)")

	if err := cmdFlags.Parse(args); err != nil {
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Failed to parse command-line flags",
			err.Error(),
		))
		return write, diagnostics
	}

	write.Verbose = write.Verbose || verboseShort

	positional := cmdFlags.Args()
	switch len(positional) {
	case 0:
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Missing required argument",
			"Expected the path of the output file to replace.",
		))
	case 1:
		write.OutputPath = positional[0]
	default:
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Too many command line arguments",
			"Expected only a single output file path.",
		))
	}

	if timeoutMS >= 0 {
		write.HasTimeout = true
		write.Timeout = time.Duration(timeoutMS) * time.Millisecond
	}
	if maxPollMS >= 0 {
		write.HasMaxPollInterval = true
		write.MaxPollInterval = time.Duration(maxPollMS) * time.Millisecond
	}

	if write.NoWait && write.HasTimeout {
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Conflicting lock options",
			"The -no-wait and -timeout options cannot be combined.",
		))
	}

	if write.HasMaxPollInterval && !write.HasTimeout {
		diagnostics = diagnostics.Append(diags.Sourceless(
			diags.Error,
			"Invalid lock options",
			"The -max-poll-interval option requires -timeout.",
		))
	}

	if write.Backup {
		if err := backup.ValidateSuffix(write.BackupSuffix); err != nil {
			diagnostics = diagnostics.Append(diags.Sourceless(
				diags.Error,
				"Invalid backup suffix",
				fmt.Sprintf("The suffix %q is not allowed: it must be non-empty and not a bare dot.", write.BackupSuffix),
			))
		}
	}

	// Trusting symlinks on the lock path implies trusting them on the
	// output path.
	if write.FollowLockSymlinks {
		write.FollowSymlinks = true
	}

	return write, diagnostics
}
