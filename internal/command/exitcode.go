// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"context"
	"errors"

	"github.com/hashicorp/mutx/internal/atomicfile"
	"github.com/hashicorp/mutx/internal/flock"
)

// Exit codes form the scriptable half of the CLI contract: 2 specifically
// means "the file was fine, another writer held the lock", so retry loops
// in shell scripts can distinguish contention from real failures.
const (
	ExitSuccess = 0

	// ExitError covers validation failures and filesystem errors.
	ExitError = 1

	// ExitLockContention covers NoWait busy and Timeout expiry.
	ExitLockContention = 2

	// ExitInterrupted means a fatal signal stopped the operation.
	ExitInterrupted = 3
)

// exitCodeForError maps an operational error onto the exit code contract.
func exitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var busyErr *flock.BusyError
	var timeoutErr *flock.TimeoutError
	if errors.As(err, &busyErr) || errors.As(err, &timeoutErr) {
		return ExitLockContention
	}

	var interruptedErr *atomicfile.InterruptedError
	if errors.As(err, &interruptedErr) || errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	return ExitError
}

// errorHint returns the one-line explanation and opt-in flag for
// security-motivated rejections, or "" for everything else.
func errorHint(err error) string {
	var outputSymlink *atomicfile.SymlinkError
	if errors.As(err, &outputSymlink) {
		return "Writing through symbolic links is refused so that a planted link can't redirect the write elsewhere. Pass -follow-symlinks to allow it."
	}

	var lockSymlink *flock.SymlinkError
	if errors.As(err, &lockSymlink) {
		return "Locking through symbolic links is refused so that a planted link can't move the lock (and the mutual exclusion it provides) elsewhere. Pass -follow-lock-symlinks to allow it."
	}

	return ""
}
