// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

//go:build !windows
// +build !windows

package flock

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// We use flock(2) rather than fcntl locks: flock locks belong to the open
// file description, so two descriptors within one process still exclude
// each other. That is what makes the housekeeper's orphan probe (and the
// tests) meaningful without spawning helper processes.

type lockFile = *os.File

// sysOpen opens the lock file for locking, creating it if missing. The
// contents are never truncated; the advisory lock lives on the descriptor,
// not in the file data. With follow unset, O_NOFOLLOW makes the kernel
// refuse to traverse a trailing symlink, which closes the race a
// stat-then-open check would leave open.
func sysOpen(path string, follow bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if !follow {
		flags |= unix.O_NOFOLLOW
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if errors.Is(err, unix.ELOOP) || errors.Is(err, unix.EMLINK) {
			return nil, &SymlinkError{Path: path}
		}
		return nil, &CreateError{Path: path, Err: err}
	}
	return f, nil
}

// sysOpenProbe opens an existing lock file read-only for the housekeeper's
// orphan probe. Symlinks are always refused here; the housekeeper never
// follows them.
func sysOpenProbe(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		if errors.Is(err, unix.ELOOP) || errors.Is(err, unix.EMLINK) {
			return nil, &SymlinkError{Path: path}
		}
		return nil, err
	}
	return f, nil
}

func sysLockBlocking(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			return err
		}
	}
}

func sysTryLock(f *os.File) (bool, error) {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if err == unix.EWOULDBLOCK || err == unix.EAGAIN {
		return false, nil
	}
	return false, err
}

func sysUnlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

func sysClose(f *os.File) error {
	return f.Close()
}
