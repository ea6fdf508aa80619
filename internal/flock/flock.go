// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package flock acquires exclusive advisory locks on lock files, providing
// the mutual-exclusion half of atomic file replacement.
//
// Locks are advisory: they order only processes that cooperate through this
// package (or through the same OS primitive). The lock file itself is never
// deleted on release. Deleting it would race with a concurrently-waiting
// acquirer: the waiter can be blocked on the old inode while a fresh
// acquirer re-creates the path as a new inode, and the two then both
// "hold" the lock. Orphaned lock files are reclaimed separately by the
// housekeeper.
package flock

import (
	"math/rand"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/mutx/internal/logging"
)

const (
	// initialBackoff is the first retry interval used by the Timeout
	// strategy.
	initialBackoff = 10 * time.Millisecond

	// backoffFactor is the multiplier applied to the retry interval after
	// each failed attempt.
	backoffFactor = 1.5

	// jitterRange bounds the random jitter added to every sleep. The
	// jitter decorrelates waiters so that they don't all wake and
	// recontend at the same instant.
	jitterRange = 100 * time.Millisecond

	// DefaultMaxPollInterval caps the retry interval for the Timeout
	// strategy when the caller doesn't override it.
	DefaultMaxPollInterval = 1000 * time.Millisecond
)

// Strategy selects how Acquire behaves when the lock is already held by
// another process.
type Strategy struct {
	kind            strategyKind
	timeout         time.Duration
	maxPollInterval time.Duration
}

type strategyKind int

const (
	strategyWait strategyKind = iota
	strategyNoWait
	strategyTimeout
)

// Wait returns a Strategy that blocks until the lock is granted.
func Wait() Strategy {
	return Strategy{kind: strategyWait}
}

// NoWait returns a Strategy that attempts the lock exactly once and fails
// with a BusyError if another process holds it.
func NoWait() Strategy {
	return Strategy{kind: strategyNoWait}
}

// Timeout returns a Strategy that retries a non-blocking acquisition with
// exponential backoff and jitter, giving up with a TimeoutError once d has
// elapsed.
func Timeout(d time.Duration) Strategy {
	return Strategy{
		kind:            strategyTimeout,
		timeout:         d,
		maxPollInterval: DefaultMaxPollInterval,
	}
}

// WithMaxPollInterval returns a copy of the strategy with the retry
// interval capped at the given duration. It only affects Timeout
// strategies.
func (s Strategy) WithMaxPollInterval(d time.Duration) Strategy {
	s.maxPollInterval = d
	return s
}

// GoString implements fmt.GoStringer so that strategies render usefully in
// trace logs.
func (s Strategy) GoString() string {
	switch s.kind {
	case strategyWait:
		return "flock.Wait()"
	case strategyNoWait:
		return "flock.NoWait()"
	default:
		return "flock.Timeout(" + s.timeout.String() + ")"
	}
}

// Options adjusts how the lock file itself is opened.
type Options struct {
	// FollowSymlinks permits the lock path to be a symbolic link. By
	// default a symlink at the lock path is rejected, because following
	// one would let an attacker redirect the lock (and therefore the
	// mutual exclusion domain) somewhere else.
	FollowSymlinks bool
}

// Lock is a held exclusive lock. The caller must call Release exactly once,
// normally via defer immediately after a successful Acquire.
type Lock struct {
	file     lockFile
	path     string
	released bool
}

// Acquire opens (creating if necessary) the lock file at path and obtains
// an exclusive advisory lock on it under the given strategy. The file is
// opened without truncation so that a concurrent holder's descriptor is
// undisturbed.
func Acquire(path string, strategy Strategy, opts *Options) (*Lock, error) {
	if opts == nil {
		opts = &Options{}
	}

	logger := logging.HCLogger().Named("flock")
	logger.Debug("acquiring lock", "path", path, "strategy", strategy.GoString())

	f, err := sysOpen(path, opts.FollowSymlinks)
	if err != nil {
		return nil, err
	}

	if err := lockWithStrategy(f, path, strategy, logger); err != nil {
		sysClose(f)
		return nil, err
	}

	logger.Debug("lock acquired", "path", path)
	return &Lock{file: f, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the advisory lock and closes the descriptor. The lock file
// is left in place; see the package comment for why. Calling Release more
// than once is safe.
func (l *Lock) Release() error {
	if l.released {
		return nil
	}
	l.released = true

	err := sysUnlock(l.file)
	if closeErr := sysClose(l.file); err == nil {
		err = closeErr
	}

	logging.HCLogger().Named("flock").Debug("lock released, file persists", "path", l.path)
	return err
}

func lockWithStrategy(f lockFile, path string, strategy Strategy, logger hclog.Logger) error {
	switch strategy.kind {
	case strategyWait:
		if err := sysLockBlocking(f); err != nil {
			return &AcquireError{Path: path, Err: err}
		}
		return nil

	case strategyNoWait:
		acquired, err := sysTryLock(f)
		if err != nil {
			return &AcquireError{Path: path, Err: err}
		}
		if !acquired {
			return &BusyError{Path: path}
		}
		return nil

	case strategyTimeout:
		return lockWithTimeout(f, path, strategy, logger)

	default:
		panic("unknown lock strategy")
	}
}

// lockWithTimeout retries a non-blocking acquisition until the budget is
// exhausted. The budget is measured against monotonic elapsed time from the
// first attempt, not against attempt count, so long sleeps and scheduler
// delays consume it. After every sleep we re-check the budget before
// attempting again: a wakeup that lands past the deadline fails immediately
// rather than sneaking in one more try.
func lockWithTimeout(f lockFile, path string, strategy Strategy, logger hclog.Logger) error {
	start := time.Now()
	backoff := initialBackoff

	for {
		acquired, err := sysTryLock(f)
		if err != nil {
			return &AcquireError{Path: path, Err: err}
		}
		if acquired {
			return nil
		}

		if time.Since(start) >= strategy.timeout {
			return &TimeoutError{Path: path, Duration: strategy.timeout}
		}

		interval := backoff
		if interval > strategy.maxPollInterval {
			interval = strategy.maxPollInterval
		}
		sleep := interval + time.Duration(rand.Int63n(int64(jitterRange)))

		logger.Trace("lock busy, backing off", "path", path, "sleep", sleep)
		time.Sleep(sleep)

		if time.Since(start) >= strategy.timeout {
			return &TimeoutError{Path: path, Duration: strategy.timeout}
		}

		backoff = time.Duration(float64(backoff) * backoffFactor)
	}
}

// Orphaned reports whether the lock file at path is orphaned: no live
// process holds it, evidenced by a successful non-blocking acquisition. The
// probe lock is dropped again immediately.
//
// A held lock reports false. The answer is inherently racy (the holder can
// exit a moment later), which is fine for housekeeping: a false negative
// just means the file is reclaimed on a later run.
func Orphaned(path string) (bool, error) {
	f, err := sysOpenProbe(path)
	if err != nil {
		return false, err
	}
	defer sysClose(f)

	acquired, err := sysTryLock(f)
	if err != nil {
		return false, err
	}
	if !acquired {
		return false, nil
	}

	if err := sysUnlock(f); err != nil {
		return true, err
	}
	return true, nil
}
