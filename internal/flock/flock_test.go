// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package flock

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// flock(2) locks belong to the open file description, so two Acquire calls
// within this test process genuinely contend, which is what makes these
// tests meaningful without spawning helper processes.

func testLockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.lock")
}

func TestAcquireRelease(t *testing.T) {
	path := testLockPath(t)

	lock, err := Acquire(path, Wait(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if lock.Path() != path {
		t.Errorf("wrong lock path %q; want %q", lock.Path(), path)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("unexpected error releasing: %s", err)
	}

	// Release must be idempotent.
	if err := lock.Release(); err != nil {
		t.Fatalf("second release failed: %s", err)
	}

	// The lock file persists after release; reclaiming it is the
	// housekeeper's job, not ours.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lock file was removed on release: %s", err)
	}
}

func TestAcquireNoWaitContention(t *testing.T) {
	path := testLockPath(t)

	holder, err := Acquire(path, Wait(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer holder.Release()

	start := time.Now()
	_, err = Acquire(path, NoWait(), nil)
	elapsed := time.Since(start)

	var busyErr *BusyError
	if !errors.As(err, &busyErr) {
		t.Fatalf("wrong error %#v; want BusyError", err)
	}
	if elapsed > 100*time.Millisecond {
		t.Errorf("NoWait took %s; want an immediate failure", elapsed)
	}
}

func TestAcquireNoWaitUncontended(t *testing.T) {
	path := testLockPath(t)

	lock, err := Acquire(path, NoWait(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer lock.Release()
}

func TestAcquireTimeoutExpires(t *testing.T) {
	path := testLockPath(t)

	holder, err := Acquire(path, Wait(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer holder.Release()

	timeout := 250 * time.Millisecond
	maxPoll := 50 * time.Millisecond

	start := time.Now()
	_, err = Acquire(path, Timeout(timeout).WithMaxPollInterval(maxPoll), nil)
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("wrong error %#v; want TimeoutError", err)
	}
	if timeoutErr.Duration != timeout {
		t.Errorf("error reports duration %s; want %s", timeoutErr.Duration, timeout)
	}

	// The call must consume at least the budget, and overshoot by at
	// most one capped sleep plus jitter (generous slack for CI
	// schedulers).
	if elapsed < timeout {
		t.Errorf("timeout returned after %s, before the %s budget elapsed", elapsed, timeout)
	}
	if elapsed > timeout+maxPoll+jitterRange+500*time.Millisecond {
		t.Errorf("timeout returned after %s; far beyond the %s budget", elapsed, timeout)
	}
}

func TestAcquireTimeoutEventuallySucceeds(t *testing.T) {
	path := testLockPath(t)

	holder, err := Acquire(path, Wait(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	go func() {
		time.Sleep(150 * time.Millisecond)
		holder.Release()
	}()

	lock, err := Acquire(path, Timeout(5*time.Second).WithMaxPollInterval(50*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer lock.Release()
}

func TestAcquireSymlinkRejected(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.lock")
	if err := os.WriteFile(target, nil, 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.lock")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlinks here: %s", err)
	}

	_, err := Acquire(link, Wait(), nil)
	var symlinkErr *SymlinkError
	if !errors.As(err, &symlinkErr) {
		t.Fatalf("wrong error %#v; want SymlinkError", err)
	}

	// With the explicit opt-in the same path locks fine.
	lock, err := Acquire(link, Wait(), &Options{FollowSymlinks: true})
	if err != nil {
		t.Fatalf("unexpected error with FollowSymlinks: %s", err)
	}
	defer lock.Release()
}

func TestOrphaned(t *testing.T) {
	path := testLockPath(t)

	// A lock file nobody holds is orphaned.
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	orphaned, err := Orphaned(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !orphaned {
		t.Errorf("unheld lock file not reported as orphaned")
	}

	// A held one is not.
	holder, err := Acquire(path, Wait(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	orphaned, err = Orphaned(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if orphaned {
		t.Errorf("held lock file reported as orphaned")
	}

	// The probe must not have stolen or broken the holder's lock:
	// another contender still fails.
	if _, err := Acquire(path, NoWait(), nil); err == nil {
		t.Errorf("lock no longer held after the orphan probe")
	}

	holder.Release()

	// And after release the file is reclaimable.
	orphaned, err = Orphaned(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !orphaned {
		t.Errorf("released lock file not reported as orphaned")
	}
}

func TestLockMutualExclusion(t *testing.T) {
	path := testLockPath(t)

	// A pair of goroutines repeatedly enter a critical section guarded
	// only by the file lock. A second holder inside the section trips
	// the flag.
	const iterations = 20

	var inCritical atomic.Bool
	done := make(chan error, 2)

	worker := func() {
		for i := 0; i < iterations; i++ {
			lock, err := Acquire(path, Wait(), nil)
			if err != nil {
				done <- err
				return
			}
			if !inCritical.CompareAndSwap(false, true) {
				lock.Release()
				done <- errors.New("two holders inside the critical section")
				return
			}
			time.Sleep(time.Millisecond)
			inCritical.Store(false)
			lock.Release()
		}
		done <- nil
	}

	go worker()
	go worker()

	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}
