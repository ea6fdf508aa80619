// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package housekeep finds and removes the artifacts that the writer
// deliberately leaves behind: lock files whose holders are gone, and
// backups that the retention policy no longer wants.
//
// Deletion on this surface is inherently racy with other processes doing
// the same work, so a NotFound on unlink is swallowed rather than
// reported. Any other per-entry failure is recorded and the scan
// continues; one unreadable file should not abort the whole run.
package housekeep

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp/mutx/internal/backup"
	"github.com/hashicorp/mutx/internal/flock"
	"github.com/hashicorp/mutx/internal/logging"
)

// lockSuffix identifies lock files during classification.
const lockSuffix = ".lock"

// LocksConfig configures a lock-file cleaning pass.
type LocksConfig struct {
	// Dir is the directory to scan.
	Dir string

	// Recursive descends into subdirectories. Symbolic links are never
	// followed either way.
	Recursive bool

	// OlderThan, when positive, restricts candidates to files whose
	// modification time precedes now minus this duration.
	OlderThan time.Duration

	// DryRun reports what would be deleted without deleting.
	DryRun bool
}

// BackupsConfig configures a backup cleaning pass.
type BackupsConfig struct {
	// Dir is the directory to scan.
	Dir string

	// Suffix is the backup suffix to recognize. Required; the caller
	// defaults it to backup.DefaultSuffix.
	Suffix string

	// Recursive descends into subdirectories without following symlinks.
	Recursive bool

	// OlderThan, when positive, marks any candidate older than now minus
	// this duration for deletion.
	OlderThan time.Duration

	// KeepNewest, when >= 0, keeps only that many newest backups per
	// base file and marks the rest for deletion. Combined with
	// OlderThan, a file is deleted if either policy selects it. With
	// neither policy configured (KeepNewest < 0, OlderThan zero), every
	// recognized backup is selected.
	KeepNewest int

	// DryRun reports what would be deleted without deleting.
	DryRun bool
}

// CleanLocks scans for orphaned lock files and removes them (or, in dry
// run, reports them). A lock file is orphaned iff a non-blocking exclusive
// lock attempt on it succeeds; files whose holders are alive are skipped.
func CleanLocks(cfg *LocksConfig) (*Report, error) {
	logger := logging.HCLogger().Named("housekeep")

	report := &Report{}
	var errs *multierror.Error

	err := walk(cfg.Dir, cfg.Recursive, func(path string, fi os.FileInfo) {
		if !strings.HasSuffix(fi.Name(), lockSuffix) {
			return
		}

		if cfg.OlderThan > 0 && fi.ModTime().After(time.Now().Add(-cfg.OlderThan)) {
			report.add(path, ActionSkipped)
			return
		}

		orphaned, err := flock.Orphaned(path)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			logger.Warn("failed to probe lock file", "path", path, "error", err)
			errs = multierror.Append(errs, err)
			return
		}
		if !orphaned {
			logger.Debug("lock file is held, keeping", "path", path)
			report.add(path, ActionSkipped)
			return
		}

		report.Locks++
		if cfg.DryRun {
			report.add(path, ActionWouldDelete)
			return
		}
		if err := remove(path); err != nil {
			report.Locks--
			errs = multierror.Append(errs, err)
			return
		}
		report.add(path, ActionDeleted)
	})
	if err != nil {
		return report, err
	}

	return report, errs.ErrorOrNil()
}

// CleanBackups scans for backup artifacts carrying the configured suffix
// and removes those selected by the retention policies.
func CleanBackups(cfg *BackupsConfig) (*Report, error) {
	if err := backup.ValidateSuffix(cfg.Suffix); err != nil {
		return nil, err
	}

	report := &Report{}
	var errs *multierror.Error

	// Candidates are grouped by their extracted base name so that
	// keep-newest can rank generations of the same file against each
	// other.
	type candidate struct {
		path  string
		mtime time.Time
	}
	groups := make(map[string][]candidate)
	var order []string

	err := walk(cfg.Dir, cfg.Recursive, func(path string, fi os.FileInfo) {
		base, _, ok := backup.ParseName(fi.Name(), cfg.Suffix)
		if !ok {
			return
		}
		key := filepath.Join(filepath.Dir(path), base)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], candidate{path: path, mtime: fi.ModTime()})
	})
	if err != nil {
		return report, err
	}

	// With no retention policy configured at all, cleaning backups means
	// cleaning all of them; the policies exist to restrict that.
	noPolicy := cfg.KeepNewest < 0 && cfg.OlderThan <= 0

	now := time.Now()
	for _, key := range order {
		group := groups[key]
		sort.Slice(group, func(i, j int) bool {
			return group[i].mtime.After(group[j].mtime)
		})

		for idx, c := range group {
			del := noPolicy
			if cfg.KeepNewest >= 0 && idx >= cfg.KeepNewest {
				del = true
			}
			if cfg.OlderThan > 0 && c.mtime.Before(now.Add(-cfg.OlderThan)) {
				del = true
			}

			if !del {
				report.add(c.path, ActionSkipped)
				continue
			}

			report.Backups++
			if cfg.DryRun {
				report.add(c.path, ActionWouldDelete)
				continue
			}
			if err := remove(c.path); err != nil {
				report.Backups--
				errs = multierror.Append(errs, err)
				continue
			}
			report.add(c.path, ActionDeleted)
		}
	}

	return report, errs.ErrorOrNil()
}

// remove deletes a file, treating NotFound as success: another housekeeper
// (or the artifact's owner) got there first, and that is the outcome we
// wanted anyway.
func remove(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
