// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package backup snapshots a file before it is overwritten.
//
// Backups are created by copying into a temporary sibling and renaming
// onto the final backup name, so a crash mid-backup leaves either the
// previous backup (if one existed) or no backup at all, never a partial
// one. The backup file name follows a strict grammar that the housekeeper
// relies on to recognize its own artifacts:
//
//	{base}[.{YYYYMMDD_HHMMSS}]{suffix}
//
// where the timestamp segment is present iff the caller asked for one and
// is always exactly 8 digits, an underscore, then 6 digits, in local time.
// The suffix is appended literally, so any separating dot is part of it.
package backup

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/mutx/internal/logging"
)

// TimestampLayout is the time.Format layout of the optional timestamp
// segment in a backup file name.
const TimestampLayout = "20060102_150405"

// timestampLen is the length of a formatted timestamp segment.
const timestampLen = len(TimestampLayout)

// DefaultSuffix is the backup suffix used when the caller doesn't supply
// one.
const DefaultSuffix = ".mutx.backup"

// copyBufferSize bounds memory use while copying the old contents.
const copyBufferSize = 64 * 1024

// Spec describes the backup a caller wants.
type Spec struct {
	// Suffix is appended literally to the backup file name, including any
	// leading dot. Must be non-empty and not a bare dot.
	Suffix string

	// Timestamp adds a {YYYYMMDD_HHMMSS} segment between the base name
	// and the suffix.
	Timestamp bool

	// Dir places the backup in a different directory instead of next to
	// the target. The directory must already exist.
	Dir string
}

// Validate checks the suffix invariant. It is enforced here, inside the
// engine, and not only at the CLI boundary, so that library callers can't
// create backups whose names the housekeeper would later misparse.
func (s *Spec) Validate() error {
	return ValidateSuffix(s.Suffix)
}

// ValidateSuffix rejects suffixes that would produce unrecognizable or
// dangerous backup names: the empty string (backup would shadow the
// target) and a bare "." (backup name would end in a meaningless dot).
func ValidateSuffix(suffix string) error {
	if suffix == "" || suffix == "." {
		return &InvalidSuffixError{Suffix: suffix}
	}
	return nil
}

// Create snapshots the file at target according to spec, returning the
// path of the backup artifact. If the target does not exist there is
// nothing to preserve and Create returns ("", nil); a first-time write
// needs no backup.
func Create(target string, spec *Spec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	src, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", &CopyError{Path: target, Err: err}
	}
	defer src.Close()

	fi, err := src.Stat()
	if err != nil {
		return "", &CopyError{Path: target, Err: err}
	}

	backupPath, err := artifactPath(target, spec)
	if err != nil {
		return "", err
	}

	// Copy into a temp sibling of the final name, then rename. The
	// rename target and the temp file share a directory, so the commit
	// is atomic.
	tmpPath := backupPath + ".tmp"
	if err := copyTo(tmpPath, src, fi.Mode().Perm()); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, backupPath); err != nil {
		os.Remove(tmpPath)
		return "", &RenameError{Path: backupPath, Err: err}
	}

	logging.HCLogger().Named("backup").Debug("backup created", "target", target, "backup", backupPath)
	return backupPath, nil
}

// artifactPath computes the full path of the backup artifact.
func artifactPath(target string, spec *Spec) (string, error) {
	base := filepath.Base(target)

	name := base
	if spec.Timestamp {
		name += "." + time.Now().Format(TimestampLayout)
	}
	name += spec.Suffix

	if spec.Dir != "" {
		fi, err := os.Stat(spec.Dir)
		if err != nil || !fi.IsDir() {
			return "", &DirError{Dir: spec.Dir}
		}
		return filepath.Join(spec.Dir, name), nil
	}
	return filepath.Join(filepath.Dir(target), name), nil
}

func copyTo(tmpPath string, src io.Reader, mode os.FileMode) error {
	dst, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return &CopyError{Path: tmpPath, Err: err}
	}

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(dst, src, buf); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return &CopyError{Path: tmpPath, Err: err}
	}

	if err := dst.Sync(); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return &CopyError{Path: tmpPath, Err: err}
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return &CopyError{Path: tmpPath, Err: err}
	}
	return nil
}

// ParseName decomposes a file basename against the backup grammar for the
// given suffix. It returns the extracted base name, whether a timestamp
// segment was present, and whether the name qualifies as a backup at all.
//
// The check is deliberately strict. A name that ends with the suffix but
// carries a malformed 15-character segment in the timestamp position does
// not qualify: that strictness is the main defense against the housekeeper
// deleting a user's own file whose name merely resembles a backup.
func ParseName(name, suffix string) (base string, timestamped bool, ok bool) {
	if ValidateSuffix(suffix) != nil {
		return "", false, false
	}
	if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
		return "", false, false
	}

	rest := name[:len(name)-len(suffix)]

	// A trailing ".{15 chars}" occupies the timestamp position and must
	// then be a valid timestamp, or the whole name is disqualified.
	if len(rest) > timestampLen && rest[len(rest)-timestampLen-1] == '.' {
		seg := rest[len(rest)-timestampLen:]
		if !ValidTimestamp(seg) {
			return "", false, false
		}
		return rest[:len(rest)-timestampLen-1], true, true
	}

	if rest == "" {
		return "", false, false
	}
	return rest, false, true
}

// ValidTimestamp reports whether s is exactly 8 digits, an underscore,
// then 6 digits.
func ValidTimestamp(s string) bool {
	if len(s) != timestampLen {
		return false
	}
	for i, r := range s {
		if i == 8 {
			if r != '_' {
				return false
			}
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
