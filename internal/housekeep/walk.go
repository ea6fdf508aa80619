// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package housekeep

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/mutx/internal/logging"
)

// walk visits the regular files under dir, calling fn for each one.
//
// Entry types come from the directory entries themselves, without
// following symbolic links, and symlinks are skipped outright: not
// descended, not classified, not visited. Following them would let a
// planted link walk the housekeeper out of the operator's directory, or
// turn "delete this link" into "delete what it points at".
//
// A failure to read dir itself is fatal; a failure to read a subdirectory
// or to stat an entry is logged and the walk continues.
func walk(dir string, recursive bool, fn func(path string, fi os.FileInfo)) error {
	logger := logging.HCLogger().Named("housekeep")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return &TraversalError{Dir: dir, Err: err}
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.Type()&os.ModeSymlink != 0 {
			logger.Debug("skipping symlink", "path", path)
			continue
		}

		if entry.IsDir() {
			if !recursive {
				continue
			}
			if err := walk(path, recursive, fn); err != nil {
				logger.Warn("failed to read subdirectory, continuing", "dir", path, "error", err)
			}
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("failed to stat entry, continuing", "path", path, "error", err)
			}
			continue
		}

		fn(path, fi)
	}

	return nil
}
