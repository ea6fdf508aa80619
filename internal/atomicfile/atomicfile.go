// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package atomicfile replaces a file's contents atomically.
//
// Bytes are routed into a uniquely-named temporary file in the same
// directory as the target, flushed to disk, and then renamed over the
// target. Because the temp file is a sibling, the rename stays on one
// filesystem and is atomic: a concurrent reader opening the target sees
// either the old contents in full or the new contents in full, never a
// truncated or partially-written intermediate. On failure the target is
// untouched and the temp file is removed.
package atomicfile

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/mutx/internal/logging"
)

// copyBufferSize bounds the memory used by streaming ingestion.
const copyBufferSize = 64 * 1024

// Mode selects how input bytes are ingested.
type Mode int

const (
	// Buffered reads the input source to completion in memory before
	// writing it out in one pass. Appropriate for small inputs.
	Buffered Mode = iota

	// Streaming copies chunk-by-chunk with a bounded buffer, keeping
	// memory use constant regardless of input size.
	Streaming
)

// Options adjusts Replace's behavior.
type Options struct {
	// Mode selects buffered or streaming ingestion. The zero value is
	// Buffered.
	Mode Mode

	// FollowSymlinks permits the target path to be a symbolic link, in
	// which case the link is resolved before the temp file is created and
	// the replacement lands at the link's destination; the link itself is
	// left in place. A link that cannot be resolved is replaced itself.
	// By default a symlink target is rejected.
	FollowSymlinks bool
}

// Replace atomically replaces the file at path with the contents of src.
//
// The ctx only interrupts the data copy between chunks in streaming mode;
// the commit sequence itself (sync, rename, directory sync) is never
// abandoned halfway.
func Replace(ctx context.Context, path string, src io.Reader, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}

	logger := logging.HCLogger().Named("atomicfile")

	if err := checkTargetSymlink(path, opts.FollowSymlinks); err != nil {
		return err
	}

	// rename(2) replaces a symlink rather than writing through it, so a
	// followed link is resolved up front and the temp file and commit
	// rename operate on its destination.
	if opts.FollowSymlinks {
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
	}

	// The replacement inherits the mode of the file it replaces. A brand
	// new file gets the conventional default; os.CreateTemp's restrictive
	// 0600 would otherwise leak into the committed file.
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, tempName(base))
	if err != nil {
		return &TempCreateError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	logger.Debug("created temp file", "path", tmpPath)

	// Any non-commit exit path must leave the directory exactly as it
	// was, so the temp file is removed on every failure below.
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Chmod(mode); err != nil {
		return fail(&TempCreateError{Path: path, Err: err})
	}

	switch opts.Mode {
	case Buffered:
		data, err := io.ReadAll(src)
		if err != nil {
			return fail(&InputReadError{Err: err})
		}
		if _, err := tmp.Write(data); err != nil {
			return fail(&WriteError{Path: tmpPath, Err: err})
		}

	case Streaming:
		if err := copyChunked(ctx, tmp, src); err != nil {
			return fail(err)
		}
	}

	// The data must be on disk before the rename: otherwise the rename
	// can survive a crash that the data itself does not, leaving a
	// committed name pointing at garbage.
	if err := tmp.Sync(); err != nil {
		return fail(&SyncError{Path: tmpPath, Err: err})
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: tmpPath, Err: err}
	}

	// Commit point.
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &RenameError{Path: path, Err: err}
	}
	logger.Debug("committed rename", "path", path)

	// The rename lives in the parent directory's entry table; without
	// flushing it a crash can undo the commit on some filesystems. The
	// file is already replaced at this point, so a failure here is
	// surfaced but does not mean the write was lost in the normal case.
	if err := syncDir(dir); err != nil {
		return &DirSyncError{Dir: dir, Err: err}
	}

	return nil
}

// copyChunked streams src into dst with a bounded buffer, aborting between
// chunks once ctx is done.
func copyChunked(ctx context.Context, dst *os.File, src io.Reader) error {
	buf := make([]byte, copyBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return &InterruptedError{Err: err}
		}

		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return &WriteError{Path: dst.Name(), Err: werr}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &InputReadError{Err: err}
		}
	}
}

// checkTargetSymlink enforces the symlink policy on the target path using
// metadata that does not follow links. A missing target is fine.
func checkTargetSymlink(path string, follow bool) error {
	if follow {
		return nil
	}
	fi, err := os.Lstat(path)
	if err != nil {
		return nil
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return &SymlinkError{Path: path}
	}
	return nil
}

// tempName is the os.CreateTemp pattern for the sibling temp file. The
// leading dot keeps partially-written files out of most directory listings,
// and the fixed infix keeps the name from ever matching the lock or backup
// grammars, so the housekeeper will not classify a stray temp file.
func tempName(base string) string {
	return "." + base + ".mutx-tmp-*"
}
