// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package lockpath maps an output file path to the canonical path of its
// lock file inside the per-user cache directory.
//
// Two different logical target files must map to two different lock files,
// and the same target must always map to the same lock file regardless of
// how the caller spelled its path. Both properties come from hashing the
// canonicalized path; the human-readable prefix of the lock file name exists
// only so that operators can tell lock files apart when inspecting the
// cache directory.
package lockpath

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/apparentlymart/go-userdirs/userdirs"

	"github.com/hashicorp/mutx/internal/logging"
)

// appName is the directory name used under the platform cache location.
const appName = "mutx"

// forAppDirs is swapped out in tests so that they don't touch the real
// user cache directory.
var forAppDirs = func() userdirs.Dirs {
	return userdirs.ForApp("mutx", "HashiCorp", "com.hashicorp.mutx")
}

// CacheDir returns the directory holding derived lock files, creating it if
// necessary. The directory lives under the platform's standard per-user
// cache location ($XDG_CACHE_HOME or ~/.cache on Linux, ~/Library/Caches on
// macOS, %LOCALAPPDATA% on Windows).
//
// There is deliberately no fallback location: if no cache directory can be
// identified the caller gets a CacheUnavailableError, because silently
// placing lock files somewhere unexpected would break mutual exclusion with
// processes that resolved the real location.
func CacheDir() (string, error) {
	dirs := forAppDirs()
	if dirs.CacheDir == "" {
		return "", &CacheUnavailableError{}
	}

	dir := filepath.Join(dirs.CacheDir, "locks")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &CacheUnavailableError{Dir: dir, Err: err}
	}

	return dir, nil
}

// Derive returns the lock file path for the given output path.
//
// The lock file name follows the grammar
//
//	{initialism}.{parent}.{base}.{hash8}.lock
//
// where initialism is the dot-separated first alphanumeric character of each
// ancestor directory (excluding the immediate parent), parent and base are
// carried over verbatim, and hash8 is the first 8 hex characters of the
// SHA-256 of the canonical path. The hash is what guarantees uniqueness; the
// rest is for humans.
func Derive(outputPath string) (string, error) {
	canonical, err := Canonicalize(outputPath)
	if err != nil {
		return "", err
	}

	if !utf8.ValidString(canonical) {
		return "", &NonUTF8PathError{Path: outputPath}
	}

	cacheDir, err := CacheDir()
	if err != nil {
		return "", err
	}

	name := lockFileName(canonical)
	lockPath := filepath.Join(cacheDir, name)
	logging.HCLogger().Named("lockpath").Debug("derived lock path", "output", canonical, "lock", lockPath)
	return lockPath, nil
}

// Validate checks the invariant that a lock path never equals the output
// path it protects, comparing both after canonicalization. A collision would
// make the atomic rename destroy the lock file mid-operation.
func Validate(lockPath, outputPath string) error {
	lockCanonical, err := Canonicalize(lockPath)
	if err != nil {
		// A lock path that can't be canonicalized (parent missing, etc.)
		// can't collide with an output path that can. Compare as-given.
		lockCanonical = lockPath
	}

	outputCanonical, err := Canonicalize(outputPath)
	if err != nil {
		outputCanonical = outputPath
	}

	if lockCanonical == outputCanonical {
		return &CollisionError{LockPath: lockPath, OutputPath: outputPath}
	}

	return nil
}

// Canonicalize resolves the given path to an absolute path with all
// symlinks and relative elements resolved. The file itself need not exist,
// but its parent directory must: we refuse to invent lock identities for
// directories that aren't there.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	// Fast path: the file already exists.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(abs)
	if _, err := os.Stat(parent); err != nil {
		if os.IsNotExist(err) {
			return "", &PathNotFoundError{Path: parent}
		}
		return "", err
	}

	resolvedParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedParent, filepath.Base(abs)), nil
}

// lockFileName builds the lock file basename for an already-canonical path.
func lockFileName(canonical string) string {
	base := filepath.Base(canonical)

	parent := filepath.Base(filepath.Dir(canonical))
	if parent == string(filepath.Separator) || parent == "." || parent == "" {
		// Target sits directly under the filesystem root.
		parent = "root"
	}

	hash := sha256.Sum256([]byte(canonical))
	hash8 := fmt.Sprintf("%x", hash)[:8]

	parts := initialism(canonical)
	parts = append(parts, parent, base, hash8)
	return strings.Join(parts, ".") + ".lock"
}

// initialism returns the first alphanumeric character of each ancestor
// directory of the canonical path, excluding the immediate parent,
// lower-cased. Paths with two or fewer components have no ancestors and
// yield an empty result.
func initialism(canonical string) []string {
	slashed := filepath.ToSlash(canonical)
	comps := strings.Split(slashed, "/")

	// Drop empty components produced by the leading "/" (and any volume
	// name on Windows has already been folded into the first component).
	nonEmpty := comps[:0:0]
	for _, c := range comps {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}

	if len(nonEmpty) <= 2 {
		return nil
	}

	// Everything before the parent (second-to-last) and base (last).
	ancestors := nonEmpty[:len(nonEmpty)-2]

	var parts []string
	for _, name := range ancestors {
		for _, r := range name {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				parts = append(parts, strings.ToLower(string(r)))
				break
			}
		}
	}
	return parts
}
