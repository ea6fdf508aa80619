// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/posener/complete"

	"github.com/hashicorp/mutx/internal/atomicfile"
	"github.com/hashicorp/mutx/internal/backup"
	"github.com/hashicorp/mutx/internal/command/arguments"
	"github.com/hashicorp/mutx/internal/command/views"
	"github.com/hashicorp/mutx/internal/flock"
	"github.com/hashicorp/mutx/internal/lockpath"
	"github.com/hashicorp/mutx/internal/logging"
)

// interruptGrace is how long Run waits for an interrupted write to unwind
// (release the lock, remove its temp file) before giving up and returning
// anyway.
const interruptGrace = 2 * time.Second

// WriteCommand is a Command implementation that atomically replaces a file
// with content from stdin or an input file, serialized against other
// writers through a lock file.
type WriteCommand struct {
	Meta
}

func (c *WriteCommand) Run(rawArgs []string) int {
	args := c.Meta.process(rawArgs)

	parsed, parseDiags := arguments.ParseWrite(args)
	if parseDiags.HasErrors() {
		c.showDiagnostics(parseDiags)
		return ExitError
	}

	view := views.NewWrite(c.Meta.View(), parsed.Verbose)

	// The operation runs in its own goroutine so that a fatal signal can
	// cancel it and still map onto the Interrupted exit code. All the
	// potentially long suspensions (lock wait, stdin drain, data copy)
	// happen inside.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- c.doWrite(ctx, parsed, view)
	}()

	select {
	case err := <-doneCh:
		if err != nil {
			c.showError(err)
			return exitCodeForError(err)
		}
		return ExitSuccess

	case <-c.ShutdownCh:
		logging.HCLogger().Named("command").Debug("interrupt received, cancelling write")
		cancel()

		// Give the operation a moment to unwind. A temp file left
		// behind past this point matches neither the lock nor the
		// backup name grammar, so housekeeping can never misclassify
		// it.
		select {
		case <-doneCh:
		case <-time.After(interruptGrace):
		}

		c.Ui.Error("Error: write interrupted")
		return ExitInterrupted
	}
}

// doWrite performs the complete write pipeline: derive lock path, acquire
// the lock, optionally back up the old contents, then atomically replace
// the target. The lock is held across all of it, including the backup, and
// released on every exit path.
func (c *WriteCommand) doWrite(ctx context.Context, parsed *arguments.Write, view views.Write) error {
	output, err := homedir.Expand(parsed.OutputPath)
	if err != nil {
		return err
	}

	// The symlink policy fails the whole operation up front, before the
	// lock is taken or a backup is made; the atomic writer re-checks it
	// closer to the commit.
	if !parsed.FollowSymlinks {
		if fi, err := os.Lstat(output); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			return &atomicfile.SymlinkError{Path: output}
		}
	}

	lockPath, err := c.resolveLockPath(parsed, output)
	if err != nil {
		return err
	}

	lock, err := flock.Acquire(lockPath, lockStrategy(parsed), &flock.Options{
		FollowSymlinks: parsed.FollowLockSymlinks,
	})
	if err != nil {
		return err
	}
	defer lock.Release()
	view.LockAcquired(lock.Path())

	if parsed.Backup {
		backupDir := ""
		if parsed.BackupDir != "" {
			backupDir, err = homedir.Expand(parsed.BackupDir)
			if err != nil {
				return err
			}
		}

		backupPath, err := backup.Create(output, &backup.Spec{
			Suffix:    parsed.BackupSuffix,
			Timestamp: parsed.BackupTimestamp,
			Dir:       backupDir,
		})
		if err != nil {
			return err
		}
		if backupPath != "" {
			view.BackupCreated(backupPath)
		}
	}

	src, closeSrc, err := openInput(parsed.InputPath)
	if err != nil {
		return err
	}
	defer closeSrc()

	mode := atomicfile.Buffered
	if parsed.Streaming {
		mode = atomicfile.Streaming
	}

	err = atomicfile.Replace(ctx, output, src, &atomicfile.Options{
		Mode:           mode,
		FollowSymlinks: parsed.FollowSymlinks,
	})
	if err != nil {
		return err
	}

	view.Completed(output)
	return nil
}

// resolveLockPath returns the lock path for the write: the caller's
// override verbatim (after ~ expansion) or the derived cache path, either
// way validated against colliding with the output itself.
func (c *WriteCommand) resolveLockPath(parsed *arguments.Write, output string) (string, error) {
	if parsed.LockFile != "" {
		lockPath, err := homedir.Expand(parsed.LockFile)
		if err != nil {
			return "", err
		}
		if err := lockpath.Validate(lockPath, output); err != nil {
			return "", err
		}
		return lockPath, nil
	}

	lockPath, err := lockpath.Derive(output)
	if err != nil {
		return "", err
	}
	if err := lockpath.Validate(lockPath, output); err != nil {
		return "", err
	}
	return lockPath, nil
}

// lockStrategy maps the parsed arguments onto a lock acquisition strategy.
func lockStrategy(parsed *arguments.Write) flock.Strategy {
	switch {
	case parsed.NoWait:
		return flock.NoWait()
	case parsed.HasTimeout:
		strategy := flock.Timeout(parsed.Timeout)
		if parsed.HasMaxPollInterval {
			strategy = strategy.WithMaxPollInterval(parsed.MaxPollInterval)
		}
		return strategy
	default:
		return flock.Wait()
	}
}

// openInput returns the byte source for the write: an opened input file,
// or stdin.
func openInput(inputPath string) (io.Reader, func(), error) {
	if inputPath == "" {
		return os.Stdin, func() {}, nil
	}

	path, err := homedir.Expand(inputPath)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func (c *WriteCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*")
}

func (c *WriteCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{
		"-input":                complete.PredictFiles("*"),
		"-stream":               complete.PredictNothing,
		"-no-wait":              complete.PredictNothing,
		"-timeout":              complete.PredictAnything,
		"-max-poll-interval":    complete.PredictAnything,
		"-lock-file":            complete.PredictFiles("*"),
		"-follow-symlinks":      complete.PredictNothing,
		"-follow-lock-symlinks": complete.PredictNothing,
		"-backup":               complete.PredictNothing,
		"-backup-suffix":        complete.PredictAnything,
		"-backup-dir":           complete.PredictDirs("*"),
		"-backup-timestamp":     complete.PredictNothing,
		"-verbose":              complete.PredictNothing,
	}
}

func (c *WriteCommand) Help() string {
	helpText := `
Usage: mutx [global options] write [options] OUTPUT

  Atomically replace the file at OUTPUT with content read from stdin
  (or from -input FILE).

  The new content is staged in a uniquely-named temporary file next to
  OUTPUT, flushed to disk, and renamed into place, so concurrent readers
  see either the old contents in full or the new contents in full.
  Writers cooperating through mutx are serialized per output file by an
  exclusive lock held for the whole operation.

  The "write" subcommand name may be omitted: "mutx OUTPUT" is the same
  command.

Options:

  -input FILE             Read content from FILE instead of stdin.

  -stream                 Copy input chunk-by-chunk with constant memory
                          instead of buffering it. Use for large inputs.

  -no-wait                Fail immediately (exit code 2) if another
                          process holds the lock, instead of waiting.

  -timeout MS             Keep retrying the lock for up to MS
                          milliseconds, then fail with exit code 2.
                          Retries back off exponentially with jitter.

  -max-poll-interval MS   Cap the retry interval used with -timeout.
                          Defaults to 1000.

  -lock-file PATH         Use PATH as the lock file instead of the
                          derived location in the user cache directory.

  -follow-symlinks        Allow OUTPUT to be a symbolic link. Refused by
                          default.

  -follow-lock-symlinks   Allow the lock path to be a symbolic link.
                          Implies -follow-symlinks. Refused by default.

  -backup                 Copy the current contents of OUTPUT to a
                          backup file before replacing it.

  -backup-suffix SUFFIX   Suffix for the backup file name. Defaults to
                          ".mutx.backup".

  -backup-timestamp       Include a timestamp segment in the backup
                          file name.

  -backup-dir DIR         Place the backup in DIR instead of next to
                          OUTPUT. DIR must already exist.

  -verbose                Report lock, backup and commit progress.

`
	return strings.TrimSpace(helpText)
}

func (c *WriteCommand) Synopsis() string {
	return "Atomically replace a file with new content"
}
