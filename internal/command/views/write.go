// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package views

import "fmt"

// The Write view reports progress of a write operation. All of its output
// is informational and only rendered when the user asked for verbosity;
// the write command's contract is silence on success.
type Write interface {
	LockAcquired(path string)
	BackupCreated(path string)
	Completed(path string)
}

// NewWrite returns a Write view; with verbose unset every method is a
// no-op.
func NewWrite(view *View, verbose bool) Write {
	if !verbose {
		return &writeQuiet{}
	}
	return &writeHuman{view: view}
}

type writeHuman struct {
	view *View
}

var _ Write = (*writeHuman)(nil)

func (v *writeHuman) LockAcquired(path string) {
	v.view.info(fmt.Sprintf("Lock acquired: %s", path))
}

func (v *writeHuman) BackupCreated(path string) {
	v.view.info(fmt.Sprintf("Backup created: %s", path))
}

func (v *writeHuman) Completed(path string) {
	v.view.info(fmt.Sprintf("Write completed: %s", path))
}

type writeQuiet struct{}

var _ Write = (*writeQuiet)(nil)

func (v *writeQuiet) LockAcquired(string)  {}
func (v *writeQuiet) BackupCreated(string) {}
func (v *writeQuiet) Completed(string)     {}
