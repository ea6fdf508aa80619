// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"fmt"

	"github.com/hashicorp/cli"
	"github.com/mitchellh/colorstring"

	"github.com/hashicorp/mutx/internal/command/views"
	"github.com/hashicorp/mutx/internal/diags"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	// Ui is the Ui for outputting information to the user.
	Ui cli.Ui

	// Color is true if the output should be colorized.
	Color bool

	// ShutdownCh is closed (or receives) when the process gets a fatal
	// signal. Commands with long-running work select on it so that an
	// interrupt maps to the Interrupted exit code instead of an abrupt
	// kill mid-operation.
	ShutdownCh <-chan struct{}

	// color is the reconciled color setting after processing -no-color.
	color bool
}

// Colorize returns the colorization structure for a command.
func (m *Meta) Colorize() *colorstring.Colorize {
	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !m.color,
		Reset:   true,
	}
}

// View returns the base view for a command, to be wrapped by the
// command-specific views in the views package.
func (m *Meta) View() *views.View {
	return views.NewView(m.Ui, m.Colorize())
}

// process will process the meta-parameters out of the arguments. This
// will potentially modify the args in-place. It will return the resulting
// slice.
func (m *Meta) process(args []string) []string {
	m.color = m.Color

	for i, v := range args {
		if v == "-no-color" || v == "--no-color" {
			m.color = false
			return append(args[:i], args[i+1:]...)
		}
	}

	return args
}

// showDiagnostics displays error and warning messages in the UI. Errors
// go to stderr prefixed with "Error:"; warnings likewise with "Warning:".
func (m *Meta) showDiagnostics(vals ...interface{}) {
	var diagnostics diags.Diagnostics
	diagnostics = diagnostics.Append(vals...)

	for _, diag := range diagnostics {
		msg := diag.Summary()
		if detail := diag.Detail(); detail != "" {
			msg = fmt.Sprintf("%s\n\n%s", msg, detail)
		}

		switch diag.Severity() {
		case diags.Error:
			m.Ui.Error(fmt.Sprintf("Error: %s", msg))
		case diags.Warning:
			m.Ui.Warn(fmt.Sprintf("Warning: %s", msg))
		default:
			m.Ui.Output(msg)
		}
	}
}

// showError displays a single operational error, including any
// security-motivated hint about the opt-in flag that disables the check
// that fired.
func (m *Meta) showError(err error) {
	msg := fmt.Sprintf("Error: %s", err)
	if hint := errorHint(err); hint != "" {
		msg = fmt.Sprintf("%s\n\n%s", msg, hint)
	}
	m.Ui.Error(msg)
}
