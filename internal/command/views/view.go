// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package views renders command results for humans. Commands decide what
// happened; views decide how it reads on a terminal.
package views

import (
	"github.com/hashicorp/cli"
	"github.com/mitchellh/colorstring"
)

// View carries the rendering dependencies shared by the per-command views.
type View struct {
	ui       cli.Ui
	colorize *colorstring.Colorize
}

// NewView constructs a View with the given Ui and color settings.
func NewView(ui cli.Ui, colorize *colorstring.Colorize) *View {
	return &View{
		ui:       ui,
		colorize: colorize,
	}
}

func (v *View) output(msg string) {
	v.ui.Output(v.colorize.Color(msg))
}

func (v *View) info(msg string) {
	v.ui.Info(v.colorize.Color(msg))
}
