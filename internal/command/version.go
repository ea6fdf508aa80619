// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"fmt"
	"strings"

	"github.com/posener/complete"

	"github.com/hashicorp/mutx/version"
)

// VersionCommand is a Command implementation prints the version.
type VersionCommand struct {
	Meta

	Version           string
	VersionPrerelease string
}

func (c *VersionCommand) Run(args []string) int {
	var versionString strings.Builder

	fmt.Fprintf(&versionString, "mutx v%s", c.Version)
	if c.VersionPrerelease != "" {
		fmt.Fprintf(&versionString, "-%s", c.VersionPrerelease)
	}

	c.Ui.Output(versionString.String())
	return ExitSuccess
}

func (c *VersionCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *VersionCommand) AutocompleteFlags() complete.Flags {
	return nil
}

func (c *VersionCommand) Help() string {
	helpText := `
Usage: mutx [global options] version

  Displays the version of mutx.

`
	return strings.TrimSpace(helpText)
}

func (c *VersionCommand) Synopsis() string {
	return fmt.Sprintf("Show the current mutx version (%s)", version.String())
}
