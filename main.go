// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-shellwords"

	"github.com/hashicorp/mutx/internal/command"
	"github.com/hashicorp/mutx/internal/logging"
	"github.com/hashicorp/mutx/version"
)

const (
	// EnvCLI is the environment variable name to set additional CLI args.
	EnvCLI = "MUTX_CLI_ARGS"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	// The std log package is routed into the leveled sink so that stray
	// log calls from dependencies respect MUTX_LOG too.
	log.SetFlags(0)
	log.SetOutput(logging.LogOutput())

	logger := logging.HCLogger()
	logger.Info("mutx version", "version", version.String())
	logger.Debug("CLI args", "args", os.Args)

	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	binName := filepath.Base(os.Args[0])
	args := os.Args[1:]

	// Build the CLI so far, we do this so we can query the subcommand.
	cliRunner := &cli.CLI{
		Args:     args,
		Commands: Commands,
	}

	// Prefix the args with any args from the EnvCLI
	args, err := mergeEnvArgs(EnvCLI, cliRunner.Subcommand(), args)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	// We shortcut "--version" and "-v" to just show the version. Only a
	// bare flag qualifies: "-v" with other arguments is the write
	// command's verbose shorthand.
	if len(args) == 1 && (args[0] == "-v" || args[0] == "-version" || args[0] == "--version") {
		args = []string{"version"}
	}

	// "write" is the implicit command: a leading argument that isn't a
	// known subcommand is taken as the OUTPUT of a write, so
	// "mutx /etc/motd" and "mutx write /etc/motd" are the same
	// invocation.
	args = defaultToWrite(args)

	shutdownCh := makeShutdownCh()

	// Color is enabled only when stdout is a real terminal; -no-color
	// can still switch it off per command.
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	meta := command.Meta{
		Ui:         ui,
		Color:      color,
		ShutdownCh: shutdownCh,
	}
	Commands = initCommands(meta)

	// Rebuild the CLI with any modified args.
	logger.Debug("CLI command args", "args", args)
	cliRunner = &cli.CLI{
		Name:       binName,
		Version:    version.String(),
		Args:       args,
		Commands:   Commands,
		HelpFunc:   helpFunc,
		HelpWriter: os.Stdout,

		Autocomplete:          true,
		AutocompleteInstall:   "install-autocomplete",
		AutocompleteUninstall: "uninstall-autocomplete",
	}

	exitCode, err := cliRunner.Run()
	if err != nil {
		ui.Error(fmt.Sprintf("Error executing CLI: %s", err.Error()))
		return 1
	}

	return exitCode
}

// defaultToWrite prepends the "write" subcommand when the arguments don't
// already start with a known subcommand or look like a help/autocomplete
// request.
func defaultToWrite(args []string) []string {
	if len(args) == 0 {
		return args
	}

	first := args[0]
	switch {
	case strings.HasPrefix(first, "-"):
		// A leading flag belongs to the implicit write, except for the
		// help request which should show the top-level help and the
		// autocomplete (un)install flags handled by the CLI runner.
		switch strings.TrimLeft(first, "-") {
		case "h", "help", "install-autocomplete", "uninstall-autocomplete":
			return args
		}
	case first == "write", first == "housekeep", first == "version":
		return args
	case first == "install-autocomplete", first == "uninstall-autocomplete":
		return args
	}

	return append([]string{"write"}, args...)
}

// makeShutdownCh creates an interrupt listener and returns a channel that
// receives a message every time an interrupt-style signal is received.
func makeShutdownCh() <-chan struct{} {
	resultCh := make(chan struct{})

	signalCh := make(chan os.Signal, 4)
	signal.Notify(signalCh, interruptSignals...)
	go func() {
		for {
			<-signalCh
			resultCh <- struct{}{}
		}
	}()

	return resultCh
}

func mergeEnvArgs(envName string, cmd string, args []string) ([]string, error) {
	v := os.Getenv(envName)
	if v == "" {
		return args, nil
	}

	logging.HCLogger().Debug("extra CLI args from environment", "variable", envName, "value", v)
	extra, err := shellwords.Parse(v)
	if err != nil {
		return nil, fmt.Errorf(
			"Error parsing extra CLI args from %s: %s",
			envName, err)
	}

	// Find the command to look for in the args. If there is a space,
	// we need to find the last part.
	search := cmd
	if idx := strings.LastIndex(search, " "); idx >= 0 {
		search = cmd[idx+1:]
	}

	// Find the index to place the flags. We put them exactly
	// after the first non-flag arg.
	idx := -1
	for i, v := range args {
		if v == search {
			idx = i
			break
		}
	}

	// idx points to the exact arg that isn't a flag. We increment
	// by one so that all the copying below expects idx to be the
	// insertion point.
	idx++

	// Copy the args
	newArgs := make([]string, len(args)+len(extra))
	copy(newArgs, args[:idx])
	copy(newArgs[idx:], extra)
	copy(newArgs[len(extra)+idx:], args[idx:])
	return newArgs, nil
}
