// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"os"

	"github.com/juju/cmd/v4"
)

const (
	// exitErr is returned when the command has been run in an
	// invalid way.
	exitErr = 2
	// exitPanic is returned when we exit due to an unhandled panic.
	exitPanic = 3
)

// Main runs the hook command and returns the process exit code.
func Main(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "error: panic running hook: %v\n", r)
			code = exitPanic
		}
	}()
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitErr
	}
	return cmd.Main(newHookCommand(), ctx, args[1:])
}

func main() {
	os.Exit(Main(os.Args))
}
