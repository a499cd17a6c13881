// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// buildcfg loads, validates and exports the build configuration of a native
// project (custom.py style key = value files).
//
// Usage:
//
//	buildcfg validate [-f custom.py] [glob...]
//	buildcfg dump --format kv|yaml|json
//	buildcfg flags --format env|json
//	buildcfg header -o config.h
//
// Exit codes:
//   - 0: Success
//   - 1: Configuration is invalid (parse, validation or toolchain error)
//   - 2: Usage error
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	exitOK     = 0
	exitConfig = 1
	exitUsage  = 2
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(err error) error  { return &exitError{code: exitUsage, err: err} }
func configErr(err error) error { return &exitError{code: exitConfig, err: err} }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	return runContext(context.Background(), args, stdout, stderr)
}

func runContext(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, opts := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if opts.metricsTextfile != "" {
		if werr := opts.recorder.WriteTextfile(opts.metricsTextfile); werr != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", werr)
		}
	}
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Unknown commands and argument errors come from cobra unclassified.
	return exitUsage
}
