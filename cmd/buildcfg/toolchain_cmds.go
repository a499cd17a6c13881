// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/buildcfg/internal/toolchain"
	"github.com/ManuGH/buildcfg/internal/version"
	"github.com/spf13/cobra"
)

func newFlagsCmd(o *globalOptions) *cobra.Command {
	var (
		format       string
		configHeader bool
	)
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Print the compiler selection and flags for the build tool",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "env" && format != "json" {
				return usageErr(fmt.Errorf("unknown format %q (want env or json)", format))
			}
			cfg, err := o.load()
			if err != nil {
				return err
			}
			plan := toolchain.Derive(cfg)
			if configHeader {
				plan = plan.WithConfigHeader()
			}
			for _, w := range plan.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			for _, kv := range plan.Environ() {
				k, v, _ := strings.Cut(kv, "=")
				fmt.Fprintf(out, "%s=%q\n", k, v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "env", "output format: env or json")
	cmd.Flags().BoolVar(&configHeader, "config-header", false, "add -DHAVE_CONFIG_H for sources built against a generated config.h")
	return cmd
}

func newHeaderCmd(o *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "header",
		Short: "Generate config.h from the configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load()
			if err != nil {
				return err
			}
			if output == "-" {
				data, err := toolchain.RenderHeader(cfg)
				if err != nil {
					return configErr(err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := toolchain.WriteHeader(output, cfg); err != nil {
				return configErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "config.h", "header path, - for stdout")
	return cmd
}

func newProbeCmd(o *globalOptions) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Run --version on every selected tool",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load()
			if err != nil {
				return err
			}
			plan := toolchain.Derive(cfg)
			if len(plan.Tools()) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no tools configured (toolchain defaults)")
				return nil
			}

			results, err := toolchain.Probe(cmd.Context(), plan, toolchain.ExecRunner, timeout)
			for _, r := range results {
				status := r.Version
				if r.Err != nil {
					status = "error: " + r.Err.Error()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-14s %s\n", strings.Join(r.Roles, ","), r.Command, status)
			}
			if err != nil {
				return configErr(err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", toolchain.DefaultProbeTimeout, "per-tool timeout")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
