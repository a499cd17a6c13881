// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/ManuGH/buildcfg/internal/buildcfg"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

func newValidateCmd(o *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [glob...]",
		Short: "Validate configuration files",
		Long: `Validate the configuration given by --file, or every file matched by the
glob patterns (doublestar syntax, e.g. "configs/**/*.py").`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := []string{o.file}
			if len(args) > 0 {
				var err error
				if paths, err = expandGlobs(args); err != nil {
					return err
				}
			}

			failed := 0
			for _, path := range paths {
				if _, err := o.loadWith(o.newLoader(path)); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", path)
			}
			if failed > 0 {
				return configErr(fmt.Errorf("%d of %d configuration files invalid", failed, len(paths)))
			}
			return nil
		},
	}
}

// expandGlobs resolves every pattern to existing files, sorted and deduplicated.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, usageErr(fmt.Errorf("bad pattern %q: %w", pattern, err))
		}
		if len(matches) == 0 {
			return nil, configErr(fmt.Errorf("no files match %q", pattern))
		}
		for _, m := range matches {
			if _, dup := seen[m]; !dup {
				seen[m] = struct{}{}
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func parseFormat(s string) (buildcfg.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kv", "py", "":
		return buildcfg.FormatKeyValue, nil
	case "yaml", "yml":
		return buildcfg.FormatYAML, nil
	case "json":
		return buildcfg.FormatJSON, nil
	default:
		return "", usageErr(fmt.Errorf("unknown format %q (want kv, yaml or json)", s))
	}
}

func newDumpCmd(o *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration (defaults + file + env)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			res, err := o.loadWith(o.newLoader(o.file))
			if err != nil {
				return err
			}
			for _, env := range res.EnvKeys {
				fmt.Fprintf(cmd.ErrOrStderr(), "using %s from the environment\n", env)
			}
			out, err := buildcfg.Encode(res.Config, f)
			if err != nil {
				return configErr(err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "kv", "output format: kv, yaml or json")
	return cmd
}

func newInitCmd(o *globalOptions) *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with every key at its default",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := output
			if path == "" {
				path = o.file
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return configErr(fmt.Errorf("%s already exists (use --force to overwrite)", path))
				} else if !errors.Is(err, fs.ErrNotExist) {
					return configErr(err)
				}
			}
			if err := buildcfg.NewManager(path).Save(buildcfg.Defaults()); err != nil {
				return configErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: --file)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newDiffCmd(_ *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Show which keys differ and whether a rebuild is required",
		Long: `Compare two configuration files. Environment overrides are not applied and
LLVM binaries are not resolved, so files for other hosts can be compared.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := parseFile(args[0])
			if err != nil {
				return err
			}
			next, err := parseFile(args[1])
			if err != nil {
				return err
			}
			summary, err := buildcfg.Diff(old, next)
			if err != nil {
				return configErr(err)
			}

			w := cmd.OutOrStdout()
			if !summary.Changed() {
				fmt.Fprintln(w, "no changes")
				return nil
			}
			registry, err := buildcfg.GetRegistry()
			if err != nil {
				return configErr(err)
			}
			inert := make(map[string]bool, len(summary.InertKeys))
			for _, k := range summary.InertKeys {
				inert[k] = true
			}
			for _, key := range summary.ChangedKeys {
				ov, _ := registry.Value(old, key)
				nv, _ := registry.Value(next, key)
				suffix := ""
				if inert[key] {
					suffix = " (inert)"
				}
				fmt.Fprintf(w, "%s: %v -> %v%s\n", key, display(ov), display(nv), suffix)
			}
			if summary.RebuildRequired {
				fmt.Fprintln(w, "rebuild required: yes")
			} else {
				fmt.Fprintln(w, "rebuild required: no")
			}
			return nil
		},
	}
}

func parseFile(path string) (buildcfg.BuildConfiguration, error) {
	// #nosec G304 -- paths are CLI arguments
	data, err := os.ReadFile(path)
	if err != nil {
		return buildcfg.BuildConfiguration{}, configErr(err)
	}
	cfg, err := buildcfg.Parse(data, buildcfg.FormatForPath(path))
	if err != nil {
		return buildcfg.BuildConfiguration{}, configErr(fmt.Errorf("%s: %w", path, err))
	}
	return cfg, nil
}

func display(v any) string {
	switch v := v.(type) {
	case string:
		if v == "" {
			return "(unset)"
		}
		return v
	case bool:
		if v {
			return "on"
		}
		return "off"
	default:
		return fmt.Sprint(v)
	}
}
