// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/ManuGH/buildcfg/internal/buildcfg"
	buildlog "github.com/ManuGH/buildcfg/internal/log"
	"github.com/ManuGH/buildcfg/internal/metrics"
	"github.com/ManuGH/buildcfg/internal/validate"
	"github.com/spf13/cobra"
)

// DefaultConfigFile is read when --file is not given.
const DefaultConfigFile = "custom.py"

type globalOptions struct {
	file            string
	noEnv           bool
	logLevel        string
	metricsTextfile string

	recorder *metrics.Recorder
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *globalOptions) {
	opts := &globalOptions{recorder: metrics.NewRecorder()}

	root := &cobra.Command{
		Use:           "buildcfg",
		Short:         "Load, validate and export the build configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := validate.ParseLogLevel(opts.logLevel); err != nil {
				return usageErr(err)
			}
			buildlog.Reset()
			buildlog.Configure(buildlog.Config{
				Level:   opts.logLevel,
				Output:  stderr,
				Console: true,
			})
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErr(err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.file, "file", "f", DefaultConfigFile, "path to the build configuration file")
	pf.BoolVar(&opts.noEnv, "no-env", false, "ignore "+buildcfg.EnvPrefix+"_* environment overrides")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file when the command finishes")

	root.AddCommand(
		newValidateCmd(opts),
		newDumpCmd(opts),
		newFlagsCmd(opts),
		newHeaderCmd(opts),
		newInitCmd(opts),
		newDiffCmd(opts),
		newProbeCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return root, opts
}

func (o *globalOptions) newLoader(path string) *buildcfg.Loader {
	var opts []buildcfg.Option
	if !o.noEnv {
		opts = append(opts, buildcfg.WithEnvOverrides())
	}
	return buildcfg.NewLoader(path, opts...)
}

// load reads the effective configuration and records the attempt.
func (o *globalOptions) load() (buildcfg.BuildConfiguration, error) {
	res, err := o.loadWith(o.newLoader(o.file))
	return res.Config, err
}

func (o *globalOptions) loadWith(loader *buildcfg.Loader) (buildcfg.LoadResult, error) {
	start := time.Now()
	res, err := loader.LoadDetailed()
	o.recorder.ObserveLoad(err, time.Since(start))
	if err != nil {
		return res, configErr(fmt.Errorf("%s: %w", loader.Path(), err))
	}
	o.recorder.SetConfig(res.Config)
	return res, nil
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageErr(err)
		}
		return nil
	}
}
