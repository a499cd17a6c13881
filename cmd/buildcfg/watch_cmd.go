package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/buildcfg/internal/buildcfg"
	"github.com/ManuGH/buildcfg/internal/toolchain"
	"github.com/spf13/cobra"
)

func newWatchCmd(o *globalOptions) *cobra.Command {
	var (
		debounce time.Duration
		header   string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the configuration on change and report what a rebuild needs",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := o.newLoader(o.file)
			res, err := o.loadWith(loader)
			if err != nil {
				return err
			}
			cfg := res.Config

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			holder := buildcfg.NewHolder(cfg, loader)
			holder.SetDebounce(debounce)
			holder.OnLoad(o.recorder.ObserveLoad)
			changes := make(chan buildcfg.Change, 8)
			holder.Subscribe(changes)

			if err := holder.StartWatcher(ctx); err != nil {
				return configErr(err)
			}
			defer holder.Stop()

			if header != "" {
				if err := toolchain.WriteHeader(header, cfg); err != nil {
					return configErr(err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "watching %s (%s, %s)\n", o.file, cfg.BuildTarget, cfg.ToolchainName())
			for {
				select {
				case <-ctx.Done():
					return nil
				case c := <-changes:
					o.recorder.SetConfig(c.New)
					if !c.Summary.Changed() {
						continue
					}
					fmt.Fprintf(out, "changed: %s (rebuild required: %t)\n",
						strings.Join(c.Summary.ChangedKeys, ", "), c.Summary.RebuildRequired)
					if header != "" && c.Summary.RebuildRequired {
						if err := toolchain.WriteHeader(header, c.New); err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "header: %v\n", err)
						}
					}
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", buildcfg.DefaultDebounce, "quiet period before reloading")
	cmd.Flags().StringVar(&header, "header", "", "write this config.h at startup and whenever a rebuild is required")
	return cmd
}
