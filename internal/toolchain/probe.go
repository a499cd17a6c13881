// SPDX-License-Identifier: MIT

package toolchain

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	buildlog "github.com/ManuGH/buildcfg/internal/log"
	"github.com/ManuGH/buildcfg/internal/procgroup"
	"golang.org/x/sync/errgroup"
)

// DefaultProbeTimeout bounds each `--version` call.
const DefaultProbeTimeout = 5 * time.Second

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command on the host in its own process group, so a
// timed-out driver takes its children down with it.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return procgroup.CommandContext(ctx, name, args...).CombinedOutput()
}

// ToolVersion is the probe result for one command.
type ToolVersion struct {
	Command string   `json:"command"`
	Roles   []string `json:"roles"`
	Version string   `json:"version,omitempty"`
	Err     error    `json:"-"`
}

// Probe runs `<tool> --version` for every distinct command in the plan
// concurrently and returns one result per command, sorted by command. The
// returned error joins every failure; results are complete either way.
func Probe(ctx context.Context, plan Plan, run Runner, timeout time.Duration) ([]ToolVersion, error) {
	if run == nil {
		run = ExecRunner
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	logger := buildlog.WithComponent("toolchain.probe")

	byCommand := make(map[string][]string)
	for role, cmd := range plan.Tools() {
		byCommand[cmd] = append(byCommand[cmd], role)
	}
	results := make([]ToolVersion, 0, len(byCommand))
	for cmd, roles := range byCommand {
		sort.Strings(roles)
		results = append(results, ToolVersion{Command: cmd, Roles: roles})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Command < results[j].Command })

	var g errgroup.Group
	for i := range results {
		r := &results[i]
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			out, err := run(tctx, r.Command, "--version")
			if err != nil {
				r.Err = fmt.Errorf("%s (%s): %w", r.Command, strings.Join(r.Roles, ","), err)
				logger.Warn().Err(err).Str(buildlog.FieldTool, r.Command).Msg("tool probe failed")
				return nil
			}
			r.Version = firstLine(out)
			logger.Debug().Str(buildlog.FieldTool, r.Command).Str("version", r.Version).Msg("tool probed")
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

func firstLine(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}
