// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package toolchain

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/ManuGH/buildcfg/internal/buildcfg"
	"github.com/google/renameio/v2"
)

var headerTemplate = template.Must(template.New("config.h").Parse(`/* Generated by buildcfg from the build configuration. Do not edit. */
#ifndef BUILDCFG_CONFIG_H
#define BUILDCFG_CONFIG_H

#define BUILD_TARGET "{{.Target}}"
#define BUILD_TOOLCHAIN "{{.Toolchain}}"
{{range .Defines}}
#ifndef {{.}}
#define {{.}} 1
#endif
{{end}}
typedef {{.Real}} real_t;

#endif /* BUILDCFG_CONFIG_H */
`))

type headerData struct {
	Target    string
	Toolchain string
	Defines   []string
	Real      string
}

// RenderHeader renders config.h for cfg: the plan's defines plus a real_t
// typedef selected by use_double.
func RenderHeader(cfg buildcfg.BuildConfiguration) ([]byte, error) {
	plan := DeriveFor(cfg, Host{Arch: "amd64", HasSSE2: true})
	var buf bytes.Buffer
	err := headerTemplate.Execute(&buf, headerData{
		Target:    plan.Target,
		Toolchain: plan.Toolchain,
		Defines:   plan.CPPDefines,
		Real:      cfg.Precision(),
	})
	if err != nil {
		return nil, fmt.Errorf("render config.h: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHeader renders config.h and atomically replaces path with it.
func WriteHeader(path string, cfg buildcfg.BuildConfiguration) error {
	data, err := RenderHeader(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("mkdir header dir: %w", err)
	}
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return fmt.Errorf("create pending header: %w", err)
	}
	defer func() { _ = pf.Cleanup() }()

	if _, err := pf.Write(data); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace header: %w", err)
	}
	return nil
}
