// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package buildcfg loads, validates and writes the renderer's build
// configuration file (custom.py).
//
// The file is a flat list of key = value assignments. Keys, aliases,
// environment variables and defaults are declared once in the Registry;
// everything else (defaults, decoding, env overrides, serialization,
// generated docs) is driven from it.
//
// Precedence is ENV > File > Defaults. Env overrides are opt-in via
// WithEnvOverrides.
package buildcfg
