// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldEvent     = "event"

	// Configuration fields
	FieldPath   = "path"
	FieldKey    = "key"
	FieldEnv    = "env"
	FieldSource = "source"
	FieldFormat = "format"

	// Toolchain fields
	FieldTool      = "tool"
	FieldTarget    = "build_target"
	FieldToolchain = "toolchain"
)
