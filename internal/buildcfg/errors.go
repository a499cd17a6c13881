// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package buildcfg

import (
	"errors"

	"github.com/ManuGH/buildcfg/internal/validate"
)

var (
	// ErrInvalidConfigurationValue classifies values outside their domain and
	// LLVM binaries that cannot be resolved on the host.
	// Use errors.Is(err, ErrInvalidConfigurationValue) instead of string matching.
	ErrInvalidConfigurationValue = validate.ErrInvalidValue

	// ErrUnknownConfigField classifies strict parse failures caused by unknown keys.
	ErrUnknownConfigField = errors.New("unknown config field")

	// ErrMalformedConfig classifies syntax errors in the configuration file.
	ErrMalformedConfig = errors.New("malformed config file")
)

// InvalidFields returns the keys named by a validation failure, or nil when
// err carries none.
func InvalidFields(err error) []string {
	var ve validate.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields()
	}
	return nil
}
