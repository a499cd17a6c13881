// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package buildcfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Manager handles configuration persistence.
type Manager struct {
	configPath string
	perm       os.FileMode
}

// NewManager creates a new configuration manager.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		perm:       0644,
	}
}

// Path returns the file the manager writes.
func (m *Manager) Path() string {
	return m.configPath
}

// Save validates cfg and writes it to disk in the format implied by the file
// extension. The write is atomic: readers see the old file or the new one.
// Nothing is written when validation fails.
func (m *Manager) Save(cfg BuildConfiguration) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}

	data, err := Encode(cfg, FormatForPath(m.configPath))
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	pf, err := renameio.NewPendingFile(m.configPath, renameio.WithPermissions(m.perm))
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() { _ = pf.Cleanup() }()

	if _, err := pf.Write(data); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}
