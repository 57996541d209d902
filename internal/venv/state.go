package venv

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/devshell/internal/model"
)

// State is the provisioning record persisted next to the generated
// artifacts. It captures what the last successful bootstrap installed,
// so subsequent runs can skip pip when nothing changed.
type State struct {
	// PythonVersion is the interpreter version the venv was built with.
	PythonVersion string `yaml:"pythonVersion"`

	// Packages is the package set installed into the venv, verbatim
	// from the manifest.
	Packages []string `yaml:"packages"`

	// ProvisionedAt is when the record was written.
	ProvisionedAt time.Time `yaml:"provisionedAt"`
}

// LoadState reads the provisioning record. A missing file returns
// (nil, nil) — the venv has simply never been recorded, which callers
// treat as stale.
func (m *Manager) LoadState() (*State, error) {
	path := m.abs(m.StatePath)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file %s: %w", path, err)
	}

	state := &State{}
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	return state, nil
}

// SaveState writes the provisioning record, creating its directory on
// demand.
func (m *Manager) SaveState(pythonVersion string, packages []string) error {
	state := &State{
		PythonVersion: pythonVersion,
		Packages:      packages,
		ProvisionedAt: time.Now().UTC(),
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return model.WrapCLIError(model.ExitVenvFailed, "failed to encode state file", err)
	}

	path := m.abs(m.StatePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.WrapCLIError(model.ExitVenvFailed,
			fmt.Sprintf("failed to create state directory for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return model.WrapCLIError(model.ExitVenvFailed,
			fmt.Sprintf("failed to write state file %s", path), err)
	}
	return nil
}
