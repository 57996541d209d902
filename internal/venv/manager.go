package venv

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/shinji-kodama/devshell/internal/model"
)

// Manager provisions and inspects a single virtual environment.
type Manager struct {
	// Root is the project root directory. Relative venv and state
	// paths are resolved against it.
	Root string

	// Dir is the virtual environment directory, relative to Root
	// unless absolute.
	Dir string

	// StatePath is the provisioning record, relative to Root unless
	// absolute. Defaults to .devshell/state.yaml.
	StatePath string
}

// NewManager creates a Manager for the venv directory declared by the
// manifest. An empty statePath uses the standard location.
func NewManager(root, dir, statePath string) *Manager {
	if statePath == "" {
		statePath = filepath.Join(".devshell", "state.yaml")
	}
	return &Manager{Root: root, Dir: dir, StatePath: statePath}
}

// VenvDir returns the absolute virtual environment directory.
func (m *Manager) VenvDir() string {
	return m.abs(m.Dir)
}

// Python returns the path of the interpreter inside the virtual
// environment. The layout differs between POSIX (bin/python) and
// Windows (Scripts/python.exe).
func (m *Manager) Python() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(m.VenvDir(), "Scripts", "python.exe")
	}
	return filepath.Join(m.VenvDir(), "bin", "python")
}

// Exists reports whether the venv directory holds a usable virtual
// environment: the interpreter and the pyvenv.cfg marker both present.
func (m *Manager) Exists() bool {
	if _, err := os.Stat(m.Python()); err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(m.VenvDir(), "pyvenv.cfg")); err != nil {
		return false
	}
	return true
}

// Create builds the virtual environment with `python -m venv`. The
// parent directory is created first so a nested venv path works.
func (m *Manager) Create(python string) error {
	dir := m.VenvDir()
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return model.WrapCLIError(model.ExitVenvFailed,
			fmt.Sprintf("failed to create parent directory for %s", dir), err)
	}
	_, err := runPython(m.Root, python, "-m", "venv", dir)
	return err
}

// PipArgs builds the argument list for installing the given package
// set with the venv's pip. Exposed for testing; returns nil when there
// is nothing to install.
func PipArgs(packages []string) []string {
	if len(packages) == 0 {
		return nil
	}
	args := []string{"-m", "pip", "install", "--disable-pip-version-check"}
	return append(args, packages...)
}

// InstallPackages installs the package set into the virtual
// environment using its own interpreter, so packages land inside the
// venv regardless of the caller's environment. A nil or empty set is
// a no-op.
func (m *Manager) InstallPackages(packages []string) error {
	args := PipArgs(packages)
	if args == nil {
		return nil
	}
	_, err := runPython(m.Root, m.Python(), args...)
	return err
}

// Ensure brings the virtual environment to the declared state: creates
// it when absent and runs pip when the recorded package set differs
// from the manifest's. The provisioning record is updated afterwards.
//
// Returns the interpreter version and whether any work was performed.
func (m *Manager) Ensure(python string, packages []string) (version string, changed bool, err error) {
	version, err = Version(python)
	if err != nil {
		return "", false, err
	}

	if !m.Exists() {
		if err := m.Create(python); err != nil {
			return version, false, err
		}
		changed = true
	}

	state, _ := m.LoadState()
	if changed || state == nil || !SamePackageSet(state.Packages, packages) || state.PythonVersion != version {
		if err := m.InstallPackages(packages); err != nil {
			return version, changed, err
		}
		if err := m.SaveState(version, packages); err != nil {
			return version, true, err
		}
		changed = true
	}

	return version, changed, nil
}

// State reports the provisioning state of the virtual environment
// against the declared package set: absent when no venv exists, stale
// when the provisioning record is missing or disagrees with the
// manifest, ready otherwise.
func (m *Manager) State(pythonVersionHint string, packages []string) model.ComponentState {
	if !m.Exists() {
		return model.StateAbsent
	}

	state, err := m.LoadState()
	if err != nil || state == nil {
		return model.StateStale
	}
	if !SamePackageSet(state.Packages, packages) {
		return model.StateStale
	}
	if pythonVersionHint != "" && !versionMatchesHint(state.PythonVersion, pythonVersionHint) {
		return model.StateStale
	}
	return model.StateReady
}

// Remove deletes the virtual environment directory and the
// provisioning record. Missing paths are ignored.
func (m *Manager) Remove() error {
	if err := os.RemoveAll(m.VenvDir()); err != nil {
		return model.WrapCLIError(model.ExitVenvFailed,
			fmt.Sprintf("failed to remove venv %s", m.VenvDir()), err)
	}
	if err := os.Remove(m.abs(m.StatePath)); err != nil && !os.IsNotExist(err) {
		return model.WrapCLIError(model.ExitVenvFailed,
			fmt.Sprintf("failed to remove state file %s", m.StatePath), err)
	}
	return nil
}

// SamePackageSet compares two package lists as sets, ignoring order
// and duplicates. Entries are compared verbatim, so "tqdm" and
// "tqdm>=4.66" are different declarations.
func SamePackageSet(a, b []string) bool {
	return equalSorted(dedupSorted(a), dedupSorted(b))
}

// versionMatchesHint reports whether a full interpreter version
// ("3.11.9") satisfies a version hint ("3.11", "3").
func versionMatchesHint(version, hint string) bool {
	if version == hint {
		return true
	}
	return len(version) > len(hint) && version[:len(hint)] == hint && version[len(hint)] == '.'
}

func dedupSorted(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func equalSorted(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// abs resolves path against the project root unless already absolute.
func (m *Manager) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Root, path)
}
