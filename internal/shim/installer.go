// Package shim generates the wrapper scripts that expose the project's
// Python entry points as plain commands.
//
// Each wrapper is a two-line POSIX shell script: a shebang line and a
// single exec line that forwards all received arguments to the target
// Python script verbatim. The bin directory is created on demand and
// the install is idempotent — a wrapper whose content already matches
// is left untouched (preserving its mtime), with permissions
// re-asserted to 0755.
package shim

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/devshell/internal/envfile"
	"github.com/shinji-kodama/devshell/internal/model"
)

// execMode is the permission set for generated wrappers and the bin
// directory: world-executable, owner-writable.
const execMode os.FileMode = 0o755

// Installer writes wrapper scripts into a bin directory.
//
// Interpreter is the command the wrappers invoke the target script
// with. When a virtual environment is provisioned this is the venv's
// python binary, so the wrappers run inside the venv without needing
// an activate step.
type Installer struct {
	// BinDir is the directory the wrappers are written into.
	// Created on demand with 0755 permissions.
	BinDir string

	// Interpreter is the python command placed on the wrapper's exec
	// line. Defaults to "python3" when empty.
	Interpreter string
}

// NewInstaller creates an Installer for the given bin directory and
// interpreter. An empty interpreter falls back to "python3".
func NewInstaller(binDir, interpreter string) *Installer {
	if interpreter == "" {
		interpreter = "python3"
	}
	return &Installer{BinDir: binDir, Interpreter: interpreter}
}

// Render returns the wrapper script content for a single spec.
//
// The layout is fixed: shebang, then one exec line. Interpreter and
// target are shell-quoted so paths with spaces survive; `"$@"` forwards
// every argument verbatim, preserving word boundaries.
func (i *Installer) Render(spec model.ShimSpec) string {
	return fmt.Sprintf("#!/bin/sh\nexec %s %s \"$@\"\n",
		envfile.ShellQuote(i.Interpreter),
		envfile.ShellQuote(spec.Target))
}

// Install writes one wrapper per spec into the bin directory, creating
// the directory first if needed. Every spec is validated before any
// file is touched, so a bad spec cannot leave a partial install behind.
//
// Returns one ShimResult per spec. Result.Changed is false when the
// existing wrapper already had identical content.
func (i *Installer) Install(specs []model.ShimSpec) ([]model.ShimResult, error) {
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, model.WrapCLIError(model.ExitShimFailed, "invalid shim spec", err)
		}
	}

	if err := os.MkdirAll(i.BinDir, execMode); err != nil {
		return nil, model.WrapCLIError(model.ExitShimFailed,
			fmt.Sprintf("failed to create bin directory %s", i.BinDir), err)
	}

	results := make([]model.ShimResult, 0, len(specs))
	for _, spec := range specs {
		result, err := i.installOne(spec)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// installOne writes a single wrapper, skipping the write when the
// on-disk content already matches. Permissions are always re-asserted
// so a chmod'ed wrapper heals on the next install.
func (i *Installer) installOne(spec model.ShimSpec) (model.ShimResult, error) {
	path := filepath.Join(i.BinDir, spec.Name)
	content := i.Render(spec)

	result := model.ShimResult{
		Name:   spec.Name,
		Path:   path,
		Target: spec.Target,
	}

	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == content {
		// Identical content: leave the file (and its mtime) alone.
		if chmodErr := os.Chmod(path, execMode); chmodErr != nil {
			return result, model.WrapCLIError(model.ExitShimFailed,
				fmt.Sprintf("failed to set permissions on %s", path), chmodErr)
		}
		return result, nil
	}

	if writeErr := os.WriteFile(path, []byte(content), execMode); writeErr != nil {
		return result, model.WrapCLIError(model.ExitShimFailed,
			fmt.Sprintf("failed to write wrapper %s", path), writeErr)
	}
	// os.WriteFile only applies the mode on creation; re-assert it in
	// case the file pre-existed with different permissions.
	if chmodErr := os.Chmod(path, execMode); chmodErr != nil {
		return result, model.WrapCLIError(model.ExitShimFailed,
			fmt.Sprintf("failed to set permissions on %s", path), chmodErr)
	}

	result.Changed = true
	return result, nil
}

// State reports the provisioning state of a single wrapper: ready when
// the file exists with the expected content and execute permission,
// stale when it exists but differs, absent otherwise.
func (i *Installer) State(spec model.ShimSpec) model.ComponentState {
	path := filepath.Join(i.BinDir, spec.Name)

	info, err := os.Stat(path)
	if err != nil {
		return model.StateAbsent
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return model.StateStale
	}
	if string(content) != i.Render(spec) || info.Mode().Perm()&0o111 == 0 {
		return model.StateStale
	}
	return model.StateReady
}

// Remove deletes the wrappers for the given specs and then the bin
// directory itself if it is empty. Missing wrappers are ignored so
// Remove is safe to run on a clean tree.
func (i *Installer) Remove(specs []model.ShimSpec) error {
	for _, spec := range specs {
		path := filepath.Join(i.BinDir, spec.Name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return model.WrapCLIError(model.ExitShimFailed,
				fmt.Sprintf("failed to remove wrapper %s", path), err)
		}
	}
	// Best-effort directory cleanup; a non-empty directory is left as-is.
	_ = os.Remove(i.BinDir)
	return nil
}

// PathWith returns the value of PATH with binDir prepended. When binDir
// is already a PATH entry the input is returned unchanged, so repeated
// shell initializations do not grow the variable.
func PathWith(binDir, path string) string {
	if path == "" {
		return binDir
	}
	for _, entry := range strings.Split(path, string(os.PathListSeparator)) {
		if entry == binDir {
			return path
		}
	}
	return binDir + string(os.PathListSeparator) + path
}
