// Package cli — up.go implements the "devshell up" command.
//
// The up command is the primary user-facing operation. It performs the
// full bootstrap of the development shell described by the manifest.
//
// Orchestration steps:
//  1. Resolve the manifest (descriptor file or built-in defaults)
//  2. Load the .env file into the process environment (warn if absent)
//  3. Locate a Python interpreter and provision the virtual environment
//  4. Install the wrapper scripts into the bin directory
//  5. Output results (text or JSON)
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devshell/internal/envfile"
	"github.com/shinji-kodama/devshell/internal/manifest"
	"github.com/shinji-kodama/devshell/internal/model"
	"github.com/shinji-kodama/devshell/internal/output"
	"github.com/shinji-kodama/devshell/internal/shim"
	"github.com/shinji-kodama/devshell/internal/venv"
)

// upFlags holds the flag values for the up command.
// These are bound to cobra flags in NewUpCommand.
type upFlags struct {
	envFile string // --env-file: override the manifest's env file path
	binDir  string // --bin-dir: override the manifest's bin directory
	noVenv  bool   // --no-venv: skip virtual environment provisioning
}

// NewUpCommand creates the "up" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewUpCommand() *cobra.Command {
	flags := &upFlags{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Bootstrap the development shell",
		Long: `Bootstrap the development shell for the current project.

The command automatically:
  - Loads the project's .env file into the process environment
  - Creates the virtual environment and installs the declared packages
  - Installs the wrapper scripts into the local bin directory

Re-running is idempotent: unchanged wrappers are left untouched and the
package installation is skipped when the declared set has not changed.

Examples:
  devshell up
  devshell up --no-venv
  devshell up --env-file .env.local`,

		// No positional arguments are required for the up command.
		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(flags)
		},
	}

	// Register command-specific flags.
	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Env file to load (default: manifest envFile)")
	cmd.Flags().StringVar(&flags.binDir, "bin-dir", "", "Wrapper install directory (default: manifest binDir)")
	cmd.Flags().BoolVar(&flags.noVenv, "no-venv", false, "Skip virtual environment provisioning")

	return cmd
}

// runUp is the main orchestration function for the up command.
// It coordinates all the steps needed to bootstrap the shell.
func runUp(flags *upFlags) error {
	// Step 1: Resolve the project root and the manifest in effect.
	root, err := filepath.Abs(ProjectRoot())
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project root", err)
	}

	m, found, err := manifest.Resolve(root)
	if err != nil {
		return err
	}
	if found {
		output.Debug("manifest loaded", "path", m.Path)
	} else {
		output.Debug("no manifest found, using built-in defaults", "root", root)
	}

	// Apply flag overrides on top of the manifest.
	if flags.envFile != "" {
		m.EnvFile = flags.envFile
	}
	if flags.binDir != "" {
		m.BinDir = flags.binDir
	}

	result := &model.BootstrapResult{
		Name:      m.Name,
		Packages:  m.Packages,
		BinDir:    resolvePath(root, m.BinDir),
		EnvFile:   resolvePath(root, m.EnvFile),
		VenvState: model.StateAbsent,
	}

	// Step 2: Load the env file into the process environment.
	// A missing file is a warning, not an error (the shell still works,
	// just without project credentials).
	envf, err := envfile.Load(result.EnvFile)
	switch {
	case err == nil:
		for _, line := range envf.Malformed {
			output.Warn("skipping malformed env line", "file", result.EnvFile, "line", line)
		}
		if applyErr := envf.Apply(); applyErr != nil {
			return model.WrapCLIError(model.ExitEnvFileError, "failed to apply environment", applyErr)
		}
		result.EnvLoaded = true
		result.EnvVars = len(envf.Vars)
		output.Debug("env file applied", "file", result.EnvFile, "vars", result.EnvVars)
	case errors.Is(err, fs.ErrNotExist):
		output.Warn("env file not found, continuing without it", "file", result.EnvFile)
	default:
		return model.WrapCLIError(model.ExitEnvFileError,
			fmt.Sprintf("failed to read env file %s", result.EnvFile), err)
	}

	// Step 3: Provision the virtual environment (unless --no-venv).
	// The wrappers default to the system interpreter and switch to the
	// venv's python once one exists, so they run inside the venv
	// without an activate step.
	interpreter := ""
	if !flags.noVenv {
		python, findErr := venv.FindInterpreter(m.Python)
		if findErr != nil {
			return findErr
		}
		output.Debug("interpreter selected", "python", python)

		vm := venv.NewManager(root, m.VenvDir, "")
		version, changed, ensureErr := vm.Ensure(python, m.Packages)
		if ensureErr != nil {
			return ensureErr
		}
		if changed {
			output.Info("virtual environment provisioned", "dir", vm.VenvDir(), "python", version)
		} else {
			output.Debug("virtual environment up to date", "dir", vm.VenvDir())
		}

		interpreter = vm.Python()
		result.Python = python
		result.PythonVersion = version
		result.VenvDir = vm.VenvDir()
		result.VenvState = vm.State(m.Python, m.Packages)
	} else {
		output.Debug("skipping venv provisioning (--no-venv)")
		// --no-venv skips provisioning work, not venv isolation: when a
		// venv already exists the wrappers must keep invoking its
		// interpreter, matching the shims and status commands.
		vm := venv.NewManager(root, m.VenvDir, "")
		if vm.Exists() {
			interpreter = vm.Python()
			result.VenvDir = vm.VenvDir()
			result.VenvState = vm.State(m.Python, m.Packages)
		} else if python, findErr := venv.FindInterpreter(m.Python); findErr == nil {
			interpreter = python
			result.Python = python
		}
	}

	// Step 4: Install the wrapper scripts.
	installer := shim.NewInstaller(result.BinDir, interpreter)
	shims, err := installer.Install(absoluteTargets(root, m.Shims))
	if err != nil {
		return err
	}
	result.Shims = shims
	for _, s := range shims {
		if s.Changed {
			output.Debug("wrapper installed", "name", s.Name, "path", s.Path)
		}
	}

	// Step 5: Output results.
	result.CompletedAt = time.Now().UTC()
	printUpResult(result)
	return nil
}

// resolvePath resolves a manifest path against the project root unless
// it is already absolute.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// absoluteTargets rewrites relative shim targets to absolute paths so
// the wrappers work from any working directory, not just the project
// root.
func absoluteTargets(root string, specs []model.ShimSpec) []model.ShimSpec {
	out := make([]model.ShimSpec, len(specs))
	for i, spec := range specs {
		out[i] = spec
		out[i].Target = resolvePath(root, spec.Target)
	}
	return out
}

// printUpResult outputs the up command results in text or JSON format.
func printUpResult(result *model.BootstrapResult) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		output.Println(string(data))
		return
	}

	output.Println(output.StyleSummary.Render(fmt.Sprintf("Shell %q is ready", result.Name)))
	if result.PythonVersion != "" {
		output.Println(fmt.Sprintf("  Python:  %s (%s)",
			output.StyleNoun.Render(result.PythonVersion), result.Python))
	}
	if result.VenvDir != "" {
		output.Println(fmt.Sprintf("  Venv:    %s", result.VenvDir))
	}
	if result.EnvLoaded {
		output.Println(fmt.Sprintf("  Env:     %s (%d vars)", result.EnvFile, result.EnvVars))
	} else {
		output.Println(fmt.Sprintf("  Env:     %s (not found)", result.EnvFile))
	}

	if len(result.Shims) > 0 {
		output.Println("")
		output.Println("  Commands:")
		for _, s := range result.Shims {
			output.Println(fmt.Sprintf("    %-8s → %s", s.Name, s.Target))
		}
		output.Println("")
		output.Println(output.StyleDim.Render(
			fmt.Sprintf(`  Run eval "$(devshell env --shell)" to put %s on PATH`, result.BinDir)))
	}
}
