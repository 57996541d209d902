// Package cli — clean.go implements the "devshell clean" command.
//
// The clean command removes the artifacts the bootstrap generated: the
// wrapper scripts, the virtual environment, and the provisioning
// record. The manifest and env file are user-authored and are never
// touched.
package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devshell/internal/manifest"
	"github.com/shinji-kodama/devshell/internal/model"
	"github.com/shinji-kodama/devshell/internal/output"
	"github.com/shinji-kodama/devshell/internal/shim"
	"github.com/shinji-kodama/devshell/internal/venv"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	keepVenv bool // --keep-venv: remove wrappers only
}

// NewCleanCommand creates the "clean" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove generated shell artifacts",
		Long: `Remove the artifacts generated by "devshell up": the wrapper scripts,
the virtual environment, and the provisioning record.

The manifest and the .env file are never removed. Cleaning an
already-clean project is a no-op.

Examples:
  devshell clean
  devshell clean --keep-venv`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.keepVenv, "keep-venv", false, "Remove wrappers only, keep the virtual environment")

	return cmd
}

// runClean removes the generated artifacts declared by the manifest.
func runClean(flags *cleanFlags) error {
	root, err := filepath.Abs(ProjectRoot())
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project root", err)
	}

	m, _, err := manifest.Resolve(root)
	if err != nil {
		return err
	}

	binDir := resolvePath(root, m.BinDir)
	installer := shim.NewInstaller(binDir, "")
	if err := installer.Remove(m.Shims); err != nil {
		return err
	}
	output.Debug("wrappers removed", "binDir", binDir)

	vm := venv.NewManager(root, m.VenvDir, "")
	removedVenv := false
	if !flags.keepVenv {
		if vm.Exists() {
			removedVenv = true
		}
		if err := vm.Remove(); err != nil {
			return err
		}
		output.Debug("venv removed", "dir", vm.VenvDir())
	}

	printCleanResult(binDir, vm.VenvDir(), len(m.Shims), removedVenv)
	return nil
}

// printCleanResult outputs the clean command results in text or JSON format.
func printCleanResult(binDir, venvDir string, shimCount int, removedVenv bool) {
	if IsJSONOutput() {
		result := struct {
			BinDir      string `json:"binDir"`
			Shims       int    `json:"shims"`
			VenvDir     string `json:"venvDir,omitempty"`
			VenvRemoved bool   `json:"venvRemoved"`
		}{
			BinDir:      binDir,
			Shims:       shimCount,
			VenvDir:     venvDir,
			VenvRemoved: removedVenv,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		output.Println(string(data))
		return
	}

	output.Println(fmt.Sprintf("Removed %d wrapper(s) from %s", shimCount, binDir))
	if removedVenv {
		output.Println(fmt.Sprintf("Removed virtual environment %s", venvDir))
	}
}
