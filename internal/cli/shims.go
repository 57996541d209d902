// Package cli — shims.go implements the "devshell shims" command.
//
// The shims command installs (or reinstalls) the wrapper scripts
// without touching the env file or the virtual environment. It is the
// targeted repair tool for a bin directory that drifted — the full
// bootstrap remains `devshell up`.
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

// shimsFlags holds the flag values for the shims command.
type shimsFlags struct {
	binDir string // --bin-dir: override the manifest's bin directory
}

// NewShimsCommand creates the "shims" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewShimsCommand() *cobra.Command {
	flags := &shimsFlags{}

	cmd := &cobra.Command{
		Use:   "shims",
		Short: "Install the wrapper scripts",
		Long: `Install the wrapper scripts declared by the manifest into the local
bin directory.

Each wrapper forwards all of its arguments to its target Python script.
When the virtual environment exists, the wrappers invoke its interpreter
directly, so no activate step is needed. The install is idempotent.

Examples:
  devshell shims
  devshell shims --bin-dir bin`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runShims(flags)
		},
	}

	cmd.Flags().StringVar(&flags.binDir, "bin-dir", "", "Wrapper install directory (default: manifest binDir)")

	return cmd
}

// runShims resolves the manifest and installs the wrappers.
func runShims(flags *shimsFlags) error {
	root, err := filepath.Abs(ProjectRoot())
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project root", err)
	}

	m, _, err := manifest.Resolve(root)
	if err != nil {
		return err
	}
	if flags.binDir != "" {
		m.BinDir = flags.binDir
	}

	binDir := resolvePath(root, m.BinDir)

	// Prefer the venv interpreter when one is provisioned; otherwise a
	// system interpreter. "python3" is the last resort so a missing
	// interpreter does not block installing the wrappers themselves.
	vm := venv.NewManager(root, m.VenvDir, "")
	interpreter := ""
	if vm.Exists() {
		interpreter = vm.Python()
	} else if python, findErr := venv.FindInterpreter(m.Python); findErr == nil {
		interpreter = python
	} else {
		output.Warn("no python interpreter found, wrappers will use python3 from PATH")
	}

	installer := shim.NewInstaller(binDir, interpreter)
	results, err := installer.Install(absoluteTargets(root, m.Shims))
	if err != nil {
		return err
	}

	printShimsResult(binDir, results)
	return nil
}

// printShimsResult outputs the shims command results in text or JSON format.
func printShimsResult(binDir string, results []model.ShimResult) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(results, "", "  ")
		output.Println(string(data))
		return
	}

	if len(results) == 0 {
		output.Println("No wrappers declared by the manifest.")
		return
	}

	output.Println(fmt.Sprintf("Installed %d wrapper(s) into %s", len(results), binDir))
	for _, r := range results {
		status := "unchanged"
		if r.Changed {
			status = "written"
		}
		output.Println(fmt.Sprintf("  %-8s %s  (%s)",
			r.Name, output.StyleNoun.Render(r.Target), output.StyleDim.Render(status)))
	}
}
