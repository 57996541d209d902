// Package cli — status.go implements the "devshell status" command.
//
// The status command inspects the shell without mutating anything:
// which manifest is in effect, whether the env file exists and how many
// variables it defines, which interpreter would be used, and the
// component state of the venv and each wrapper.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devshell/internal/envfile"
	"github.com/shinji-kodama/devshell/internal/manifest"
	"github.com/shinji-kodama/devshell/internal/model"
	"github.com/shinji-kodama/devshell/internal/output"
	"github.com/shinji-kodama/devshell/internal/shim"
	"github.com/shinji-kodama/devshell/internal/venv"
)

// shimStatus is the per-wrapper entry in the status report.
type shimStatus struct {
	Name   string               `json:"name"`
	Target string               `json:"target"`
	State  model.ComponentState `json:"state"`
}

// statusReport is the full status command output, shared between the
// JSON and text renderings.
type statusReport struct {
	Name         string               `json:"name"`
	ManifestPath string               `json:"manifestPath,omitempty"`
	EnvFile      string               `json:"envFile"`
	EnvFileFound bool                 `json:"envFileFound"`
	EnvVars      int                  `json:"envVars"`
	Python       string               `json:"python,omitempty"`
	VenvDir      string               `json:"venvDir"`
	VenvState    model.ComponentState `json:"venvState"`
	BinDir       string               `json:"binDir"`
	Shims        []shimStatus         `json:"shims"`
}

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	// state filters the reported wrappers by their component state.
	// Valid values: "ready", "stale", "absent", "all" (default).
	state string
}

// NewStatusCommand creates the "status" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the development shell",
		Long: `Show the state of every component of the development shell: the
manifest in effect, the env file, the Python interpreter, the virtual
environment, and each wrapper script.

Nothing is modified; run "devshell up" to repair anything reported as
stale or absent.

Examples:
  devshell status
  devshell status --state stale
  devshell status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(flags)
		},
	}

	// Register the --state flag with a default value of "all".
	cmd.Flags().StringVar(&flags.state, "state", "all",
		"Filter wrappers by state: ready, stale, absent, all (default: all)")

	return cmd
}

// runStatus gathers the report and prints it.
func runStatus(flags *statusFlags) error {
	// Validate the --state flag value before doing any work.
	stateFilter := model.ComponentState("")
	if flags.state != "all" {
		parsed, parseErr := model.ParseComponentState(flags.state)
		if parseErr != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("invalid state filter %q: valid values are ready, stale, absent, all", flags.state), nil)
		}
		stateFilter = parsed
	}

	root, err := filepath.Abs(ProjectRoot())
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project root", err)
	}

	m, _, err := manifest.Resolve(root)
	if err != nil {
		return err
	}

	vm := venv.NewManager(root, m.VenvDir, "")
	report := statusReport{
		Name:         m.Name,
		ManifestPath: m.Path,
		EnvFile:      resolvePath(root, m.EnvFile),
		VenvDir:      vm.VenvDir(),
		VenvState:    vm.State(m.Python, m.Packages),
		BinDir:       resolvePath(root, m.BinDir),
	}

	if envf, loadErr := envfile.Load(report.EnvFile); loadErr == nil {
		report.EnvFileFound = true
		report.EnvVars = len(envf.Vars)
	}

	if python, findErr := venv.FindInterpreter(m.Python); findErr == nil {
		report.Python = python
	}

	// Wrapper state is judged against the interpreter the wrappers
	// would be generated with, mirroring the install logic.
	interpreter := ""
	if vm.Exists() {
		interpreter = vm.Python()
	} else if report.Python != "" {
		interpreter = report.Python
	}
	installer := shim.NewInstaller(report.BinDir, interpreter)
	for _, spec := range absoluteTargets(root, m.Shims) {
		state := installer.State(spec)
		if stateFilter != "" && state != stateFilter {
			continue
		}
		report.Shims = append(report.Shims, shimStatus{
			Name:   spec.Name,
			Target: spec.Target,
			State:  state,
		})
	}

	printStatusReport(&report)
	return nil
}

// printStatusReport outputs the report in text or JSON format.
func printStatusReport(report *statusReport) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		output.Println(string(data))
		return
	}

	output.Println(output.StyleSummary.Render(fmt.Sprintf("Shell %q", report.Name)))

	if report.ManifestPath != "" {
		output.Println(fmt.Sprintf("  Manifest:  %s", report.ManifestPath))
	} else {
		output.Println("  Manifest:  " + output.StyleDim.Render("built-in defaults"))
	}

	if report.EnvFileFound {
		output.Println(fmt.Sprintf("  Env file:  %s (%d vars)", report.EnvFile, report.EnvVars))
	} else {
		output.Println(fmt.Sprintf("  Env file:  %s %s", report.EnvFile, output.StyleDim.Render("(not found)")))
	}

	if report.Python != "" {
		output.Println(fmt.Sprintf("  Python:    %s", output.StyleNoun.Render(report.Python)))
	} else {
		output.Println("  Python:    " + output.StateStyle(model.StateAbsent).Render("not found"))
	}

	output.Println(fmt.Sprintf("  Venv:      %s %s",
		renderState(report.VenvState), report.VenvDir))

	for _, s := range report.Shims {
		output.Println(fmt.Sprintf("  Wrapper:   %s %-8s → %s",
			renderState(s.State), s.Name, s.Target))
	}

	// Wrapped in os.Getenv check purely for the hint's usefulness: no
	// point suggesting the eval when the bin dir is already active.
	if shim.PathWith(report.BinDir, os.Getenv("PATH")) != os.Getenv("PATH") {
		output.Println("")
		output.Println(output.StyleDim.Render(`  Hint: eval "$(devshell env --shell)" to activate`))
	}
}

// renderState renders a component state as a colored mark plus label.
func renderState(state model.ComponentState) string {
	style := output.StateStyle(state)
	return style.Render(fmt.Sprintf("%s %-6s", output.StateMark(state), state))
}
