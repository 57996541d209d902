// Package cli — env.go implements the "devshell env" command.
//
// The env command prints the environment the shell would run with,
// without mutating anything. Three formats are supported: plain
// KEY=VALUE lines (default), eval-able shell export lines (--shell,
// including the PATH prepend for the wrapper bin directory), and JSON
// (--json).
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devshell/internal/envfile"
	"github.com/shinji-kodama/devshell/internal/manifest"
	"github.com/shinji-kodama/devshell/internal/model"
	"github.com/shinji-kodama/devshell/internal/output"
	"github.com/shinji-kodama/devshell/internal/shim"
)

// envFlags holds the flag values for the env command.
type envFlags struct {
	shell   bool   // --shell: emit eval-able export lines with the PATH prepend
	names   bool   // --names: list distinct variable names only
	envFile string // --env-file: override the manifest's env file path
}

// NewEnvCommand creates the "env" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewEnvCommand() *cobra.Command {
	flags := &envFlags{}

	cmd := &cobra.Command{
		Use:   "env [NAME]",
		Short: "Print the shell's environment variables",
		Long: `Print the environment variables the development shell would run with,
as declared by the project's .env file.

The default output is plain KEY=VALUE lines. With --shell the output is
eval-able POSIX export statements, including a PATH prepend for the
wrapper bin directory:

  eval "$(devshell env --shell)"

With a NAME argument, only that variable's value is printed (duplicate
entries resolve to the last one, matching shell sourcing). With --names,
only the distinct variable names are listed.

Examples:
  devshell env
  devshell env --shell
  devshell env --names
  devshell env BOTPRESS_TOKEN
  devshell env --json`,

		// At most one positional argument: the variable name to look up.
		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.shell, "shell", false, "Emit eval-able shell export lines")
	cmd.Flags().BoolVar(&flags.names, "names", false, "List distinct variable names only")
	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Env file to read (default: manifest envFile)")

	return cmd
}

// runEnv loads the env file (without applying it) and prints it in the
// requested format.
func runEnv(flags *envFlags, args []string) error {
	root, err := filepath.Abs(ProjectRoot())
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project root", err)
	}

	m, _, err := manifest.Resolve(root)
	if err != nil {
		return err
	}
	if flags.envFile != "" {
		m.EnvFile = flags.envFile
	}

	envPath := resolvePath(root, m.EnvFile)
	binDir := resolvePath(root, m.BinDir)

	envf, err := envfile.Load(envPath)
	switch {
	case err == nil:
		for _, line := range envf.Malformed {
			output.Warn("skipping malformed env line", "file", envPath, "line", line)
		}
	case errors.Is(err, fs.ErrNotExist):
		// An absent env file still yields useful output: the PATH
		// prepend in --shell mode, and an empty set otherwise.
		output.Warn("env file not found", "file", envPath)
		envf = envfile.Parse(nil)
	default:
		return model.WrapCLIError(model.ExitEnvFileError,
			fmt.Sprintf("failed to read env file %s", envPath), err)
	}

	// A name lookup prints the bare value, suitable for command
	// substitution in scripts.
	if len(args) == 1 {
		value, found := envf.Lookup(args[0])
		if !found {
			return model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("variable %q is not defined in %s", args[0], envPath))
		}
		output.Println(value)
		return nil
	}

	if flags.names {
		for _, name := range envf.Names() {
			output.Println(name)
		}
		return nil
	}

	switch {
	case IsJSONOutput():
		printEnvJSON(envf, binDir)
	case flags.shell:
		output.Print(envf.RenderShell())
		// Skip the PATH line when the bin dir is already on PATH, so
		// repeated evals in the same shell stay idempotent.
		if shim.PathWith(binDir, os.Getenv("PATH")) != os.Getenv("PATH") {
			output.Println("export PATH=" + envfile.ShellQuote(binDir) + `:"$PATH"`)
		}
	default:
		output.Print(envf.RenderPlain())
	}
	return nil
}

// printEnvJSON renders the environment as a JSON object. Duplicate
// names collapse with last-entry-wins semantics, matching Apply.
func printEnvJSON(envf *envfile.File, binDir string) {
	vars := make(map[string]string, len(envf.Vars))
	for _, v := range envf.Vars {
		vars[v.Name] = v.Value
	}

	result := struct {
		EnvFile string            `json:"envFile,omitempty"`
		BinDir  string            `json:"binDir"`
		Vars    map[string]string `json:"vars"`
	}{
		EnvFile: envf.Path,
		BinDir:  binDir,
		Vars:    vars,
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	output.Println(string(data))
}
