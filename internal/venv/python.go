// Package venv provisions the Python virtual environment declared by
// the manifest.
//
// This package wraps the Python CLI (via os/exec) to locate an
// interpreter, create the venv with `python -m venv`, and install the
// declared package set with the venv's own pip.
//
// Design decisions:
//   - We shell out to python/pip rather than reimplementing any part of
//     the packaging toolchain: venv layout and pip resolution are moving
//     targets and the interpreter is the single source of truth.
//   - A small YAML state file records what was provisioned so re-runs
//     can skip pip when nothing changed (idempotent bootstrap).
//   - All errors from subprocesses are wrapped in model.CLIError with
//     ExitVenvFailed (or ExitPythonNotFound for discovery) to enable
//     proper CLI exit code handling.
package venv

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/devshell/internal/model"
)

// InterpreterCandidates returns the executable names to try for the
// given version hint, most specific first. A hint of "3.11" yields
// python3.11, then python3, then python; an empty hint yields just the
// generic fallbacks.
func InterpreterCandidates(hint string) []string {
	var candidates []string
	if hint != "" {
		candidates = append(candidates, "python"+hint)
		// A multi-part hint also tries the major-version executable
		// ("3.11" → python3) before the bare fallback.
		if major, _, found := strings.Cut(hint, "."); found && major != "" {
			candidates = append(candidates, "python"+major)
		}
	}
	candidates = append(candidates, "python3", "python")

	// Dedup while preserving order; a hint of "3" already produced
	// python3 above.
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// FindInterpreter locates a Python interpreter on PATH, preferring an
// executable matching the version hint. Returns the resolved absolute
// path.
//
// Returns a CLIError with ExitPythonNotFound when no candidate exists.
func FindInterpreter(hint string) (string, error) {
	candidates := InterpreterCandidates(hint)
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", model.NewCLIError(model.ExitPythonNotFound,
		fmt.Sprintf("no python interpreter found on PATH (tried: %s)", strings.Join(candidates, ", ")))
}

// Version returns the version string reported by the given interpreter
// (e.g., "3.11.9").
func Version(python string) (string, error) {
	// `python --version` prints to stdout on modern interpreters
	// (stderr on some very old 2.x ones, which we do not support).
	out, err := runPython("", python, "--version")
	if err != nil {
		return "", err
	}
	return ParseVersionOutput(out), nil
}

// ParseVersionOutput extracts the bare version number from
// `python --version` output ("Python 3.11.9" → "3.11.9"). Unexpected
// output is returned trimmed as-is so it still surfaces in status
// output rather than being swallowed.
func ParseVersionOutput(out string) string {
	trimmed := strings.TrimSpace(out)
	if rest, found := strings.CutPrefix(trimmed, "Python "); found {
		return rest
	}
	return trimmed
}

// runPython executes the given interpreter with args and returns its
// stdout output.
//
// It captures stdout and stderr separately. On failure it returns a
// model.CLIError with ExitVenvFailed, including the stderr output in
// the error message for debugging. The dir parameter sets the working
// directory; empty means the current directory.
func runPython(dir, python string, args ...string) (string, error) {
	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command(python, args...)
	cmd.Dir = dir

	// Capture stdout and stderr separately so we can include stderr
	// in error messages while returning stdout on success.
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("%s %s failed", python, strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitVenvFailed, message, err)
	}

	return stdout.String(), nil
}
