// Package model defines the domain types for the devshell CLI.
//
// All entities in this package represent the pieces of a bootstrapped
// development shell: wrapper script specifications, component state,
// and the aggregate result of a bootstrap run. These types are used
// throughout the application for passing data between components.
//
// Key design decision: there is no state database. Component state
// (venv present, shims installed) is reconstructed from the filesystem
// at runtime; the only persisted artifact is the small venv state file
// managed by internal/venv.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ComponentState represents the provisioning state of a managed
// component (virtual environment or wrapper script). The transitions are:
//
//	Absent → Ready (after bootstrap)
//	Ready → Stale (manifest changed underneath the artifact)
//	Ready/Stale → Absent (after clean)
type ComponentState string

const (
	// StateReady indicates the component exists and matches the manifest.
	StateReady ComponentState = "ready"

	// StateStale indicates the component exists but no longer matches
	// the manifest (e.g., the package set changed since the venv was
	// provisioned, or a wrapper's target moved).
	StateStale ComponentState = "stale"

	// StateAbsent indicates the component has not been provisioned.
	StateAbsent ComponentState = "absent"
)

// String returns the string representation of ComponentState.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (s ComponentState) String() string {
	return string(s)
}

// IsValid checks whether the ComponentState value is one of the
// predefined valid states.
func (s ComponentState) IsValid() bool {
	switch s {
	case StateReady, StateStale, StateAbsent:
		return true
	default:
		return false
	}
}

// ParseComponentState converts a string to a ComponentState.
// Returns an error if the string does not match any valid state.
func ParseComponentState(s string) (ComponentState, error) {
	state := ComponentState(strings.ToLower(s))
	if !state.IsValid() {
		return "", fmt.Errorf("invalid component state: %q (valid: ready, stale, absent)", s)
	}
	return state, nil
}

// ShimSpec describes a single wrapper script to generate: a command
// name exposed on PATH and the Python script it forwards its arguments
// to. The target path is interpreted relative to the project root
// unless absolute.
type ShimSpec struct {
	// Name is the command name of the wrapper (the generated file name
	// in the bin directory). Must contain only alphanumeric characters
	// and hyphens.
	Name string `json:"name" yaml:"name"`

	// Target is the path of the Python script the wrapper invokes.
	// The wrapper forwards all of its command-line arguments to this
	// script verbatim.
	Target string `json:"target" yaml:"target"`
}

// shimNameRegex validates wrapper names: alphanumeric + hyphens only,
// must start and end with alphanumeric.
var shimNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)

// Validate checks that the ShimSpec has a well-formed name and a
// non-empty target. A wrapper with an invalid name would produce an
// unusable (or dangerous) file name in the bin directory.
func (s ShimSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("shim name must not be empty")
	}
	if !shimNameRegex.MatchString(s.Name) {
		return fmt.Errorf("invalid shim name %q: must contain only alphanumeric characters and hyphens, and start/end with alphanumeric", s.Name)
	}
	if s.Target == "" {
		return fmt.Errorf("shim %q: target script must not be empty", s.Name)
	}
	return nil
}

// ShimResult records the outcome of installing a single wrapper script.
type ShimResult struct {
	// Name is the wrapper's command name.
	Name string `json:"name"`

	// Path is the absolute path of the generated wrapper file.
	Path string `json:"path"`

	// Target is the script the wrapper forwards to.
	Target string `json:"target"`

	// Changed is true when the installer wrote the file, false when the
	// existing file already had identical content (idempotent re-run).
	Changed bool `json:"changed"`
}

// BootstrapResult is the aggregate outcome of a `devshell up` run.
// It is rendered as text or JSON by the CLI layer.
type BootstrapResult struct {
	// Name is the shell name from the manifest.
	Name string `json:"name"`

	// Python is the absolute path of the interpreter used to provision
	// the virtual environment.
	Python string `json:"python,omitempty"`

	// PythonVersion is the reported interpreter version (e.g., "3.11.9").
	PythonVersion string `json:"pythonVersion,omitempty"`

	// VenvDir is the virtual environment directory. Empty when venv
	// provisioning was skipped.
	VenvDir string `json:"venvDir,omitempty"`

	// VenvState is the state of the virtual environment after the run.
	VenvState ComponentState `json:"venvState"`

	// Packages is the package set declared by the manifest.
	Packages []string `json:"packages,omitempty"`

	// BinDir is the directory the wrapper scripts were installed into.
	BinDir string `json:"binDir"`

	// Shims records each installed wrapper.
	Shims []ShimResult `json:"shims"`

	// EnvFile is the path of the environment file that was loaded.
	EnvFile string `json:"envFile"`

	// EnvLoaded reports whether the environment file existed. A missing
	// file is not an error — the bootstrap continues with a warning.
	EnvLoaded bool `json:"envLoaded"`

	// EnvVars is the number of variables exported from the env file.
	EnvVars int `json:"envVars"`

	// CompletedAt is the timestamp when the bootstrap finished.
	CompletedAt time.Time `json:"completedAt"`
}

// ExitCode defines standard CLI exit codes. These codes allow scripts
// and CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitManifestInvalid indicates the manifest file could not be
	// parsed or failed validation.
	ExitManifestInvalid ExitCode = 2

	// ExitPythonNotFound indicates no usable Python interpreter was
	// found on PATH.
	ExitPythonNotFound ExitCode = 3

	// ExitVenvFailed indicates virtual environment creation or package
	// installation failed.
	ExitVenvFailed ExitCode = 4

	// ExitShimFailed indicates a wrapper script could not be written.
	ExitShimFailed ExitCode = 5

	// ExitEnvFileError indicates the environment file exists but could
	// not be read. A missing file is a warning, not this error.
	ExitEnvFileError ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
