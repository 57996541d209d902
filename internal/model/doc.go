// Package model defines the domain types and value objects for the
// devshell CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (ShimSpec, ShimResult, BootstrapResult, ComponentState)
// are transient representations reconstructed from the filesystem at
// runtime — there is no state database.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
