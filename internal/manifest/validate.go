package manifest

import (
	"fmt"
	"strings"
)

// Validate checks the manifest for internal consistency: well-formed
// shim specs, no duplicate shim names, and plausible package entries.
// It is called by Load after defaults are applied, so empty structural
// fields (BinDir, EnvFile, VenvDir) cannot occur here.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Shims))
	for _, shim := range m.Shims {
		if err := shim.Validate(); err != nil {
			return err
		}
		if seen[shim.Name] {
			return fmt.Errorf("duplicate shim name %q", shim.Name)
		}
		seen[shim.Name] = true
	}

	for _, pkg := range m.Packages {
		if err := validatePackage(pkg); err != nil {
			return err
		}
	}

	if m.Python != "" {
		if err := validatePythonHint(m.Python); err != nil {
			return err
		}
	}

	return nil
}

// validatePackage rejects entries that pip would misread as options or
// that are obviously empty. Version specifiers and extras are passed
// through untouched — this is a plausibility check, not a requirements
// parser.
func validatePackage(pkg string) error {
	trimmed := strings.TrimSpace(pkg)
	if trimmed == "" {
		return fmt.Errorf("package entry must not be empty")
	}
	if strings.HasPrefix(trimmed, "-") {
		return fmt.Errorf("invalid package entry %q: must not start with '-'", pkg)
	}
	if strings.ContainsAny(trimmed, " \t") {
		return fmt.Errorf("invalid package entry %q: must not contain whitespace", pkg)
	}
	return nil
}

// validatePythonHint checks that the version hint is a dotted numeric
// version like "3" or "3.11". The hint becomes part of an interpreter
// executable name (python3.11), so anything else would never resolve.
func validatePythonHint(hint string) error {
	for _, part := range strings.Split(hint, ".") {
		if part == "" {
			return fmt.Errorf("invalid python version hint %q", hint)
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return fmt.Errorf("invalid python version hint %q", hint)
			}
		}
	}
	return nil
}
