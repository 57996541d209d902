// Package manifest handles loading and validation of the devshell
// descriptor file.
//
// The descriptor declares everything the bootstrap needs: the Python
// version hint, the package set to install into the virtual
// environment, the env file to load, and the wrapper scripts to
// generate. It may be written as JSONC (devshell.json — JSON with
// comments, stripped with github.com/tidwall/jsonc before parsing with
// encoding/json) or as YAML (devshell.yaml, parsed with gopkg.in/yaml.v3).
//
// When no descriptor exists, Resolve falls back to built-in defaults
// that reproduce the original shell: a Python 3.11 toolchain, the
// transcript tooling package set, and the fetch/view wrappers.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/devshell/internal/model"
)

// Default locations searched by Find, in priority order. The dotted
// directory form keeps generated artifacts and configuration together
// under .devshell/.
var searchPaths = []string{
	filepath.Join(".devshell", "devshell.json"),
	"devshell.json",
	"devshell.yaml",
}

// Manifest is the parsed and validated devshell descriptor.
//
// Both JSON and YAML tags are present because the descriptor can be
// authored in either format. Fields left empty in the file are filled
// with defaults by Resolve.
type Manifest struct {
	// Name is the display name of the shell, used in command output.
	Name string `json:"name" yaml:"name"`

	// Python is the interpreter version hint (e.g., "3.11"). The venv
	// manager prefers a matching versioned interpreter (python3.11) and
	// falls back to python3/python.
	Python string `json:"python,omitempty" yaml:"python,omitempty"`

	// Packages is the pip package set to install into the virtual
	// environment. Entries are passed to pip verbatim, so version
	// specifiers ("tqdm>=4.66") are allowed but not interpreted.
	Packages []string `json:"packages,omitempty" yaml:"packages,omitempty"`

	// EnvFile is the path of the .env file loaded into the process
	// environment at bootstrap. Relative to the project root.
	EnvFile string `json:"envFile,omitempty" yaml:"envFile,omitempty"`

	// BinDir is the directory the wrapper scripts are installed into.
	// It is prepended to PATH by the env command's shell output.
	BinDir string `json:"binDir,omitempty" yaml:"binDir,omitempty"`

	// VenvDir is the virtual environment directory.
	VenvDir string `json:"venvDir,omitempty" yaml:"venvDir,omitempty"`

	// Shims lists the wrapper scripts to generate.
	Shims []model.ShimSpec `json:"shims,omitempty" yaml:"shims,omitempty"`

	// Path is the file the manifest was loaded from. Empty when the
	// built-in defaults are in effect.
	Path string `json:"-" yaml:"-"`
}

// Default returns the built-in manifest that reproduces the original
// shell when no descriptor file exists: Python 3.11, the transcript
// tooling packages, and the fetch/view wrappers.
func Default() *Manifest {
	m := &Manifest{
		Name:     "devshell",
		Python:   "3.11",
		Packages: []string{"tqdm", "pyperclip"},
		Shims: []model.ShimSpec{
			{Name: "fetch", Target: filepath.Join("src", "fetchMessages.py")},
			{Name: "view", Target: filepath.Join("src", "viewChats.py")},
		},
	}
	m.applyDefaults()
	return m
}

// Find locates the descriptor file under root, checking the standard
// locations in priority order. Returns the empty string when none exists.
func Find(root string) string {
	for _, rel := range searchPaths {
		path := filepath.Join(root, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads and parses the descriptor at path. The format is chosen
// by file extension: .yaml/.yml parses as YAML, everything else as
// JSONC. The result is validated and has defaults applied.
//
// Returns a CLIError with ExitManifestInvalid on read, parse, or
// validation failure.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitManifestInvalid,
			fmt.Sprintf("failed to read manifest %s", path), err)
	}

	m := &Manifest{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, m); err != nil {
			return nil, model.WrapCLIError(model.ExitManifestInvalid,
				fmt.Sprintf("failed to parse manifest %s", path), err)
		}
	default:
		// Strip JSONC comments and trailing commas before handing the
		// bytes to the standard JSON decoder, exactly like editor
		// config files are handled.
		if err := json.Unmarshal(jsonc.ToJSON(data), m); err != nil {
			return nil, model.WrapCLIError(model.ExitManifestInvalid,
				fmt.Sprintf("failed to parse manifest %s", path), err)
		}
	}

	m.Path = path
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitManifestInvalid,
			fmt.Sprintf("invalid manifest %s", path), err)
	}
	return m, nil
}

// Resolve returns the manifest in effect for the project at root:
// the descriptor file when one exists, the built-in defaults otherwise.
// The second return value reports whether a file was found.
func Resolve(root string) (*Manifest, bool, error) {
	path := Find(root)
	if path == "" {
		return Default(), false, nil
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// applyDefaults fills empty fields with their standard values.
func (m *Manifest) applyDefaults() {
	if m.Name == "" {
		m.Name = "devshell"
	}
	if m.EnvFile == "" {
		m.EnvFile = ".env"
	}
	if m.BinDir == "" {
		m.BinDir = filepath.Join(".devshell", "bin")
	}
	if m.VenvDir == "" {
		m.VenvDir = ".venv"
	}
}
