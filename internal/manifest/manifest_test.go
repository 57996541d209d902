package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/devshell/internal/model"
)

// --- Load tests ---

// TestLoad_JSONC verifies that a JSONC descriptor parses correctly:
// comments and trailing commas are stripped, all fields land, and
// defaults fill only what the file left out.
func TestLoad_JSONC(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "jsonc", "devshell.json"))
	require.NoError(t, err, "Load should succeed for a valid JSONC manifest")

	assert.Equal(t, "transcripts", m.Name)
	assert.Equal(t, "3.11", m.Python)
	assert.Equal(t, []string{"tqdm", "pyperclip"}, m.Packages)
	assert.Equal(t, ".env.local", m.EnvFile)
	assert.Equal(t, "bin", m.BinDir)

	// VenvDir was not set in the file, so the default applies.
	assert.Equal(t, ".venv", m.VenvDir)

	require.Len(t, m.Shims, 2)
	assert.Equal(t, "fetch", m.Shims[0].Name)
	assert.Equal(t, "src/fetchMessages.py", m.Shims[0].Target)
	assert.Equal(t, "view", m.Shims[1].Name)
}

// TestLoad_YAML verifies the YAML descriptor form parses to the same
// shape as the JSONC form.
func TestLoad_YAML(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "yaml", "devshell.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "transcripts", m.Name)
	assert.Equal(t, "3.11", m.Python)
	assert.Equal(t, []string{"tqdm", "pyperclip"}, m.Packages)

	// Structural defaults apply when the file omits them.
	assert.Equal(t, ".env", m.EnvFile)
	assert.Equal(t, filepath.Join(".devshell", "bin"), m.BinDir)
	assert.Equal(t, ".venv", m.VenvDir)

	require.Len(t, m.Shims, 2)
	assert.Equal(t, "view", m.Shims[1].Name)
	assert.Equal(t, "src/viewChats.py", m.Shims[1].Target)
}

// TestLoad_InvalidJSON verifies that parse failures surface as
// CLIError with the manifest exit code.
func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devshell.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitManifestInvalid, cliErr.Code)
}

// TestLoad_ValidationFailure verifies that semantic problems (here, a
// duplicate shim name) are rejected with the manifest exit code.
func TestLoad_ValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devshell.json")
	content := `{"shims": [{"name": "fetch", "target": "a.py"}, {"name": "fetch", "target": "b.py"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitManifestInvalid, cliErr.Code)
	assert.Contains(t, err.Error(), "duplicate shim name")
}

// --- Validate tests ---

// TestValidate_Packages covers the pip entry plausibility checks.
func TestValidate_Packages(t *testing.T) {
	tests := []struct {
		name     string
		pkg      string
		hasError bool
	}{
		{"plain name", "tqdm", false},
		{"version specifier", "tqdm>=4.66", false},
		{"extras", "requests[socks]", false},
		{"empty", "", true},
		{"option-like", "--index-url=evil", true},
		{"whitespace", "tqdm pyperclip", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Default()
			m.Packages = []string{tt.pkg}
			err := m.Validate()
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestValidate_PythonHint covers the interpreter version hint format.
func TestValidate_PythonHint(t *testing.T) {
	valid := []string{"3", "3.11", "3.12.1"}
	invalid := []string{"3.", ".11", "three", "3.x", "3..11"}

	for _, hint := range valid {
		m := Default()
		m.Python = hint
		assert.NoError(t, m.Validate(), "hint %q should validate", hint)
	}
	for _, hint := range invalid {
		m := Default()
		m.Python = hint
		assert.Error(t, m.Validate(), "hint %q should be rejected", hint)
	}
}

// --- Find / Resolve tests ---

// TestFind_PriorityOrder verifies the search order: the .devshell/
// descriptor wins over a root devshell.json, which wins over YAML.
func TestFind_PriorityOrder(t *testing.T) {
	root := t.TempDir()
	write := func(rel string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}

	assert.Equal(t, "", Find(root), "empty project has no manifest")

	write("devshell.yaml")
	assert.Equal(t, filepath.Join(root, "devshell.yaml"), Find(root))

	write("devshell.json")
	assert.Equal(t, filepath.Join(root, "devshell.json"), Find(root))

	write(filepath.Join(".devshell", "devshell.json"))
	assert.Equal(t, filepath.Join(root, ".devshell", "devshell.json"), Find(root))
}

// TestResolve_Defaults verifies that a project without a descriptor
// resolves to the built-in defaults reproducing the original shell.
func TestResolve_Defaults(t *testing.T) {
	m, found, err := Resolve(t.TempDir())
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, "devshell", m.Name)
	assert.Equal(t, "3.11", m.Python)
	assert.Equal(t, []string{"tqdm", "pyperclip"}, m.Packages)
	assert.Equal(t, ".env", m.EnvFile)
	assert.Equal(t, filepath.Join(".devshell", "bin"), m.BinDir)
	assert.Equal(t, ".venv", m.VenvDir)

	require.Len(t, m.Shims, 2)
	assert.Equal(t, "fetch", m.Shims[0].Name)
	assert.Equal(t, filepath.Join("src", "fetchMessages.py"), m.Shims[0].Target)
	assert.Equal(t, "view", m.Shims[1].Name)
	assert.Equal(t, filepath.Join("src", "viewChats.py"), m.Shims[1].Target)

	// The defaults themselves must pass validation.
	assert.NoError(t, m.Validate())
}

// TestResolve_FileWins verifies that a descriptor file takes precedence
// over the built-in defaults.
func TestResolve_FileWins(t *testing.T) {
	root := t.TempDir()
	content := `{"name": "custom", "packages": ["requests"]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "devshell.json"), []byte(content), 0o644))

	m, found, err := Resolve(root)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "custom", m.Name)
	assert.Equal(t, []string{"requests"}, m.Packages)
	assert.Empty(t, m.Shims, "file manifest does not inherit default shims")
}
