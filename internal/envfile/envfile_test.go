package envfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParse_WellFormed verifies that every non-comment KEY=VALUE line
// produces a variable with that exact name and value, in file order.
func TestParse_WellFormed(t *testing.T) {
	content := strings.Join([]string{
		"# Botpress credentials",
		"BOTPRESS_WORKSPACE_ID=ws-1234",
		"BOTPRESS_BOT_ID=bot-5678",
		"",
		"BOTPRESS_TOKEN=bp_pat_abc123",
	}, "\n")

	f := Parse([]byte(content))

	require.Len(t, f.Vars, 3)
	assert.Empty(t, f.Malformed)

	assert.Equal(t, "BOTPRESS_WORKSPACE_ID", f.Vars[0].Name)
	assert.Equal(t, "ws-1234", f.Vars[0].Value)
	assert.Equal(t, 2, f.Vars[0].Line)

	assert.Equal(t, "BOTPRESS_BOT_ID", f.Vars[1].Name)
	assert.Equal(t, "bot-5678", f.Vars[1].Value)

	assert.Equal(t, "BOTPRESS_TOKEN", f.Vars[2].Name)
	assert.Equal(t, "bp_pat_abc123", f.Vars[2].Value)
}

// TestParse_SplitsOnFirstEquals verifies that values containing '='
// are kept intact — only the first '=' separates name from value.
func TestParse_SplitsOnFirstEquals(t *testing.T) {
	f := Parse([]byte("API_URL=https://api.example.com/v1?key=abc&mode=full"))

	require.Len(t, f.Vars, 1)
	assert.Equal(t, "API_URL", f.Vars[0].Name)
	assert.Equal(t, "https://api.example.com/v1?key=abc&mode=full", f.Vars[0].Value)
}

// TestParse_CommentsAndBlanks verifies that comment lines (including
// indented ones) and blank lines are skipped without being reported
// as malformed.
func TestParse_CommentsAndBlanks(t *testing.T) {
	content := "# header\n\n   # indented comment\nKEY=value\n\n"

	f := Parse([]byte(content))

	require.Len(t, f.Vars, 1)
	assert.Empty(t, f.Malformed)
	assert.Equal(t, "KEY", f.Vars[0].Name)
}

// TestParse_ExportPrefixAndQuotes verifies the tolerated dialect
// extensions: a leading "export " prefix and matched surrounding quotes.
func TestParse_ExportPrefixAndQuotes(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		varName  string
		varValue string
	}{
		{"export prefix", "export TOKEN=abc", "TOKEN", "abc"},
		{"double quotes", `MSG="hello world"`, "MSG", "hello world"},
		{"single quotes", "MSG='hello world'", "MSG", "hello world"},
		{"unmatched quote kept", `MSG="unterminated`, "MSG", `"unterminated`},
		{"inner quotes kept", `MSG=it's fine`, "MSG", "it's fine"},
		{"empty value", "EMPTY=", "EMPTY", ""},
		{"whitespace around pair", "  PADDED = spaced  ", "PADDED", "spaced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Parse([]byte(tt.line))
			require.Len(t, f.Vars, 1)
			assert.Equal(t, tt.varName, f.Vars[0].Name)
			assert.Equal(t, tt.varValue, f.Vars[0].Value)
		})
	}
}

// TestParse_MalformedLines verifies that non-comment lines without '='
// are skipped and their line numbers recorded for diagnostics.
func TestParse_MalformedLines(t *testing.T) {
	content := "GOOD=1\nthis is not a pair\n=novalue-name\nALSO_GOOD=2\n"

	f := Parse([]byte(content))

	require.Len(t, f.Vars, 2)
	assert.Equal(t, []int{2, 3}, f.Malformed)
	assert.Equal(t, "GOOD", f.Vars[0].Name)
	assert.Equal(t, "ALSO_GOOD", f.Vars[1].Name)
}

// TestLoad_MissingFile verifies the bootstrap contract for an absent
// env file: Load fails with an error recognizable as fs.ErrNotExist so
// the caller can warn and continue.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "no-such.env"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "error should wrap fs.ErrNotExist")
}

// TestLoad_Apply verifies that applying a loaded file exports every
// variable into the process environment with the parsed values.
func TestLoad_Apply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "DEVSHELL_TEST_A=alpha\n# comment\nDEVSHELL_TEST_B='beta value'\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// t.Setenv registers cleanup so the test does not leak into the
	// process environment of other tests.
	t.Setenv("DEVSHELL_TEST_A", "")
	t.Setenv("DEVSHELL_TEST_B", "")

	f, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, f.Apply())

	assert.Equal(t, "alpha", os.Getenv("DEVSHELL_TEST_A"))
	assert.Equal(t, "beta value", os.Getenv("DEVSHELL_TEST_B"))
}

// TestLookup_LastEntryWins verifies shell-sourcing semantics for
// duplicate names: the later line overrides the earlier one.
func TestLookup_LastEntryWins(t *testing.T) {
	f := Parse([]byte("KEY=first\nKEY=second\n"))

	value, found := f.Lookup("KEY")
	assert.True(t, found)
	assert.Equal(t, "second", value)

	_, found = f.Lookup("MISSING")
	assert.False(t, found)
}

// TestRenderShell verifies that the shell rendering is eval-safe:
// values are single-quoted and embedded single quotes escaped.
func TestRenderShell(t *testing.T) {
	f := Parse([]byte("GREETING=it's a test\nPLAIN=ok\n"))

	out := f.RenderShell()

	assert.Equal(t, "export GREETING='it'\\''s a test'\nexport PLAIN='ok'\n", out)
}

// TestRenderPlain verifies the KEY=VALUE rendering used by the env
// command's default output.
func TestRenderPlain(t *testing.T) {
	f := Parse([]byte("A=1\nB=2\n"))
	assert.Equal(t, "A=1\nB=2\n", f.RenderPlain())
}

// TestNames verifies deduplicated, sorted name listing.
func TestNames(t *testing.T) {
	f := Parse([]byte("B=1\nA=2\nB=3\n"))
	assert.Equal(t, []string{"A", "B"}, f.Names())
}
