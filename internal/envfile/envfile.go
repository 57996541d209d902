// Package envfile loads .env-style files into the process environment.
//
// The supported dialect is deliberately small: one KEY=VALUE pair per
// line, split on the first '='. Blank lines and lines whose first
// non-space character is '#' are skipped. A leading "export " prefix is
// tolerated (so a file can be both sourced by a shell and loaded here),
// and a value wrapped in matched single or double quotes is unquoted.
// There is no variable interpolation and no multi-line value support.
//
// A missing file is not an error condition for callers that follow the
// bootstrap contract: Load returns an error satisfying
// errors.Is(err, fs.ErrNotExist), and the CLI downgrades that to a
// warning and continues with an empty variable set.
package envfile

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Var is a single NAME=VALUE pair parsed from an env file.
type Var struct {
	// Name is the environment variable name (text before the first '=',
	// with surrounding whitespace and any "export " prefix removed).
	Name string `json:"name"`

	// Value is the variable value (text after the first '='), with
	// surrounding whitespace trimmed and matched quotes removed.
	Value string `json:"value"`

	// Line is the 1-based line number the pair was parsed from.
	Line int `json:"line"`
}

// File is the parsed representation of an env file.
type File struct {
	// Path is the file the content was read from. Empty when the file
	// was parsed from an in-memory buffer.
	Path string `json:"path"`

	// Vars holds the parsed pairs in file order.
	Vars []Var `json:"vars"`

	// Malformed lists the 1-based line numbers of non-comment,
	// non-blank lines that contained no '=' and were skipped.
	// The CLI reports these as warnings.
	Malformed []int `json:"malformed,omitempty"`
}

// Parse parses env file content from a byte slice. Parsing never fails:
// unusable lines are recorded in File.Malformed and skipped.
func Parse(data []byte) *File {
	f := &File{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Blank lines and comment lines carry no data.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Tolerate "export KEY=VALUE" so the same file can be sourced
		// directly by a shell.
		line = strings.TrimPrefix(line, "export ")

		// Split on the FIRST '=' only; values may contain '=' freely
		// (tokens, URLs with query strings).
		name, value, found := strings.Cut(line, "=")
		if !found {
			f.Malformed = append(f.Malformed, lineNo)
			continue
		}

		name = strings.TrimSpace(name)
		if name == "" {
			f.Malformed = append(f.Malformed, lineNo)
			continue
		}

		f.Vars = append(f.Vars, Var{
			Name:  name,
			Value: unquote(strings.TrimSpace(value)),
			Line:  lineNo,
		})
	}
	// bufio.Scanner only errors on pathological input (a single line
	// exceeding the buffer). Such a line is treated as malformed.
	if err := scanner.Err(); err != nil {
		f.Malformed = append(f.Malformed, lineNo+1)
	}

	return f
}

// Load reads and parses the env file at path.
//
// When the file does not exist, the returned error satisfies
// errors.Is(err, fs.ErrNotExist) so callers can downgrade it to a
// warning per the bootstrap contract.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	f := Parse(data)
	f.Path = path
	return f, nil
}

// Apply exports every parsed variable into the current process
// environment. Later entries win over earlier ones with the same name,
// matching the behavior of sourcing the file in a shell.
func (f *File) Apply() error {
	for _, v := range f.Vars {
		if err := os.Setenv(v.Name, v.Value); err != nil {
			return fmt.Errorf("set %s: %w", v.Name, err)
		}
	}
	return nil
}

// Lookup returns the value of the named variable and whether it is
// present. When a name appears on multiple lines the last entry wins.
func (f *File) Lookup(name string) (string, bool) {
	value := ""
	found := false
	for _, v := range f.Vars {
		if v.Name == name {
			value = v.Value
			found = true
		}
	}
	return value, found
}

// Names returns the distinct variable names in sorted order.
func (f *File) Names() []string {
	seen := make(map[string]bool, len(f.Vars))
	names := make([]string, 0, len(f.Vars))
	for _, v := range f.Vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	}
	sort.Strings(names)
	return names
}

// RenderPlain renders the variables as KEY=VALUE lines, one per line,
// in file order. Duplicate names are kept as-is so the output mirrors
// the source file.
func (f *File) RenderPlain() string {
	var sb strings.Builder
	for _, v := range f.Vars {
		sb.WriteString(v.Name)
		sb.WriteString("=")
		sb.WriteString(v.Value)
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderShell renders the variables as eval-able POSIX shell export
// lines. Values are single-quoted with embedded single quotes escaped,
// so arbitrary values round-trip through `eval "$(devshell env --shell)"`.
func (f *File) RenderShell() string {
	var sb strings.Builder
	for _, v := range f.Vars {
		sb.WriteString("export ")
		sb.WriteString(v.Name)
		sb.WriteString("=")
		sb.WriteString(ShellQuote(v.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

// ShellQuote wraps s in single quotes, escaping embedded single quotes
// with the standard '\'' sequence. The result is safe to eval in any
// POSIX shell.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// unquote removes one pair of matched surrounding quotes (single or
// double) from s. Unmatched or inner quotes are left untouched.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first == last && (first == '\'' || first == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
