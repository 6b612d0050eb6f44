// Package envfile reads and reconciles flat KEY=VALUE environment files.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Line is a single line of the file, kept verbatim. Key is empty for
// comments and blank lines.
type Line struct {
	Raw   string
	Key   string
	Value string
}

// File is an ordered in-memory image of an environment file. Comments,
// blank lines and duplicate keys are preserved exactly as found.
type File struct {
	Path  string
	Lines []Line
}

// Load reads path into a File. The file must exist and be readable.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	f := Parse(data)
	f.Path = path
	return f, nil
}

// Parse builds a File from raw content without touching the filesystem.
func Parse(data []byte) *File {
	content := strings.TrimSuffix(string(data), "\n")
	f := &File{}
	if content == "" {
		return f
	}
	for _, raw := range strings.Split(content, "\n") {
		f.Lines = append(f.Lines, parseLine(raw))
	}
	return f
}

func parseLine(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Line{Raw: raw}
	}
	eq := strings.Index(trimmed, "=")
	if eq < 1 {
		return Line{Raw: raw}
	}
	return Line{
		Raw:   raw,
		Key:   trimmed[:eq],
		Value: trimmed[eq+1:],
	}
}

// ContainsKey reports whether key is assigned anywhere in the file.
// Matching is exact and case-sensitive on the token preceding '='.
func (f *File) ContainsKey(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Get returns the value of the first assignment of key.
func (f *File) Get(key string) (string, bool) {
	for _, l := range f.Lines {
		if l.Key == key {
			return l.Value, true
		}
	}
	return "", false
}

// Append adds a KEY=VALUE assignment at the end of the file.
func (f *File) Append(key, value string) {
	f.Lines = append(f.Lines, Line{
		Raw:   key + "=" + value,
		Key:   key,
		Value: value,
	})
}

// AppendComment adds a comment line at the end of the file.
func (f *File) AppendComment(text string) {
	f.Lines = append(f.Lines, Line{Raw: "# " + text})
}

// Bytes serializes the file, one line per entry, trailing newline included.
func (f *File) Bytes() []byte {
	if len(f.Lines) == 0 {
		return nil
	}
	var b strings.Builder
	for _, l := range f.Lines {
		b.WriteString(l.Raw)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// WriteAtomic serializes the file to a temp file in the same directory and
// renames it over the original, so a killed run leaves either the old or
// the new content, never a torn file.
func (f *File) WriteAtomic() error {
	if f.Path == "" {
		return fmt.Errorf("write env file: no path set")
	}
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(f.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write env file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("write env file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	return nil
}
