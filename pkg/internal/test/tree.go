// Package test holds filesystem fixtures shared by the package tests.
package test

import (
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree creates the files described by tree under dir. Keys are slash-separated
// relative paths; a key ending in "/" creates an empty directory.
func WriteTree(t testing.TB, dir string, tree map[string]string) {
	t.Helper()
	for name, content := range tree {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatalf("failed to create directory %s: %v", p, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}
}

// ReadTree returns every entry under dir in the form accepted by WriteTree.
// Directories are only listed when they are empty.
func ReadTree(t testing.TB, dir string) map[string]string {
	t.Helper()
	tree := map[string]string{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)
		if d.IsDir() {
			entries, err := os.ReadDir(p)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				tree[name+"/"] = ""
			}
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		tree[name] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to read tree %s: %v", dir, err)
	}
	return tree
}

// SampleTree is a small nested tree with text, binary-ish and empty entries.
func SampleTree() map[string]string {
	return map[string]string{
		"data.txt":             strings.Repeat("The lucky numbers are 4 8 15 16 23 42\n", 500),
		"empty.txt":            "",
		"nested/a.txt":         "a",
		"nested/deeper/b.txt":  "b\x00\x01\x02",
		"nested/deeper/c.json": `{"c": true}`,
		"hollow/":              "",
	}
}

// WriteSocket creates a unix socket at p, an entry that cannot be stored in a tar archive.
// The socket is removed when the test ends.
func WriteSocket(t testing.TB, p string) {
	t.Helper()
	l, err := net.Listen("unix", p)
	if err != nil {
		t.Fatalf("failed to create socket %s: %v", p, err)
	}
	t.Cleanup(func() { _ = l.Close() })
}
