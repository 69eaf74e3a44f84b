package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAssertNoDirectImportsAllows(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\n\nimport \"fmt\"\n\nfunc X() { fmt.Println(\"x\") }\n")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	AssertNoDirectImports(t, dir, func(path string) bool {
		return path == "some/forbidden/package"
	}, "fmt is fine")
}

func TestAssertNoDirectImportsFlags(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\n\nimport _ \"some/forbidden/package\"\n")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec := &recordingTB{TB: t}
	AssertNoDirectImports(rec, dir, func(path string) bool {
		return path == "some/forbidden/package"
	}, "forbidden")
	if !rec.failed {
		t.Fatalf("forbidden import was not flagged")
	}
}

// The pkg tree is the reusable surface of the module and must stay free of
// internal dependencies.
func TestPkgTreeDoesNotImportInternal(t *testing.T) {
	for _, dir := range []string{"fieldpath", "outcome", "ruleset"} {
		AssertNoDirectImports(t, filepath.Join("..", "pkg", dir), func(path string) bool {
			return strings.HasPrefix(path, "sampleval/internal")
		}, "pkg packages must not depend on internal packages")
	}
}

type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Errorf(string, ...any) { r.failed = true }
func (r *recordingTB) Helper()               {}
