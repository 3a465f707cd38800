package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Test 1: Init creates .rgit/ structure (HEAD, objects/, refs/heads/).
func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init(%q): %v", dir, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}

	metaDir := filepath.Join(dir, ".rgit")
	if r.MetaDir != metaDir {
		t.Errorf("MetaDir = %q, want %q", r.MetaDir, metaDir)
	}
	assertDir(t, metaDir)
	assertDir(t, filepath.Join(metaDir, "objects"))
	assertDir(t, filepath.Join(metaDir, "refs", "heads"))

	head, err := os.ReadFile(filepath.Join(metaDir, "HEAD"))
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if got := strings.TrimSpace(string(head)); got != "ref: refs/heads/master" {
		t.Errorf("HEAD = %q, want %q", got, "ref: refs/heads/master")
	}
	if r.Store == nil {
		t.Error("Store is nil after Init")
	}
}

// Test 2: Init on existing repo returns error.
func TestInit_ExistingRepo_Error(t *testing.T) {
	dir := t.TempDir()

	if _, err := Init(dir); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if _, err := Init(dir); err == nil {
		t.Fatal("second Init should fail on existing repo, got nil error")
	}
}

// Test 3: Open finds .rgit/ from subdirectory.
func TestOpen_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()

	if _, err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sub := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	r, err := Open(sub)
	if err != nil {
		t.Fatalf("Open(%q): %v", sub, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}
}

// Test 4: Open in non-repo directory returns error.
func TestOpen_NoRepo_Error(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("Open should fail in non-repo directory, got nil error")
	}
}

// Test 5: a repository on disk survives reopening.
func TestOpen_SeesCommittedState(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	oid := commitFiles(t, r, map[string]string{"a.txt": "a\n", "dir/b.txt": "b\n"}, "first")

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := headOID(t, reopened); got != oid {
		t.Errorf("HEAD = %q, want %q", got, oid)
	}
	if _, err := os.Stat(filepath.Join(dir, ".rgit", "objects", string(oid))); err != nil {
		t.Errorf("commit object not in flat layout: %v", err)
	}
}

// helpers

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %q to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %q to be a directory", path)
	}
}
