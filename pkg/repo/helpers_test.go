package repo

import (
	"path"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/rgit/pkg/merge"
	"github.com/odvcencio/rgit/pkg/object"
)

// newMemRepo initializes a repository on an in-memory filesystem using the
// built-in merger.
func newMemRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := InitFS("/repo", memfs.New(), WithMerger(merge.Builtin{}))
	if err != nil {
		t.Fatalf("InitFS: %v", err)
	}
	return r
}

func writeWorkFile(t *testing.T, r *Repo, p, content string) {
	t.Helper()
	if dir := path.Dir(p); dir != "." {
		if err := r.Worktree.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): %v", dir, err)
		}
	}
	if err := util.WriteFile(r.Worktree, p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q): %v", p, err)
	}
}

func readWorkFile(t *testing.T, r *Repo, p string) string {
	t.Helper()
	data, err := util.ReadFile(r.Worktree, p)
	if err != nil {
		t.Fatalf("ReadFile(%q): %v", p, err)
	}
	return string(data)
}

func workFileExists(r *Repo, p string) bool {
	_, err := r.Worktree.Stat(p)
	return err == nil
}

// commitFiles writes files into the working tree, stages them and commits.
func commitFiles(t *testing.T, r *Repo, files map[string]string, msg string) object.OID {
	t.Helper()
	paths := make([]string, 0, len(files))
	for p, content := range files {
		writeWorkFile(t, r, p, content)
		paths = append(paths, p)
	}
	if err := r.Add(paths); err != nil {
		t.Fatalf("Add: %v", err)
	}
	oid, err := r.Commit(msg)
	if err != nil {
		t.Fatalf("Commit(%q): %v", msg, err)
	}
	return oid
}

func headOID(t *testing.T, r *Repo) object.OID {
	t.Helper()
	v, err := r.GetRef(HeadRef, true)
	if err != nil {
		t.Fatalf("GetRef(HEAD): %v", err)
	}
	return v.OID()
}
