package repo

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/rgit/pkg/object"
)

// WorkingTree scans the working directory and returns the blob OID each
// non-ignored regular file would have. Nothing is written to the store.
// Unreadable files are logged and skipped.
func (r *Repo) WorkingTree() (map[string]object.OID, error) {
	out := make(map[string]object.OID)
	err := r.walkWorktree(".", func(p string) {
		data, err := util.ReadFile(r.Worktree, p)
		if err != nil {
			r.log.Warn("skip unreadable file", "path", p, "err", err)
			return
		}
		out[p] = object.HashBytes(data)
	})
	if err != nil {
		return nil, fmt.Errorf("working tree: %w", err)
	}
	return out, nil
}

// walkWorktree calls fn for every non-ignored regular file under dir.
// Unreadable subdirectories are logged and skipped; only a failure to read
// dir itself is returned.
func (r *Repo) walkWorktree(dir string, fn func(p string)) error {
	entries, err := r.Worktree.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: read dir %s: %w", object.ErrIO, dir, err)
	}
	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if r.IsIgnored(p, e.IsDir()) {
			continue
		}
		switch {
		case e.IsDir():
			if err := r.walkWorktree(p, fn); err != nil {
				r.log.Warn("skip unreadable directory", "path", p, "err", err)
			}
		case e.Mode().IsRegular():
			fn(p)
		default:
			r.log.Debug("skip non-regular file", "path", p, "mode", e.Mode())
		}
	}
	return nil
}

// Add hashes the given files, or every file under the given directories,
// into the store and records them in the index. Paths are relative to the
// repository root. Paths that cannot be added are logged and skipped.
func (r *Repo) Add(paths []string) error {
	idx, err := r.Index.Load()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	for _, p := range paths {
		rel, err := cleanRelPath(p)
		if err != nil {
			r.log.Warn("skip add", "path", p, "err", err)
			continue
		}
		info, err := r.Worktree.Stat(rel)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				r.log.Warn("skip add: no such file", "path", rel)
			} else {
				r.log.Warn("skip add", "path", rel, "err", err)
			}
			continue
		}
		if r.IsIgnored(rel, info.IsDir()) {
			r.log.Debug("skip ignored path", "path", rel)
			continue
		}
		if !info.IsDir() {
			r.addFile(idx, rel)
			continue
		}
		if err := r.walkWorktree(rel, func(fp string) { r.addFile(idx, fp) }); err != nil {
			r.log.Warn("skip add", "path", rel, "err", err)
		}
	}

	if err := r.Index.Save(idx); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

func (r *Repo) addFile(idx Index, p string) {
	oid, err := r.Store.HashFile(r.Worktree, p)
	if err != nil {
		r.log.Warn("skip add", "path", p, "err", err)
		return
	}
	idx[p] = oid
	r.log.Debug("staged", "path", p, "oid", oid)
}
