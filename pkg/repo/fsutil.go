package repo

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/rgit/pkg/object"
)

// writeFileAtomic writes data to name via a temp file in the same directory
// followed by a rename.
func writeFileAtomic(fs billy.Filesystem, name string, data []byte) error {
	dir := path.Dir(name)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", object.ErrIO, dir, err)
	}
	tmp, err := util.TempFile(fs, dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("%w: tmpfile: %w", object.ErrIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %w", object.ErrIO, name, err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %w", object.ErrIO, name, err)
	}
	if err := fs.Rename(tmpName, name); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %w", object.ErrIO, name, err)
	}
	return nil
}

// removeEmptyParents removes empty directories from the parent of relPath
// up to, but not including, the working tree root.
func removeEmptyParents(fs billy.Filesystem, relPath string) {
	dir := path.Dir(relPath)
	for dir != "." && dir != "/" && dir != "" {
		entries, err := fs.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := fs.Remove(dir); err != nil {
			return
		}
		dir = path.Dir(dir)
	}
}

// cleanRelPath normalizes a caller-supplied repository-relative path to
// slash form. It rejects paths that escape the working tree.
func cleanRelPath(p string) (string, error) {
	p = path.Clean(filepath.ToSlash(p))
	if p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("path %q is outside repository", p)
	}
	return p, nil
}
