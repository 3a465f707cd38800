package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// DefaultBranch is the branch HEAD points at in a fresh repository.
const DefaultBranch = "master"

// Init creates a new rgit repository at path. It creates the .rgit/
// directory structure: HEAD, objects/ and refs/heads/. Returns an error if a
// .rgit/ directory already exists.
func Init(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	return InitFS(abs, osfs.New(abs), opts...)
}

// InitFS is Init over an arbitrary filesystem rooted at the working tree.
// root is only recorded for display.
func InitFS(root string, wt billy.Filesystem, opts ...Option) (*Repo, error) {
	if _, err := wt.Stat(MetaDirName); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", filepath.Join(root, MetaDirName))
	}

	for _, d := range []string{"objects", "refs/heads", "refs/tags"} {
		if err := wt.MkdirAll(MetaDirName+"/"+d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	r, err := newRepo(root, filepath.Join(root, MetaDirName), wt, opts)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.UpdateRef(HeadRef, SymbolicRef("refs/heads/"+DefaultBranch), false); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}
	r.log.Info("initialized repository", "path", r.MetaDir)
	return r, nil
}

// Open searches upward from path for a .rgit/ directory and opens the
// repository. Returns an error if no .rgit/ directory is found.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		info, err := os.Stat(filepath.Join(cur, MetaDirName))
		if err == nil && info.IsDir() {
			return OpenFS(cur, osfs.New(cur), opts...)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not an rgit repository (or any parent up to /)")
		}
		cur = parent
	}
}

// OpenFS opens the repository whose working tree is wt.
func OpenFS(root string, wt billy.Filesystem, opts ...Option) (*Repo, error) {
	info, err := wt.Stat(MetaDirName)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("open: no %s directory in %s", MetaDirName, root)
	}
	r, err := newRepo(root, filepath.Join(root, MetaDirName), wt, opts)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return r, nil
}
