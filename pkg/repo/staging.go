package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/rgit/pkg/object"
)

const indexFile = "index"

// Index maps repository-relative slash paths to blob OIDs.
type Index map[string]object.OID

// Paths returns the index paths in sorted order.
func (idx Index) Paths() []string {
	paths := make([]string, 0, len(idx))
	for p := range idx {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// IndexStore persists the index. Save replaces the stored index wholesale.
type IndexStore interface {
	Load() (Index, error)
	Save(Index) error
}

// FileIndex stores the index as JSON in .rgit/index.
type FileIndex struct {
	fs billy.Filesystem
}

// NewFileIndex returns an IndexStore backed by the index file in meta.
func NewFileIndex(meta billy.Filesystem) *FileIndex {
	return &FileIndex{fs: meta}
}

type indexFileFormat struct {
	Entries Index `json:"entries"`
}

// Load reads the index. A missing file is an empty index.
func (f *FileIndex) Load() (Index, error) {
	data, err := util.ReadFile(f.fs, indexFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Index{}, nil
		}
		return nil, fmt.Errorf("read index: %w: %w", object.ErrIO, err)
	}

	var doc indexFileFormat
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("read index: unmarshal: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = Index{}
	}
	return doc.Entries, nil
}

// Save atomically writes the index.
func (f *FileIndex) Save(idx Index) error {
	if idx == nil {
		idx = Index{}
	}
	data, err := json.MarshalIndent(indexFileFormat{Entries: idx}, "", "  ")
	if err != nil {
		return fmt.Errorf("write index: marshal: %w", err)
	}
	if err := writeFileAtomic(f.fs, indexFile, data); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Materialize writes the blob of every index entry into the working tree,
// creating parent directories. Entries whose blob cannot be read or written
// are logged and skipped; the number skipped is returned.
func (r *Repo) Materialize(idx Index) int {
	skipped := 0
	for _, p := range idx.Paths() {
		if err := r.materializeFile(p, idx[p]); err != nil {
			r.log.Warn("skip materialize", "path", p, "err", err)
			skipped++
		}
	}
	return skipped
}

func (r *Repo) materializeFile(p string, oid object.OID) error {
	data, err := r.Store.Read(oid, object.KindBlob)
	if err != nil {
		return err
	}
	if dir := path.Dir(p); dir != "." {
		if err := r.Worktree.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", object.ErrIO, err)
		}
	}
	if err := util.WriteFile(r.Worktree, p, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", object.ErrIO, err)
	}
	return nil
}
