package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const objectsDir = "objects"

// Store is a content-addressed object store with a flat layout:
// objects/<oid>. Each file holds "<Kind>\0<content>".
type Store struct {
	fs billy.Filesystem
}

// NewStore creates a Store on fs, which is expected to be rooted at the
// repository metadata directory. The objects/ directory is created lazily
// on first write.
func NewStore(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

func objectPath(oid OID) string {
	return path.Join(objectsDir, string(oid))
}

// Has reports whether the store contains an object with the given OID.
func (s *Store) Has(oid OID) bool {
	if oid == "" {
		return false
	}
	info, err := s.fs.Stat(objectPath(oid))
	return err == nil && !info.IsDir()
}

// Write stores content under kind and returns its OID. Writing content that
// is already present is a no-op.
func (s *Store) Write(kind Kind, content []byte) (OID, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	oid := HashBytes(content)
	if s.Has(oid) {
		return oid, nil
	}

	raw := make([]byte, 0, len(kind)+1+len(content))
	raw = append(raw, string(kind)...)
	raw = append(raw, 0)
	raw = append(raw, content...)
	if err := s.writeFile(oid, raw); err != nil {
		return "", err
	}
	return oid, nil
}

// writeFile stores raw envelope bytes atomically via temp file + rename.
func (s *Store) writeFile(oid OID, raw []byte) error {
	if err := s.fs.MkdirAll(objectsDir, 0o755); err != nil {
		return fmt.Errorf("object write mkdir: %w: %w", ErrIO, err)
	}

	tmp, err := util.TempFile(s.fs, objectsDir, ".tmp-")
	if err != nil {
		return fmt.Errorf("object write tmpfile: %w: %w", ErrIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("object write %s: %w: %w", oid, ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("object write close %s: %w: %w", oid, ErrIO, err)
	}
	if err := s.fs.Rename(tmpName, objectPath(oid)); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("object write rename %s: %w: %w", oid, ErrIO, err)
	}
	return nil
}

// ReadKind returns the stored kind and content of an object.
func (s *Store) ReadKind(oid OID) (Kind, []byte, error) {
	raw, err := s.ReadRaw(oid)
	if err != nil {
		return "", nil, err
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("object read %s: %w: no kind tag", oid, ErrMalformedObject)
	}
	kind, err := ParseKind(string(raw[:nul]))
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", oid, err)
	}
	return kind, raw[nul+1:], nil
}

// Read returns the content of an object, checking that it was stored as
// expected. Pass KindAny to skip the check.
//
// Empty content is exempt from the check: the empty blob and the empty tree
// share EmptyTreeOID and whichever is written first fixes the stored tag.
func (s *Store) Read(oid OID, expected Kind) ([]byte, error) {
	kind, content, err := s.ReadKind(oid)
	if err != nil {
		return nil, err
	}
	if expected != KindAny && kind != expected && len(content) > 0 {
		return nil, fmt.Errorf("object %s: %w: got %q, want %q", oid, ErrKindMismatch, kind, expected)
	}
	return content, nil
}

// ReadRaw returns the envelope bytes exactly as stored.
func (s *Store) ReadRaw(oid OID) ([]byte, error) {
	if oid == "" {
		return nil, fmt.Errorf("object read: %w: empty oid", ErrNotFound)
	}
	raw, err := util.ReadFile(s.fs, objectPath(oid))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", oid, ErrNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w: %w", oid, ErrIO, err)
	}
	return raw, nil
}

// WriteRaw stores envelope bytes copied from another store. The OID is
// trusted; the content is not re-hashed.
func (s *Store) WriteRaw(oid OID, raw []byte) error {
	if s.Has(oid) {
		return nil
	}
	return s.writeFile(oid, raw)
}

// HashFile reads the named file from fs and stores it as a blob.
func (s *Store) HashFile(fs billy.Basic, name string) (OID, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return "", fmt.Errorf("hash object %s: %w: %w", name, ErrIO, err)
	}
	return s.Write(KindBlob, data)
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteTree serializes and stores a Tree.
func (s *Store) WriteTree(t *Tree) (OID, error) {
	data, err := MarshalTree(t)
	if err != nil {
		return "", err
	}
	return s.Write(KindTree, data)
}

// ReadTree reads and parses a Tree.
func (s *Store) ReadTree(oid OID) (*Tree, error) {
	data, err := s.Read(oid, KindTree)
	if err != nil {
		return nil, err
	}
	t, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", oid, err)
	}
	return t, nil
}

// WriteCommit serializes and stores a Commit.
func (s *Store) WriteCommit(c *Commit) (OID, error) {
	return s.Write(KindCommit, MarshalCommit(c))
}

// ReadCommit reads and parses a Commit.
func (s *Store) ReadCommit(oid OID) (*Commit, error) {
	data, err := s.Read(oid, KindCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", oid, err)
	}
	return c, nil
}
