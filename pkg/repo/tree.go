package repo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/odvcencio/rgit/pkg/object"
)

// treeNode is one node of the directory tree built from the flat index:
// either a file holding a blob OID or a directory holding named children.
type treeNode struct {
	blob     object.OID
	children map[string]*treeNode
}

func newDirNode() *treeNode {
	return &treeNode{children: make(map[string]*treeNode)}
}

func (n *treeNode) isDir() bool { return n.children != nil }

// buildNodes arranges idx into a node tree. Paths are inserted in sorted
// order; a path that collides with an earlier one (a name used both as a
// file and as a directory) or has an unstorable component is skipped.
func (r *Repo) buildNodes(idx Index) *treeNode {
	root := newDirNode()
	for _, p := range idx.Paths() {
		if err := root.insert(strings.Split(p, "/"), idx[p]); err != nil {
			r.log.Warn("skip index entry", "path", p, "err", err)
		}
	}
	return root
}

func (n *treeNode) insert(parts []string, oid object.OID) error {
	for _, part := range parts {
		if err := object.ValidateEntryName(part); err != nil {
			return err
		}
	}

	cur := n
	for _, dir := range parts[:len(parts)-1] {
		child, ok := cur.children[dir]
		if !ok {
			child = newDirNode()
			cur.children[dir] = child
		} else if !child.isDir() {
			return fmt.Errorf("%q is a file", dir)
		}
		cur = child
	}

	name := parts[len(parts)-1]
	if existing, ok := cur.children[name]; ok && existing.isDir() {
		return fmt.Errorf("%q is a directory", name)
	}
	cur.children[name] = &treeNode{blob: oid}
	return nil
}

// writeNode stores n and all of its subdirectories bottom-up and returns the
// OID of n's Tree object.
func (r *Repo) writeNode(n *treeNode) (object.OID, error) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	t := &object.Tree{}
	for _, name := range names {
		child := n.children[name]
		if !child.isDir() {
			t.Entries = append(t.Entries, object.TreeEntry{Kind: object.KindBlob, OID: child.blob, Name: name})
			continue
		}
		sub, err := r.writeNode(child)
		if err != nil {
			return "", fmt.Errorf("subtree %s: %w", name, err)
		}
		t.Entries = append(t.Entries, object.TreeEntry{Kind: object.KindTree, OID: sub, Name: name})
	}
	return r.Store.WriteTree(t)
}

// WriteTree converts the current index into Tree objects and returns the
// root tree OID. An empty index yields the empty tree.
func (r *Repo) WriteTree() (object.OID, error) {
	idx, err := r.Index.Load()
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	oid, err := r.writeNode(r.buildNodes(idx))
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	return oid, nil
}

// GetTree expands the tree oid recursively into a flat path to blob OID
// mapping. Paths are prefixed with base when it is non-empty. A missing or
// non-tree subtree fails the whole expansion with ErrMissingTree.
func (r *Repo) GetTree(oid object.OID, base string) (map[string]object.OID, error) {
	out := make(map[string]object.OID)
	if err := r.expandTree(oid, base, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) expandTree(oid object.OID, base string, out map[string]object.OID) error {
	t, err := r.Store.ReadTree(oid)
	if err != nil {
		return fmt.Errorf("get tree %s: %w: %w", oid, object.ErrMissingTree, err)
	}
	for _, e := range t.Entries {
		if object.ValidateEntryName(e.Name) != nil {
			r.log.Warn("skip tree entry with invalid name", "tree", oid, "name", e.Name)
			continue
		}
		p := e.Name
		if base != "" {
			p = path.Join(base, e.Name)
		}
		switch e.Kind {
		case object.KindBlob:
			out[p] = e.OID
		case object.KindTree:
			if err := r.expandTree(e.OID, p, out); err != nil {
				return err
			}
		default:
			r.log.Warn("skip tree entry of unknown kind", "tree", oid, "path", p, "kind", e.Kind)
		}
	}
	return nil
}

// ReadTree replaces the index with the contents of tree oid. With
// updateWorking, files tracked by the old index but absent from the tree are
// removed and every path of the tree is written to the working directory.
func (r *Repo) ReadTree(oid object.OID, updateWorking bool) error {
	entries, err := r.GetTree(oid, "")
	if err != nil {
		return fmt.Errorf("read tree: %w", err)
	}
	if err := r.replaceIndex(Index(entries), updateWorking); err != nil {
		return fmt.Errorf("read tree: %w", err)
	}
	return nil
}

// replaceIndex saves idx as the index and, with updateWorking, syncs the
// working directory to it.
func (r *Repo) replaceIndex(idx Index, updateWorking bool) error {
	old, err := r.Index.Load()
	if err != nil {
		return err
	}
	if err := r.Index.Save(idx); err != nil {
		return err
	}
	if !updateWorking {
		return nil
	}

	for _, p := range old.Paths() {
		if _, keep := idx[p]; keep {
			continue
		}
		if err := r.Worktree.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.log.Warn("remove stale tracked file", "path", p, "err", err)
			continue
		}
		removeEmptyParents(r.Worktree, p)
	}
	if skipped := r.Materialize(idx); skipped > 0 {
		r.log.Warn("working tree partially updated", "skipped", skipped)
	}
	return nil
}
