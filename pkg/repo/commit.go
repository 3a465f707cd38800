package repo

import (
	"fmt"

	"github.com/odvcencio/rgit/pkg/object"
)

// Commit creates a new commit from the current index.
//
//  1. Write the index as a tree
//  2. Parents: HEAD (when it names a commit), then MERGE_HEAD (when set)
//  3. Write the commit
//  4. Update HEAD, following it to the current branch
//  5. Clear MERGE_HEAD
//
// The message is stored verbatim. No ref is touched if the tree or commit
// cannot be written.
func (r *Repo) Commit(message string) (object.OID, error) {
	tree, err := r.WriteTree()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	var parents []object.OID
	head, err := r.GetRef(HeadRef, true)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if head.Value != "" {
		parents = append(parents, head.OID())
	}
	mergeHead, err := r.GetRef(MergeHeadRef, true)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if mergeHead.Value != "" {
		parents = append(parents, mergeHead.OID())
	}

	oid, err := r.Store.WriteCommit(&object.Commit{
		Tree:    tree,
		Parents: parents,
		Message: message,
	})
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	if err := r.UpdateRef(HeadRef, DirectRef(oid), true); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if mergeHead.Value != "" {
		if err := r.DeleteRef(MergeHeadRef, false); err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
	}
	r.log.Info("committed", "oid", oid, "parents", len(parents))
	return oid, nil
}

// GetCommit reads and parses the commit oid. Every failure wraps
// ErrMalformedObject together with the underlying cause.
func (r *Repo) GetCommit(oid object.OID) (*object.Commit, error) {
	c, err := r.Store.ReadCommit(oid)
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w: %w", oid, object.ErrMalformedObject, err)
	}
	return c, nil
}

// LogEntry is one commit of a history listing.
type LogEntry struct {
	OID    object.OID
	Commit *object.Commit // nil when the commit could not be read
	Refs   []string       // refs pointing directly at OID
}

// Log lists the commits reachable from seeds in traversal order, annotated
// with the refs that point at them. limit <= 0 means no limit.
func (r *Repo) Log(seeds []object.OID, limit int) ([]LogEntry, error) {
	refs, err := r.IterRefs("", true)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	byOID := make(map[object.OID][]string)
	for _, ref := range refs {
		if ref.Value.Value != "" {
			byOID[ref.Value.OID()] = append(byOID[ref.Value.OID()], ref.Name)
		}
	}

	var out []LogEntry
	for _, oid := range r.IterCommitsAndParents(seeds) {
		if limit > 0 && len(out) >= limit {
			break
		}
		c, err := r.GetCommit(oid)
		if err != nil {
			c = nil
		}
		out = append(out, LogEntry{OID: oid, Commit: c, Refs: byOID[oid]})
	}
	return out, nil
}
