package repo

import (
	"fmt"

	"github.com/odvcencio/rgit/pkg/diff"
	"github.com/odvcencio/rgit/pkg/object"
)

// Status summarizes the repository state relative to HEAD.
type Status struct {
	Branch    string     // current branch, "" when detached
	Head      object.OID // "" before the first commit
	MergeHead object.OID // set while a merge awaits its commit
	Staged    []diff.Change
	Unstaged  []diff.Change
}

// Status compares HEAD's tree with the index (staged changes) and the
// index with the working tree (unstaged changes).
func (r *Repo) Status() (*Status, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	head, err := r.GetRef(HeadRef, true)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	mergeHead, err := r.GetRef(MergeHeadRef, true)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	headTree := map[string]object.OID{}
	if head.Value != "" {
		c, err := r.GetCommit(head.OID())
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		if headTree, err = r.GetTree(c.Tree, ""); err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
	}
	idx, err := r.Index.Load()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	work, err := r.WorkingTree()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	return &Status{
		Branch:    branch,
		Head:      head.OID(),
		MergeHead: mergeHead.OID(),
		Staged:    diff.Sorted(diff.ChangedFiles(headTree, idx)),
		Unstaged:  diff.Sorted(diff.ChangedFiles(idx, work)),
	}, nil
}
