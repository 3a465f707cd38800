package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/odvcencio/rgit/pkg/merge"
	"github.com/odvcencio/rgit/pkg/object"
)

// ErrMergeInProgress is returned by Merge while MERGE_HEAD is set.
var ErrMergeInProgress = errors.New("merge in progress")

// MergeState is the outcome of Merge.
type MergeState int

const (
	// MergeUpToDate: the other commit is already reachable from HEAD.
	MergeUpToDate MergeState = iota + 1
	// MergeFastForward: HEAD was moved to the other commit.
	MergeFastForward
	// MergeInProgress: the merged result is in the index and working tree
	// and MERGE_HEAD is set; a commit completes the merge.
	MergeInProgress
)

func (s MergeState) String() string {
	switch s {
	case MergeUpToDate:
		return "up-to-date"
	case MergeFastForward:
		return "fast-forward"
	case MergeInProgress:
		return "in-progress"
	default:
		return fmt.Sprintf("MergeState(%d)", int(s))
	}
}

// MergeResult describes what Merge did.
type MergeResult struct {
	State     MergeState
	Head      object.OID // HEAD before the merge
	Other     object.OID
	Base      object.OID // "" when the histories share no commit
	Conflicts []string   // paths written with conflict markers
	Skipped   []string   // paths merged with an unreadable side taken as empty
}

// Merge merges the commit named by other into HEAD.
//
//   - other already reachable from HEAD: nothing changes
//   - HEAD is the merge base: fast-forward, the other tree is checked out and
//     HEAD (through the current branch) moves to other
//   - otherwise the base, head and other trees are merged, the result is
//     written to the index and working tree, and MERGE_HEAD is set
//
// Every tree is resolved and merged before any ref, index entry or file is
// touched, so a failure leaves the repository unchanged.
func (r *Repo) Merge(ctx context.Context, other string) (*MergeResult, error) {
	mergeHead, err := r.GetRef(MergeHeadRef, true)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if mergeHead.Value != "" {
		return nil, fmt.Errorf("merge: %w", ErrMergeInProgress)
	}

	headRef, err := r.GetRef(HeadRef, true)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	head := headRef.OID()
	if head == "" {
		return nil, fmt.Errorf("merge: HEAD does not point at a commit")
	}
	headCommit, err := r.GetCommit(head)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	otherOID := r.GetOID(other)
	otherCommit, err := r.GetCommit(otherOID)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", other, err)
	}

	res := &MergeResult{Head: head, Other: otherOID}
	if base, ok := r.MergeBase(head, otherOID); ok {
		res.Base = base
	}

	switch res.Base {
	case otherOID:
		res.State = MergeUpToDate
		return res, nil
	case head:
		if err := r.ReadTree(otherCommit.Tree, true); err != nil {
			return nil, fmt.Errorf("merge: fast-forward: %w", err)
		}
		if err := r.UpdateRef(HeadRef, DirectRef(otherOID), true); err != nil {
			if rerr := r.ReadTree(headCommit.Tree, true); rerr != nil {
				r.log.Warn("restore index after failed fast-forward", "err", rerr)
			}
			return nil, fmt.Errorf("merge: fast-forward: %w", err)
		}
		r.log.Info("fast-forward", "from", head, "to", otherOID)
		res.State = MergeFastForward
		return res, nil
	}

	baseTree := map[string]object.OID{}
	if res.Base != "" {
		baseCommit, err := r.GetCommit(res.Base)
		if err != nil {
			return nil, fmt.Errorf("merge: base: %w", err)
		}
		if baseTree, err = r.GetTree(baseCommit.Tree, ""); err != nil {
			return nil, fmt.Errorf("merge: base: %w", err)
		}
	}
	headTree, err := r.GetTree(headCommit.Tree, "")
	if err != nil {
		return nil, fmt.Errorf("merge: head: %w", err)
	}
	otherTree, err := r.GetTree(otherCommit.Tree, "")
	if err != nil {
		return nil, fmt.Errorf("merge: other: %w", err)
	}

	m, err := r.Merger()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	merged, err := merge.Trees(ctx, r.Store, m, baseTree, headTree, otherTree)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	for _, p := range merged.Skipped {
		r.log.Warn("merged with unreadable side", "path", p)
	}

	idx := make(Index, len(merged.Kept)+len(merged.Files))
	for p, oid := range merged.Kept {
		idx[p] = oid
	}
	for p, data := range merged.Files {
		oid, err := r.Store.Write(object.KindBlob, data)
		if err != nil {
			return nil, fmt.Errorf("merge: write %s: %w", p, err)
		}
		idx[p] = oid
	}

	if err := r.UpdateRef(MergeHeadRef, DirectRef(otherOID), false); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if err := r.replaceIndex(idx, true); err != nil {
		if derr := r.DeleteRef(MergeHeadRef, false); derr != nil {
			r.log.Warn("remove MERGE_HEAD after failed merge", "err", derr)
		}
		return nil, fmt.Errorf("merge: %w", err)
	}

	res.State = MergeInProgress
	res.Conflicts = merged.Conflicts
	res.Skipped = merged.Skipped
	r.log.Info("merged", "head", head, "other", otherOID, "base", res.Base, "conflicts", len(res.Conflicts))
	return res, nil
}
