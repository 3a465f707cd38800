package repo

import (
	"container/list"

	"github.com/odvcencio/rgit/pkg/object"
)

// IterCommitsAndParents returns every commit reachable from seeds, each
// once. Traversal uses a deque: a commit's first parent is pushed to the
// front and its other parents to the back, so first-parent history is
// listed before merged-in branches. Commits that cannot be read are still
// listed but contribute no parents.
func (r *Repo) IterCommitsAndParents(seeds []object.OID) []object.OID {
	queue := list.New()
	for _, s := range seeds {
		queue.PushBack(s)
	}
	visited := make(map[object.OID]struct{})

	var out []object.OID
	for queue.Len() > 0 {
		oid := queue.Remove(queue.Front()).(object.OID)
		if oid == "" {
			continue
		}
		if _, seen := visited[oid]; seen {
			continue
		}
		visited[oid] = struct{}{}
		out = append(out, oid)

		c, err := r.GetCommit(oid)
		if err != nil {
			r.log.Warn("treating unreadable commit as parentless", "oid", oid, "err", err)
			continue
		}
		if len(c.Parents) == 0 {
			continue
		}
		queue.PushFront(c.Parents[0])
		for _, p := range c.Parents[1:] {
			queue.PushBack(p)
		}
	}
	return out
}

// MergeBase returns the first commit in the traversal order of b that is
// also reachable from a. Among several common ancestors the traversal order
// of b decides. ok is false when the histories are disjoint.
func (r *Repo) MergeBase(a, b object.OID) (object.OID, bool) {
	ancestorsA := make(map[object.OID]struct{})
	for _, oid := range r.IterCommitsAndParents([]object.OID{a}) {
		ancestorsA[oid] = struct{}{}
	}
	for _, oid := range r.IterCommitsAndParents([]object.OID{b}) {
		if _, ok := ancestorsA[oid]; ok {
			return oid, true
		}
	}
	return "", false
}

// IsAncestorOf reports whether maybeAncestor is reachable from commit. A
// commit is its own ancestor.
func (r *Repo) IsAncestorOf(commit, maybeAncestor object.OID) bool {
	if maybeAncestor == "" {
		return false
	}
	for _, oid := range r.IterCommitsAndParents([]object.OID{commit}) {
		if oid == maybeAncestor {
			return true
		}
	}
	return false
}
