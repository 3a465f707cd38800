// Package remote transfers objects and refs between two repositories on the
// local filesystem.
package remote

import (
	"context"
	"sort"

	"github.com/odvcencio/rgit/pkg/object"
	"github.com/odvcencio/rgit/pkg/repo"
)

// ObjectSet is a set of OIDs.
type ObjectSet map[object.OID]struct{}

// Sorted returns the members in ascending order.
func (s ObjectSet) Sorted() []object.OID {
	out := make([]object.OID, 0, len(s))
	for oid := range s {
		out = append(out, oid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ObjectsInCommits returns the object closure of oids in r: every commit
// reachable from them, their trees recursively, and every blob those trees
// name. Commits and trees that cannot be read are logged and left out.
func ObjectsInCommits(ctx context.Context, r *repo.Repo, oids []object.OID) (ObjectSet, error) {
	log := r.Logger()
	out := make(ObjectSet)
	for _, oid := range r.IterCommitsAndParents(oids) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := r.GetCommit(oid)
		if err != nil {
			log.Warn("closure: skip unreadable commit", "oid", oid, "err", err)
			continue
		}
		out[oid] = struct{}{}
		if err := addTree(ctx, r, c.Tree, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func addTree(ctx context.Context, r *repo.Repo, oid object.OID, out ObjectSet) error {
	if _, seen := out[oid]; seen {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t, err := r.Store.ReadTree(oid)
	if err != nil {
		r.Logger().Warn("closure: skip unreadable tree", "oid", oid, "err", err)
		return nil
	}
	out[oid] = struct{}{}
	for _, e := range t.Entries {
		switch e.Kind {
		case object.KindBlob:
			out[e.OID] = struct{}{}
		case object.KindTree:
			if err := addTree(ctx, r, e.OID, out); err != nil {
				return err
			}
		}
	}
	return nil
}
