// Package diff compares flat path to blob OID mappings such as expanded
// trees, the index and the working tree.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/rgit/pkg/object"
)

// Action classifies what happened to a path between two mappings.
type Action string

const (
	NewFile  Action = "new file"
	Deleted  Action = "deleted"
	Modified Action = "modified"
)

// Change is one path of ChangedFiles in sorted form.
type Change struct {
	Path   string
	Action Action
}

// ChangedFiles reports every path whose OID differs between from and to.
func ChangedFiles(from, to map[string]object.OID) map[string]Action {
	out := make(map[string]Action)
	for p, oid := range from {
		switch other, ok := to[p]; {
		case !ok:
			out[p] = Deleted
		case other != oid:
			out[p] = Modified
		}
	}
	for p := range to {
		if _, ok := from[p]; !ok {
			out[p] = NewFile
		}
	}
	return out
}

// Sorted returns the changes ordered by path.
func Sorted(changes map[string]Action) []Change {
	out := make([]Change, 0, len(changes))
	for p, a := range changes {
		out = append(out, Change{Path: p, Action: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// DiffTree lists the paths that differ between from and to, one
// "changed: <path>" line each, sorted by path.
func DiffTree(from, to map[string]object.OID) string {
	var b strings.Builder
	for _, c := range Sorted(ChangedFiles(from, to)) {
		fmt.Fprintf(&b, "changed: %s\n", c.Path)
	}
	return b.String()
}
