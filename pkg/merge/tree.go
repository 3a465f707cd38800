package merge

import (
	"context"
	"fmt"
	"sort"

	"github.com/odvcencio/rgit/pkg/diff3"
	"github.com/odvcencio/rgit/pkg/object"
)

// BlobSource reads object content. *object.Store satisfies it.
type BlobSource interface {
	Read(oid object.OID, expected object.Kind) ([]byte, error)
}

// Result is the outcome of a tree merge. Every surviving path is in exactly
// one of Kept and Files.
type Result struct {
	Kept      map[string]object.OID // trivially resolved paths, never read
	Files     map[string][]byte     // paths merged by the Merger
	Conflicts []string              // paths whose content carries conflict markers, sorted
	Skipped   []string              // merged paths with an unreadable side, sorted
}

// Trees merges three flat path to blob mappings. For every path in their
// union:
//   - head and other agree: that version is kept
//   - one side is unchanged from base: the other side wins, and a deletion
//     on that side drops the path
//   - otherwise the three blobs are merged by m
//
// An absent side is "" in the comparison and empty input to m. A side that
// cannot be read is merged as empty input and the path is listed in Skipped.
// Only a Merger failure or cancellation aborts.
func Trees(ctx context.Context, src BlobSource, m Merger, base, head, other map[string]object.OID) (*Result, error) {
	res := &Result{Kept: make(map[string]object.OID), Files: make(map[string][]byte)}
	for _, p := range unionPaths(base, head, other) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, h, o := base[p], head[p], other[p]

		var keep object.OID
		switch {
		case h == o:
			keep = h
		case h == b:
			keep = o
		case o == b:
			keep = h
		default:
			var (
				inputs     [3][]byte
				unreadable bool
			)
			for i, oid := range []object.OID{b, h, o} {
				data, err := readSide(src, oid)
				if err != nil {
					unreadable = true
				}
				inputs[i] = data
			}
			data, err := m.Merge(ctx, inputs[0], inputs[1], inputs[2])
			if err != nil {
				return nil, fmt.Errorf("merge %s: %w", p, err)
			}
			res.Files[p] = data
			if unreadable {
				res.Skipped = append(res.Skipped, p)
			}
			if diff3.HasConflictMarkers(data) {
				res.Conflicts = append(res.Conflicts, p)
			}
			continue
		}
		if keep != "" {
			res.Kept[p] = keep
		}
	}
	return res, nil
}

// Blobs merges three versions of one file. An empty OID stands for an
// absent version and is merged as empty content. Unlike Trees, an unreadable
// version is an error.
func Blobs(ctx context.Context, src BlobSource, m Merger, base, head, other object.OID) ([]byte, error) {
	var inputs [3][]byte
	for i, oid := range []object.OID{base, head, other} {
		data, err := readSide(src, oid)
		if err != nil {
			return nil, err
		}
		inputs[i] = data
	}
	return m.Merge(ctx, inputs[0], inputs[1], inputs[2])
}

func readSide(src BlobSource, oid object.OID) ([]byte, error) {
	if oid == "" {
		return nil, nil
	}
	return src.Read(oid, object.KindBlob)
}

func unionPaths(sets ...map[string]object.OID) []string {
	seen := make(map[string]struct{})
	for _, s := range sets {
		for p := range s {
			seen[p] = struct{}{}
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
