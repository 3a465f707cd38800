package main

import (
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/odvcencio/rgit/pkg/diff"
	"github.com/odvcencio/rgit/pkg/object"
	"github.com/odvcencio/rgit/pkg/repo"
)

// diffSide is one side of a comparison: a path to OID mapping plus a way to
// load the bytes behind each path.
type diffSide struct {
	files map[string]object.OID
	load  func(path string, oid object.OID) ([]byte, error)
}

func newDiffCmd(a *app) *cobra.Command {
	var patch bool
	var cached bool

	cmd := &cobra.Command{
		Use:   "diff [from] [to]",
		Short: "Show changed paths between commits, the index and the working tree",
		Long: `With no arguments, compare HEAD with the working tree. With one
argument, compare that commit with the working tree. With two, compare the
two commits. --cached uses the index in place of the working tree.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			fromName := repo.HeadRef
			if len(args) > 0 {
				fromName = args[0]
			}
			from, err := commitSide(r, fromName)
			if err != nil {
				return err
			}

			var to diffSide
			switch {
			case len(args) == 2:
				to, err = commitSide(r, args[1])
			case cached:
				to, err = indexSide(r)
			default:
				to, err = worktreeSide(r)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !patch {
				fmt.Fprint(out, diff.DiffTree(from.files, to.files))
				return nil
			}
			return writePatch(out, from, to)
		},
	}

	cmd.Flags().BoolVarP(&patch, "patch", "p", false, "show line diffs instead of changed paths")
	cmd.Flags().BoolVar(&cached, "cached", false, "compare with the index instead of the working tree")

	return cmd
}

func writePatch(out io.Writer, from, to diffSide) error {
	for _, c := range diff.Sorted(diff.ChangedFiles(from.files, to.files)) {
		var before, after []byte
		var err error
		if oid, ok := from.files[c.Path]; ok {
			if before, err = from.load(c.Path, oid); err != nil {
				return err
			}
		}
		if oid, ok := to.files[c.Path]; ok {
			if after, err = to.load(c.Path, oid); err != nil {
				return err
			}
		}
		fmt.Fprint(out, diff.FormatLineDiff(c.Path, before, after))
	}
	return nil
}

func storeLoader(r *repo.Repo) func(string, object.OID) ([]byte, error) {
	return func(_ string, oid object.OID) ([]byte, error) {
		return r.Store.Read(oid, object.KindBlob)
	}
}

// commitSide expands the tree of the named commit. HEAD before the first
// commit is an empty side.
func commitSide(r *repo.Repo, name string) (diffSide, error) {
	side := diffSide{files: map[string]object.OID{}, load: storeLoader(r)}
	if name == repo.HeadRef {
		head, err := r.GetRef(repo.HeadRef, true)
		if err != nil {
			return diffSide{}, err
		}
		if head.Value == "" {
			return side, nil
		}
	}
	oid, err := resolveCommit(r, name)
	if err != nil {
		return diffSide{}, fmt.Errorf("diff: %w", err)
	}
	c, err := r.GetCommit(oid)
	if err != nil {
		return diffSide{}, err
	}
	if side.files, err = r.GetTree(c.Tree, ""); err != nil {
		return diffSide{}, err
	}
	return side, nil
}

func indexSide(r *repo.Repo) (diffSide, error) {
	idx, err := r.Index.Load()
	if err != nil {
		return diffSide{}, err
	}
	return diffSide{files: idx, load: storeLoader(r)}, nil
}

func worktreeSide(r *repo.Repo) (diffSide, error) {
	files, err := r.WorkingTree()
	if err != nil {
		return diffSide{}, err
	}
	return diffSide{files: files, load: func(p string, _ object.OID) ([]byte, error) {
		return util.ReadFile(r.Worktree, p)
	}}, nil
}
