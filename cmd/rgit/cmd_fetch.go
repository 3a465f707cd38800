package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/odvcencio/rgit/pkg/remote"
	"github.com/odvcencio/rgit/pkg/repo"
)

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <remote>",
		Short: "Copy branches and their objects from another repository",
		Long:  "The remote is a name configured with 'rgit remote add' or a path to another repository.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			res, err := remote.Fetch(cmd.Context(), r, remotePathFor(r, args[0]))
			if err != nil {
				return err
			}

			names := make([]string, 0, len(res.Refs))
			for name := range res.Refs {
				names = append(names, name)
			}
			sort.Strings(names)
			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintf(out, "  %s -> %s\n", res.Refs[name].Short(), name)
			}
			fmt.Fprintf(out, "fetched %d objects\n", res.Objects)
			if res.Missing > 0 {
				fmt.Fprintf(out, "warning: %d objects missing from the remote were skipped\n", res.Missing)
			}
			return nil
		},
	}
}

// remotePathFor resolves a configured remote name, falling back to treating
// the argument as a path.
func remotePathFor(r *repo.Repo, nameOrPath string) string {
	if p, err := r.RemotePath(nameOrPath); err == nil {
		return p
	}
	return nameOrPath
}
