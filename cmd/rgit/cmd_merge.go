package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/rgit/pkg/repo"
)

func newMergeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch|commit>",
		Short: "Merge another commit into HEAD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			res, err := r.Merge(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch res.State {
			case repo.MergeUpToDate:
				fmt.Fprintln(out, "already up to date")
			case repo.MergeFastForward:
				fmt.Fprintf(out, "fast-forward %s..%s\n", res.Head.Short(), res.Other.Short())
			case repo.MergeInProgress:
				fmt.Fprintf(out, "merged %s into the working tree (base %s)\n", res.Other.Short(), res.Base.Short())
				for _, p := range res.Conflicts {
					fmt.Fprintf(out, "  conflict: %s\n", p)
				}
				for _, p := range res.Skipped {
					fmt.Fprintf(out, "  unreadable, merged as empty: %s\n", p)
				}
				if len(res.Conflicts) > 0 {
					fmt.Fprintln(out, "fix conflicts, add the files and run rgit commit")
				} else {
					fmt.Fprintln(out, "run rgit commit to record the merge")
				}
			}
			return nil
		},
	}
}
