package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/rgit/pkg/repo"
)

func newBranchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name] [start]",
		Short: "List or create branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			// Create mode.
			if len(args) > 0 {
				start := repo.HeadRef
				if len(args) == 2 {
					start = args[1]
				}
				target, err := resolveCommit(r, start)
				if err != nil {
					return fmt.Errorf("branch: %w", err)
				}
				return r.CreateBranch(args[0], target)
			}

			// List mode.
			branches, err := r.BranchNames()
			if err != nil {
				return err
			}
			current, _ := r.CurrentBranch()

			out := cmd.OutOrStdout()
			for _, b := range branches {
				if b == current {
					fmt.Fprintf(out, "* %s\n", b)
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}
}
