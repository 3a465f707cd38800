package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMergeBaseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge-base <commit> <commit>",
		Short: "Print the common ancestor used for a merge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			left, err := resolveCommit(r, args[0])
			if err != nil {
				return err
			}
			right, err := resolveCommit(r, args[1])
			if err != nil {
				return err
			}
			base, ok := r.MergeBase(left, right)
			if !ok {
				return fmt.Errorf("no common ancestor of %s and %s", args[0], args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), base)
			return nil
		},
	}
}
