package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch|commit>",
		Short: "Switch the working tree to a branch or commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			if err := r.Checkout(args[0]); err != nil {
				return err
			}
			if r.IsBranch(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "switched to branch '%s'\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now at %s\n", r.GetOID(args[0]).Short())
			}
			return nil
		},
	}
}
