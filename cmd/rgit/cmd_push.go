package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/rgit/pkg/remote"
)

func newPushCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "push <remote> [ref]",
		Short: "Copy a ref and its objects to another repository",
		Long:  "The ref defaults to the current branch. The remote is a configured name or a path.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			ref := ""
			if len(args) == 2 {
				ref = args[1]
			} else if ref, err = r.CurrentBranch(); err != nil {
				return err
			}
			if ref == "" {
				return fmt.Errorf("push: HEAD is detached; name the ref to push")
			}

			res, err := remote.Push(cmd.Context(), r, remotePathFor(r, args[0]), ref, remote.PushOptions{Force: force})
			if err != nil {
				return err
			}
			old := "(new)"
			if res.Old != "" {
				old = res.Old.Short()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s..%s %s (%d objects)\n", old, res.New.Short(), res.Ref, res.Objects)
			if res.Missing > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %d local objects were missing and not sent\n", res.Missing)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "update the remote ref even if it is not an ancestor")

	return cmd
}
