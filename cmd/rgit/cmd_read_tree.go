package main

import (
	"github.com/spf13/cobra"
)

func newReadTreeCmd(a *app) *cobra.Command {
	var indexOnly bool

	cmd := &cobra.Command{
		Use:   "read-tree <tree>",
		Short: "Replace the index, and by default the working tree, with a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			return r.ReadTree(r.GetOID(args[0]), !indexOnly)
		},
	}

	cmd.Flags().BoolVar(&indexOnly, "index-only", false, "update the index without touching the working tree")

	return cmd
}
