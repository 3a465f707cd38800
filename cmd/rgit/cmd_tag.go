package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/rgit/pkg/repo"
)

func newTagCmd(a *app) *cobra.Command {
	var showOID bool

	cmd := &cobra.Command{
		Use:   "tag [name] [target]",
		Short: "List or create tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				names, err := r.TagNames()
				if err != nil {
					return err
				}
				for _, name := range names {
					if showOID {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.GetOID("refs/tags/"+name), name)
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
				}
				return nil
			}

			target := repo.HeadRef
			if len(args) == 2 {
				target = args[1]
			}
			oid, err := resolveCommit(r, target)
			if err != nil {
				return fmt.Errorf("tag: %w", err)
			}
			return r.CreateTag(args[0], oid)
		},
	}

	cmd.Flags().BoolVar(&showOID, "show-oid", false, "show tag targets when listing")

	return cmd
}
