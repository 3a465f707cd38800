package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newRemoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage named remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			names, err := r.RemoteNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				p, err := r.RemotePath(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, p)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <path>",
		Short: "Add or update a named remote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve remote path: %w", err)
			}
			if err := r.SetRemote(args[0], abs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added remote %q -> %s\n", args[0], abs)
			return nil
		},
	})

	return cmd
}
