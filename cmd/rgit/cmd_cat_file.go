package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatFileCmd(a *app) *cobra.Command {
	var showKind bool

	cmd := &cobra.Command{
		Use:   "cat-file <object>",
		Short: "Print the content of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			kind, content, err := r.Store.ReadKind(r.GetOID(args[0]))
			if err != nil {
				return err
			}
			if showKind {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}

	cmd.Flags().BoolVarP(&showKind, "kind", "t", false, "print the object kind instead of its content")

	return cmd
}
