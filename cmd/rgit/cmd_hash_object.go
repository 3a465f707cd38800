package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/rgit/pkg/object"
)

func newHashObjectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Store a file as a blob and print its OID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("hash-object: %w", err)
			}
			oid, err := r.Store.Write(object.KindBlob, data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), oid)
			return nil
		},
	}
}
