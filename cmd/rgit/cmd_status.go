package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/rgit/pkg/diff"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			st, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case st.Branch != "" && st.Head == "":
				fmt.Fprintf(out, "on %s (no commits yet)\n", st.Branch)
			case st.Branch != "":
				fmt.Fprintf(out, "on %s\n", st.Branch)
			default:
				fmt.Fprintf(out, "HEAD detached at %s\n", st.Head.Short())
			}
			if st.MergeHead != "" {
				fmt.Fprintf(out, "merging %s (commit to conclude)\n", st.MergeHead.Short())
			}

			printChanges(out, "changes to be committed:", st.Staged)
			printChanges(out, "changes not staged for commit:", st.Unstaged)
			return nil
		},
	}
}

func printChanges(out io.Writer, title string, changes []diff.Change) {
	if len(changes) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, title)
	for _, c := range changes {
		fmt.Fprintf(out, "  %-9s %s\n", string(c.Action)+":", c.Path)
	}
}
