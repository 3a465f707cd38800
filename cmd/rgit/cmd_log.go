package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/rgit/pkg/object"
	"github.com/odvcencio/rgit/pkg/repo"
)

func newLogCmd(a *app) *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [commits...]",
		Short: "Show commit history",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{repo.HeadRef}
			}
			seeds := make([]object.OID, 0, len(args))
			for _, arg := range args {
				oid, err := resolveCommit(r, arg)
				if err != nil {
					return fmt.Errorf("log: %w", err)
				}
				seeds = append(seeds, oid)
			}

			entries, err := r.Log(seeds, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				printLogEntry(out, e, oneline)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "one line per commit")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits shown")

	return cmd
}

func printLogEntry(out io.Writer, e repo.LogEntry, oneline bool) {
	decoration := ""
	if len(e.Refs) > 0 {
		decoration = " (" + strings.Join(e.Refs, ", ") + ")"
	}

	if e.Commit == nil {
		fmt.Fprintf(out, "commit %s%s (unreadable)\n", e.OID, decoration)
		return
	}
	if oneline {
		fmt.Fprintf(out, "%s%s %s\n", e.OID.Short(), decoration, firstLine(e.Commit.Message))
		return
	}

	fmt.Fprintf(out, "commit %s%s\n", e.OID, decoration)
	if len(e.Commit.Parents) > 1 {
		shorts := make([]string, len(e.Commit.Parents))
		for i, p := range e.Commit.Parents {
			shorts[i] = p.Short()
		}
		fmt.Fprintf(out, "Merge: %s\n", strings.Join(shorts, " "))
	}
	fmt.Fprintln(out)
	for _, line := range strings.Split(strings.TrimRight(e.Commit.Message, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out)
}
