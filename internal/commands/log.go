package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogCommand(g *globals) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent trip activity, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(g, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show, 0 for all")

	return cmd
}

func runLog(g *globals, limit int) error {
	t, err := g.open()
	if err != nil {
		return err
	}
	entries, err := t.Activity.Latest(limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		commit := e.CommitHash
		if commit == "" {
			commit = "-"
		}
		fmt.Printf("%s  %-8s  %-18s  %s\n", e.Time.Local().Format("2006-01-02 15:04"), commit, e.Action, e.Summary)
	}
	return nil
}
