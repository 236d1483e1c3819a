package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/splitkit-dev/splitkit/internal/activity"
	"github.com/splitkit-dev/splitkit/internal/report"
)

func newExportCommand(g *globals) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write balances, settlements and expenses as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(g, out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output directory, defaults to <trip>/exports")

	return cmd
}

func runExport(g *globals, out string) error {
	t, err := g.open()
	if err != nil {
		return err
	}
	if out == "" {
		out = filepath.Join(t.Dir, "exports")
	}

	pos, err := t.Position()
	if err != nil {
		return err
	}

	paths, err := report.Export(out, report.Data{
		Summaries: pos.Summaries,
		Transfers: pos.Transfers,
		Expenses:  pos.Expenses,
		Names:     t.Members.Name,
	})
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("export %d expenses, %d transfers", len(pos.Expenses), len(pos.Transfers))
	if _, err := t.Record(activity.Exported, out, summary); err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Printf("Wrote %s\n", p)
	}
	return nil
}
