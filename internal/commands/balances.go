package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/splitkit-dev/splitkit/internal/report"
)

func newBalancesCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show what each member paid, consumed and is owed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalances(g)
		},
	}
}

func runBalances(g *globals) error {
	t, err := g.open()
	if err != nil {
		return err
	}
	pos, err := t.Position()
	if err != nil {
		return err
	}
	r := report.NewRenderer(os.Stdout, t.Config.Currency.Reference)
	fmt.Print(r.Balances(pos.Summaries))
	return nil
}

func newSettleCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "Suggest the transfers that settle every balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettle(g)
		},
	}
}

func runSettle(g *globals) error {
	t, err := g.open()
	if err != nil {
		return err
	}
	pos, err := t.Position()
	if err != nil {
		return err
	}
	r := report.NewRenderer(os.Stdout, t.Config.Currency.Reference)
	fmt.Print(r.Settlement(pos.Transfers, t.Members.Name))
	return nil
}
