package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splitkit-dev/splitkit/internal/activity"
	"github.com/splitkit-dev/splitkit/internal/expenses"
	"github.com/splitkit-dev/splitkit/internal/money"
)

func newPayCommand(g *globals) *cobra.Command {
	var from, to, amount, date, note string

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Record a repayment between two members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPay(g, from, to, amount, date, note)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "member who paid (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "member who received (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in the reference currency (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD, defaults to today")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")

	return cmd
}

func runPay(g *globals, fromRef, toRef, amount, date, note string) error {
	t, err := g.open()
	if err != nil {
		return err
	}

	from, ok := t.Members.Resolve(fromRef)
	if !ok {
		return fmt.Errorf("unknown member %q", fromRef)
	}
	to, ok := t.Members.Resolve(toRef)
	if !ok {
		return fmt.Errorf("unknown member %q", toRef)
	}

	cents, err := money.ParseCents(amount)
	if err != nil {
		return err
	}
	day, err := parseDate(date)
	if err != nil {
		return err
	}

	paymentID, err := t.Expenses.AddPayment(expenses.PaymentParams{
		Date:   day,
		From:   from.ID,
		To:     to.ID,
		Amount: cents,
		Note:   note,
	})
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("%s paid %s %s %s", from.Name, to.Name, money.Format(cents), t.Config.Currency.Reference)
	if _, err := t.Record(activity.PaymentAdded, paymentID, summary); err != nil {
		return err
	}

	fmt.Printf("Recorded payment %s: %s\n", paymentID, summary)
	return nil
}
