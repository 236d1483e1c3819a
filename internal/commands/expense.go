package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/splitkit-dev/splitkit/internal/activity"
	"github.com/splitkit-dev/splitkit/internal/importer"
	"github.com/splitkit-dev/splitkit/internal/money"
	"github.com/splitkit-dev/splitkit/internal/report"
)

func newExpenseCommand(g *globals) *cobra.Command {
	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Record, list and delete expenses",
	}
	expenseCmd.AddCommand(
		newExpenseAddCommand(g),
		newExpenseListCommand(g),
		newExpenseDeleteCommand(g),
	)
	return expenseCmd
}

type expenseFlags struct {
	payer        string
	amount       string
	currency     string
	participants []string
	title        string
	category     string
	note         string
	date         string
}

func newExpenseAddCommand(g *globals) *cobra.Command {
	var f expenseFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Record an expense paid by one member and shared by others.

Participants are member IDs or names. A bare participant takes an equal
share; "name=12.50" gives a fixed share in the expense currency. Without
--participant the expense is split equally among all members.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpenseAdd(g, f)
		},
	}

	cmd.Flags().StringVar(&f.payer, "payer", "", "member who paid (required)")
	_ = cmd.MarkFlagRequired("payer")
	cmd.Flags().StringVar(&f.amount, "amount", "", "total amount, e.g. 120.50 (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&f.currency, "currency", "", "currency of the amount, defaults to the trip's reference currency")
	cmd.Flags().StringArrayVar(&f.participants, "participant", nil, "participant, optionally with a custom amount (repeatable)")
	cmd.Flags().StringVar(&f.title, "title", "", "short description")
	cmd.Flags().StringVar(&f.category, "category", "other", "dining, transport, hotel, shopping, activity or other")
	cmd.Flags().StringVar(&f.note, "note", "", "free-form note")
	cmd.Flags().StringVar(&f.date, "date", "", "date as YYYY-MM-DD, defaults to today")

	return cmd
}

func runExpenseAdd(g *globals, f expenseFlags) error {
	t, err := g.open()
	if err != nil {
		return err
	}

	date, err := parseDate(f.date)
	if err != nil {
		return err
	}

	amount, err := money.ParseDecimal(f.amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q", f.amount)
	}

	var parts []importer.Participant
	for _, p := range f.participants {
		ps, err := importer.ParseParticipants(p)
		if err != nil {
			return err
		}
		parts = append(parts, ps...)
	}
	if len(parts) == 0 {
		for _, m := range t.Members.All() {
			parts = append(parts, importer.Participant{Ref: string(m.ID)})
		}
	}

	params, err := importer.BuildRow(importer.Row{
		Date:         date,
		Title:        f.title,
		Category:     f.category,
		Payer:        f.payer,
		Amount:       amount,
		Currency:     f.currency,
		Participants: parts,
		Note:         f.note,
	}, t.Members, t.Config.Rate)
	if err != nil {
		return err
	}

	expenseID, err := t.Expenses.Add(params)
	if err != nil {
		return err
	}

	title := params.Title
	if title == "" {
		title = string(params.Category)
	}
	summary := fmt.Sprintf("%s %s %s paid by %s",
		title, money.Format(params.Amount), t.Config.Currency.Reference, t.Members.Name(params.PayerID))
	if _, err := t.Record(activity.ExpenseAdded, expenseID, summary); err != nil {
		return err
	}

	fmt.Printf("Added expense %s: %s\n", expenseID, summary)
	return nil
}

func newExpenseListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpenseList(g)
		},
	}
}

func runExpenseList(g *globals) error {
	t, err := g.open()
	if err != nil {
		return err
	}
	list, err := t.Expenses.Recent()
	if err != nil {
		return err
	}
	r := report.NewRenderer(os.Stdout, t.Config.Currency.Reference)
	fmt.Print(r.Expenses(list, t.Members.Name))
	return nil
}

func newExpenseDeleteCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <expense-id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpenseDelete(g, args[0])
		},
	}
}

func runExpenseDelete(g *globals, expenseID string) error {
	t, err := g.open()
	if err != nil {
		return err
	}

	e, err := t.Expenses.Get(expenseID)
	if err != nil {
		return err
	}
	if err := t.Expenses.Delete(expenseID); err != nil {
		return err
	}

	summary := fmt.Sprintf("%s %s", e.Title, money.Format(e.Amount))
	if _, err := t.Record(activity.ExpenseDeleted, expenseID, summary); err != nil {
		return err
	}

	fmt.Printf("Deleted expense %s: %s\n", expenseID, summary)
	return nil
}
