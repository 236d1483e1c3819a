// Package report renders balances and settlement plans for people: CSV files
// for spreadsheets and styled tables for the terminal.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/splitkit-dev/splitkit/internal/balance"
	"github.com/splitkit-dev/splitkit/internal/expenses"
	"github.com/splitkit-dev/splitkit/internal/model"
	"github.com/splitkit-dev/splitkit/internal/money"
)

// Names resolves a member ID to a display name.
type Names func(model.MemberID) string

const (
	// BalancesHeader is the header of balances.csv.
	BalancesHeader = "member_id,name,paid,consumed,sent,received,balance"
	// SettlementsHeader is the header of settlements.csv.
	SettlementsHeader = "from_id,from_name,to_id,to_name,amount"

	BalancesFile    = "balances.csv"
	SettlementsFile = "settlements.csv"
	ExpensesFile    = "expenses.csv"
)

// Data is everything an export writes.
type Data struct {
	Summaries []balance.Summary
	Transfers []model.Transfer
	Expenses  []model.Expense
	Names     Names
}

// WriteBalances writes one row per member summary.
func WriteBalances(w io.Writer, summaries []balance.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(BalancesHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, s := range summaries {
		row := []string{
			string(s.MemberID),
			s.Name,
			money.Format(s.Paid),
			money.Format(s.Consumed),
			money.Format(s.Sent),
			money.Format(s.Received),
			money.Format(s.Balance),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing balance for %s: %w", s.MemberID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSettlements writes one row per suggested transfer, in plan order.
func WriteSettlements(w io.Writer, transfers []model.Transfer, names Names) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(SettlementsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range transfers {
		row := []string{string(t.From), names(t.From), string(t.To), names(t.To), money.Format(t.Amount)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing transfer %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export writes balances.csv, settlements.csv and expenses.csv into dir,
// creating it if needed, and returns the paths written.
func Export(dir string, data Data) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{BalancesFile, func(w io.Writer) error { return WriteBalances(w, data.Summaries) }},
		{SettlementsFile, func(w io.Writer) error { return WriteSettlements(w, data.Transfers, data.Names) }},
		{ExpensesFile, func(w io.Writer) error { return expenses.WriteExpenses(w, data.Expenses) }},
	}

	var paths []string
	for _, wr := range writers {
		path := filepath.Join(dir, wr.name)
		if err := writeFile(path, wr.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
