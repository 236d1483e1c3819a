package expenses

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitkit-dev/splitkit/internal/model"
	"github.com/splitkit-dev/splitkit/internal/money"
)

// Header is the CSV header for expenses.csv.
const Header = "expense_id,date,title,category,payer_id,amount,original_currency,original_amount,participants,note"

const (
	numFields   = 10
	dateFormat  = "2006-01-02"
	colID       = 0
	colDate     = 1
	colTitle    = 2
	colCategory = 3
	colPayer    = 4
	colAmount   = 5
	colOrigCur  = 6
	colOrigAmt  = 7
	colShares   = 8
	colNote     = 9
)

// ReadExpenses reads all expenses from an expenses.csv reader.
func ReadExpenses(r io.Reader) ([]model.Expense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading expenses CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var out []model.Expense
	for i, rec := range records[1:] {
		e, err := UnmarshalExpense(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// WriteExpenses writes expenses to a writer, including the header.
func WriteExpenses(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range expenses {
		if err := cw.Write(MarshalExpense(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendExpenses appends expenses to an existing expenses.csv writer (no header).
func AppendExpenses(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	for i, e := range expenses {
		if err := cw.Write(MarshalExpense(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalExpense converts an Expense to a CSV row.
func MarshalExpense(e model.Expense) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colDate] = e.Date.Format(dateFormat)
	row[colTitle] = e.Title
	row[colCategory] = string(e.Category)
	row[colPayer] = string(e.PayerID)
	row[colAmount] = money.Format(e.Amount)
	row[colOrigCur] = e.OriginalCurrency
	if e.OriginalCurrency != "" {
		row[colOrigAmt] = e.OriginalAmount.String()
	}
	row[colShares] = FormatShares(e.Shares)
	row[colNote] = e.Note
	return row
}

// UnmarshalExpense converts a CSV row to an Expense.
func UnmarshalExpense(record []string) (model.Expense, error) {
	if len(record) != numFields {
		return model.Expense{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := money.ParseCents(record[colAmount])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing amount: %w", err)
	}

	var origAmount decimal.Decimal
	if record[colOrigAmt] != "" {
		origAmount, err = decimal.NewFromString(record[colOrigAmt])
		if err != nil {
			return model.Expense{}, fmt.Errorf("parsing original_amount %q: %w", record[colOrigAmt], err)
		}
	}

	shares, err := ParseShares(record[colShares])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing participants: %w", err)
	}

	return model.Expense{
		ID:               record[colID],
		Date:             date,
		Title:            record[colTitle],
		Category:         model.Category(record[colCategory]),
		PayerID:          model.MemberID(record[colPayer]),
		Amount:           amount,
		OriginalCurrency: record[colOrigCur],
		OriginalAmount:   origAmount,
		Shares:           shares,
		Note:             record[colNote],
	}, nil
}

// FormatShares encodes shares as "alice;bob=12.50": a bare ID is an equal
// share, ID=amount a custom one.
func FormatShares(shares []model.Share) string {
	parts := make([]string, len(shares))
	for i, s := range shares {
		if s.IsCustom() {
			parts[i] = string(s.MemberID) + "=" + money.Format(*s.Custom)
		} else {
			parts[i] = string(s.MemberID)
		}
	}
	return strings.Join(parts, ";")
}

// ParseShares decodes the format written by FormatShares.
func ParseShares(s string) ([]model.Share, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []model.Share
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		id, amount, custom := strings.Cut(part, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("empty participant in %q", s)
		}
		if !custom {
			out = append(out, model.EqualShare(model.MemberID(id)))
			continue
		}
		cents, err := money.ParseCents(amount)
		if err != nil {
			return nil, fmt.Errorf("share of %q: %w", id, err)
		}
		out = append(out, model.CustomShare(model.MemberID(id), cents))
	}
	return out, nil
}
