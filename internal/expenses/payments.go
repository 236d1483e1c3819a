package expenses

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/splitkit-dev/splitkit/internal/model"
	"github.com/splitkit-dev/splitkit/internal/money"
)

// PaymentsHeader is the CSV header for payments.csv.
const PaymentsHeader = "payment_id,date,from_id,to_id,amount,note"

const (
	numPaymentFields = 6
	colPayID         = 0
	colPayDate       = 1
	colPayFrom       = 2
	colPayTo         = 3
	colPayAmount     = 4
	colPayNote       = 5
)

// ReadPayments reads all payments from a payments.csv reader.
func ReadPayments(r io.Reader) ([]model.Payment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numPaymentFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading payments CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var out []model.Payment
	for i, rec := range records[1:] {
		p, err := UnmarshalPayment(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// AppendPayments appends payments to an existing payments.csv writer (no header).
func AppendPayments(w io.Writer, payments []model.Payment) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, p := range payments {
		if err := cw.Write(MarshalPayment(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalPayment converts a Payment to a CSV row.
func MarshalPayment(p model.Payment) []string {
	row := make([]string, numPaymentFields)
	row[colPayID] = p.ID
	row[colPayDate] = p.Date.Format(dateFormat)
	row[colPayFrom] = string(p.From)
	row[colPayTo] = string(p.To)
	row[colPayAmount] = money.Format(p.Amount)
	row[colPayNote] = p.Note
	return row
}

// UnmarshalPayment converts a CSV row to a Payment.
func UnmarshalPayment(record []string) (model.Payment, error) {
	if len(record) != numPaymentFields {
		return model.Payment{}, fmt.Errorf("expected %d fields, got %d", numPaymentFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colPayDate])
	if err != nil {
		return model.Payment{}, fmt.Errorf("parsing date %q: %w", record[colPayDate], err)
	}

	amount, err := money.ParseCents(record[colPayAmount])
	if err != nil {
		return model.Payment{}, fmt.Errorf("parsing amount: %w", err)
	}

	return model.Payment{
		ID:     record[colPayID],
		Date:   date,
		From:   model.MemberID(record[colPayFrom]),
		To:     model.MemberID(record[colPayTo]),
		Amount: amount,
		Note:   record[colPayNote],
	}, nil
}

func paymentsHeader() []string {
	return strings.Split(PaymentsHeader, ",")
}
