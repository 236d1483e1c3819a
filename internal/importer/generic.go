package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/splitkit-dev/splitkit/internal/money"
)

// GenericHeader is the header of the generic import format. Participants are
// separated by ";" and may carry a custom amount as "name=12.50".
const GenericHeader = "date,title,category,payer,amount,currency,participants,note"

const (
	genericNumFields  = 8
	genericDateFormat = "2006-01-02"
	genColDate        = 0
	genColTitle       = 1
	genColCategory    = 2
	genColPayer       = 3
	genColAmount      = 4
	genColCurrency    = 5
	genColParts       = 6
	genColNote        = 7
)

// GenericParser reads the spreadsheet-friendly generic CSV format.
type GenericParser struct{}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic CSV and returns Rows. Blank lines are skipped.
func (p *GenericParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = genericNumFields
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading generic CSV header: %w", err)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading generic CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		row, err := parseGenericRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, nil
}

func parseGenericRow(rec []string) (Row, error) {
	date, err := time.Parse(genericDateFormat, strings.TrimSpace(rec[genColDate]))
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", rec[genColDate], err)
	}

	amount, err := money.ParseDecimal(rec[genColAmount])
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", rec[genColAmount], err)
	}

	parts, err := ParseParticipants(rec[genColParts])
	if err != nil {
		return Row{}, err
	}

	return Row{
		Date:         date,
		Title:        strings.TrimSpace(rec[genColTitle]),
		Category:     strings.TrimSpace(rec[genColCategory]),
		Payer:        strings.TrimSpace(rec[genColPayer]),
		Amount:       amount,
		Currency:     strings.TrimSpace(rec[genColCurrency]),
		Participants: parts,
		Note:         strings.TrimSpace(rec[genColNote]),
	}, nil
}

// ParseParticipants reads a ";"-separated participant list such as
// "Alice;bob=12.50". Empty entries are ignored.
func ParseParticipants(s string) ([]Participant, error) {
	var out []Participant
	for _, field := range strings.Split(s, ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		ref, amt, custom := strings.Cut(field, "=")
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return nil, fmt.Errorf("participant without a name in %q", s)
		}
		part := Participant{Ref: ref}
		if custom {
			d, err := money.ParseDecimal(amt)
			if err != nil {
				return nil, fmt.Errorf("parsing share of %s: %w", ref, err)
			}
			part.Amount = &d
		}
		out = append(out, part)
	}
	return out, nil
}
