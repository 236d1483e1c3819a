package members

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/splitkit-dev/splitkit/internal/model"
)

// Header is the CSV header for members.csv.
const Header = "member_id,name"

const (
	numFields = 2
	colID     = 0
	colName   = 1
)

// ReadMembers reads members.csv.
func ReadMembers(r io.Reader) ([]model.Member, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading members CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var members []model.Member
	for i, rec := range records[1:] {
		m, err := UnmarshalMember(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		members = append(members, m)
	}
	return members, nil
}

// WriteMembers writes members.csv.
func WriteMembers(w io.Writer, members []model.Member) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, m := range members {
		if err := cw.Write(MarshalMember(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalMember converts a Member to a CSV row.
func MarshalMember(m model.Member) []string {
	row := make([]string, numFields)
	row[colID] = string(m.ID)
	row[colName] = m.Name
	return row
}

// UnmarshalMember converts a CSV row to a Member.
func UnmarshalMember(record []string) (model.Member, error) {
	if len(record) != numFields {
		return model.Member{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.Member{}, fmt.Errorf("empty member_id")
	}
	return model.Member{
		ID:   model.MemberID(record[colID]),
		Name: record[colName],
	}, nil
}
