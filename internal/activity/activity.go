// Package activity keeps the trip's append-only activity log at
// logs/activity.csv. Every command that changes the trip records one
// entry, tagged with the git commit that captured the change.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Action names a kind of change to a trip.
type Action string

const (
	TripCreated    Action = "trip_created"
	ExpenseAdded   Action = "expense_added"
	ExpenseDeleted Action = "expense_deleted"
	PaymentAdded   Action = "payment_added"
	Imported       Action = "expenses_imported"
	Exported       Action = "report_exported"
)

// Entry is one row in the activity log.
type Entry struct {
	Time       time.Time
	Action     Action
	Actor      string
	Ref        string
	Summary    string
	CommitHash string
}

// Header is the CSV header for activity.csv.
const Header = "time,action,actor,ref,summary,commit"

// RelPath is the log location relative to the trip directory.
const RelPath = "logs/activity.csv"

const (
	numFields  = 6
	colTime    = 0
	colAction  = 1
	colActor   = 2
	colRef     = 3
	colSummary = 4
	colCommit  = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Time.UTC().Format(time.RFC3339)
	row[colAction] = string(e.Action)
	row[colActor] = e.Actor
	row[colRef] = e.Ref
	row[colSummary] = e.Summary
	row[colCommit] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing time %q: %w", record[colTime], err)
	}
	if record[colAction] == "" {
		return Entry{}, errors.New("empty action")
	}

	return Entry{
		Time:       ts,
		Action:     Action(record[colAction]),
		Actor:      record[colActor],
		Ref:        record[colRef],
		Summary:    record[colSummary],
		CommitHash: record[colCommit],
	}, nil
}

// Log appends to and reads one trip's activity log.
type Log struct {
	path  string
	actor string
	now   func() time.Time
}

// Open returns the activity log of tripDir. Entries recorded through it
// carry actor as their author.
func Open(tripDir, actor string) *Log {
	return &Log{path: filepath.Join(tripDir, RelPath), actor: actor, now: time.Now}
}

// Record appends a single entry stamped with the current time.
func (l *Log) Record(action Action, ref, summary, commit string) error {
	return l.Append(Entry{
		Time:       l.now(),
		Action:     action,
		Actor:      l.actor,
		Ref:        ref,
		Summary:    summary,
		CommitHash: commit,
	})
}

// Append writes entries, creating the logs directory and header if needed.
func (l *Log) Append(entries ...Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	_, statErr := os.Stat(l.path)
	needsHeader := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Entries returns the whole log in append order. A missing log is empty.
func (l *Log) Entries() ([]Entry, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return ReadEntries(f)
}

// Latest returns up to n entries, newest first.
func (l *Log) Latest(n int) ([]Entry, error) {
	all, err := l.Entries()
	if err != nil {
		return nil, err
	}
	slices.Reverse(all)
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// ReadEntries parses an activity CSV including its header row.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
