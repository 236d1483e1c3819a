// Package importer turns spreadsheet exports into expenses for a trip.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitkit-dev/splitkit/internal/expenses"
	"github.com/splitkit-dev/splitkit/internal/model"
	"github.com/splitkit-dev/splitkit/internal/money"
)

// Row is one expense as read from an import file, before member names are
// resolved and foreign amounts converted.
type Row struct {
	Line         int
	Date         time.Time
	Title        string
	Category     string
	Payer        string
	Amount       decimal.Decimal
	Currency     string
	Participants []Participant
	Note         string
}

// Participant is a member reference with an optional custom amount in the
// row's currency.
type Participant struct {
	Ref    string
	Amount *decimal.Decimal
}

// Parser converts an import file into Rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GenericParser{})
	return r
}

// MemberResolver looks a member up by ID or display name.
type MemberResolver interface {
	Resolve(ref string) (model.Member, bool)
}

// RateFunc returns the rate converting currency into the reference currency.
type RateFunc func(currency string) (decimal.Decimal, error)

// Build resolves member references and converts amounts into reference
// minor units. Every row is checked; all problems are reported together.
func Build(rows []Row, members MemberResolver, rate RateFunc) ([]expenses.AddParams, error) {
	var out []expenses.AddParams
	var errs []error
	for _, row := range rows {
		p, err := BuildRow(row, members, rate)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", row.Line, err))
			continue
		}
		out = append(out, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// BuildRow resolves and converts a single row.
func BuildRow(row Row, members MemberResolver, rate RateFunc) (expenses.AddParams, error) {
	r, err := rate(row.Currency)
	if err != nil {
		return expenses.AddParams{}, err
	}

	payer, ok := members.Resolve(row.Payer)
	if !ok {
		return expenses.AddParams{}, fmt.Errorf("unknown payer %q", row.Payer)
	}

	amount, err := money.Convert(row.Amount, r)
	if err != nil {
		return expenses.AddParams{}, fmt.Errorf("amount: %w", err)
	}

	ids := make([]model.MemberID, len(row.Participants))
	var custom []decimal.Decimal
	for i, part := range row.Participants {
		m, ok := members.Resolve(part.Ref)
		if !ok {
			return expenses.AddParams{}, fmt.Errorf("unknown participant %q", part.Ref)
		}
		ids[i] = m.ID
		if part.Amount != nil {
			custom = append(custom, *part.Amount)
		}
	}

	// An all-custom split is converted as a whole so it still adds up to
	// the converted total; a mixed one converts its custom parts one by one.
	var customCents []int64
	if len(custom) > 0 && len(custom) == len(row.Participants) {
		customCents, err = money.ConvertSplit(row.Amount, custom, r)
		if err != nil {
			return expenses.AddParams{}, fmt.Errorf("shares: %w", err)
		}
	} else {
		for i, c := range custom {
			cents, err := money.Convert(c, r)
			if err != nil {
				return expenses.AddParams{}, fmt.Errorf("custom share %d: %w", i+1, err)
			}
			customCents = append(customCents, cents)
		}
	}

	shares := make([]model.Share, len(row.Participants))
	next := 0
	for i, part := range row.Participants {
		if part.Amount == nil {
			shares[i] = model.EqualShare(ids[i])
			continue
		}
		shares[i] = model.CustomShare(ids[i], customCents[next])
		next++
	}

	p := expenses.AddParams{
		Date:     row.Date,
		Title:    row.Title,
		Category: model.Category(strings.ToLower(row.Category)),
		PayerID:  payer.ID,
		Amount:   amount,
		Shares:   shares,
		Note:     row.Note,
	}
	if !r.Equal(decimal.NewFromInt(1)) {
		p.OriginalCurrency = strings.ToUpper(row.Currency)
		p.OriginalAmount = row.Amount
	}
	return p, nil
}

// FileInfo describes a CSV file waiting in the trip's inbox.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

const (
	inboxDir     = "inbox"
	processedDir = "inbox/processed"
)

// Scan returns CSV files in <tripDir>/inbox/.
func Scan(tripDir string) ([]FileInfo, error) {
	dir := filepath.Join(tripDir, inboxDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from inbox/ to inbox/processed/.
func MarkProcessed(tripDir, fileName string) error {
	dstDir := filepath.Join(tripDir, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	src := filepath.Join(tripDir, inboxDir, fileName)
	if err := os.Rename(src, filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
