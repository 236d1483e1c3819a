package expenses

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/splitkit-dev/splitkit/internal/id"
	"github.com/splitkit-dev/splitkit/internal/ledger"
	"github.com/splitkit-dev/splitkit/internal/model"
)

const (
	// FileName is the expenses file inside a trip directory.
	FileName = "expenses.csv"
	// PaymentsFileName is the payments file inside a trip directory.
	PaymentsFileName = "payments.csv"
)

// ErrNotFound is returned when an expense ID does not exist.
var ErrNotFound = errors.New("expense not found")

// Service stores a trip's expenses and payments and admits only entries
// that pass validation.
type Service struct {
	tripDir string
	members ledger.MemberChecker
	policy  ledger.Policy
	logger  *zap.Logger
}

// NewService creates an expenses Service. A nil logger discards output.
func NewService(tripDir string, members ledger.MemberChecker, policy ledger.Policy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{tripDir: tripDir, members: members, policy: policy, logger: logger}
}

// AddParams holds parameters for recording an expense.
type AddParams struct {
	Date             time.Time
	Title            string
	Category         model.Category
	PayerID          model.MemberID
	Amount           int64
	Shares           []model.Share
	Note             string
	OriginalCurrency string
	OriginalAmount   decimal.Decimal
}

// Add validates an expense, normalizes a custom split drift within
// tolerance, and appends it to expenses.csv. Returns the expense ID.
// Nothing is written when validation fails.
func (s *Service) Add(params AddParams) (string, error) {
	ids, err := s.AddBatch([]AddParams{params})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// AddBatch validates every expense and appends them to expenses.csv in a
// single write, in order. IDs follow each other within a month. Nothing is
// written when any entry fails; the error names the failing entry's index.
func (s *Service) AddBatch(batch []AddParams) ([]string, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	existing, err := s.All()
	if err != nil {
		return nil, err
	}

	built := make([]model.Expense, 0, len(batch))
	for i, params := range batch {
		e, err := s.build(params, existing)
		if err != nil {
			if len(batch) == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}

		normalized := ledger.Normalize(e, s.policy.SplitTolerance)
		if !slices.EqualFunc(normalized.Shares, e.Shares, sameShare) {
			s.logger.Debug("absorbed custom split drift",
				zap.String("expense", e.ID),
				zap.String("shares", FormatShares(normalized.Shares)))
		}
		built = append(built, normalized)
		existing = append(existing, normalized)
	}

	// Rows are encoded up front so the file sees one write.
	var buf bytes.Buffer
	if err := AppendExpenses(&buf, built); err != nil {
		return nil, err
	}
	err = s.appendRows(FileName, strings.Split(Header, ","), func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(built))
	for i, e := range built {
		ids[i] = e.ID
		s.logger.Info("expense added",
			zap.String("expense", e.ID),
			zap.String("payer", string(e.PayerID)),
			zap.Int64("amount", e.Amount))
	}
	return ids, nil
}

// Validate runs the checks Add would run without writing anything.
func (s *Service) Validate(params AddParams) error {
	_, err := s.build(params, nil)
	return err
}

// build assigns the next ID after existing, fills defaults and validates.
func (s *Service) build(params AddParams, existing []model.Expense) (model.Expense, error) {
	year, month := params.Date.Year(), int(params.Date.Month())
	ids := make([]string, len(existing))
	for i, e := range existing {
		ids[i] = e.ID
	}
	expenseID := id.FormatExpenseID(year, month, id.NextSeq(ids, year, month))

	category := params.Category
	if category == "" {
		category = model.CategoryOther
	}
	if !category.Valid() {
		return model.Expense{}, fmt.Errorf("unknown category %q", category)
	}

	e := model.Expense{
		ID:               expenseID,
		Date:             params.Date,
		Title:            params.Title,
		Category:         category,
		PayerID:          params.PayerID,
		Amount:           params.Amount,
		Shares:           params.Shares,
		Note:             params.Note,
		OriginalCurrency: params.OriginalCurrency,
		OriginalAmount:   params.OriginalAmount,
	}
	if e.Title == "" {
		e.Title = string(category)
	}

	if err := ledger.Check(e, s.members, s.policy); err != nil {
		return model.Expense{}, fmt.Errorf("validation failed: %w", err)
	}
	return e, nil
}

// All returns every expense in file order.
func (s *Service) All() ([]model.Expense, error) {
	path := filepath.Join(s.tripDir, FileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening expenses %s: %w", path, err)
	}
	defer f.Close()

	out, err := ReadExpenses(f)
	if err != nil {
		return nil, fmt.Errorf("reading expenses %s: %w", path, err)
	}
	return out, nil
}

// Recent returns every expense, newest date first, then highest ID first.
func (s *Service) Recent() ([]model.Expense, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b model.Expense) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return all, nil
}

// Get returns one expense by ID.
func (s *Service) Get(expenseID string) (model.Expense, error) {
	all, err := s.All()
	if err != nil {
		return model.Expense{}, err
	}
	for _, e := range all {
		if e.ID == expenseID {
			return e, nil
		}
	}
	return model.Expense{}, fmt.Errorf("%w: %s", ErrNotFound, expenseID)
}

// Delete removes an expense and rewrites expenses.csv.
func (s *Service) Delete(expenseID string) error {
	all, err := s.All()
	if err != nil {
		return err
	}

	if !containsID(all, expenseID) {
		return fmt.Errorf("%w: %s", ErrNotFound, expenseID)
	}
	kept := slices.DeleteFunc(all, func(e model.Expense) bool { return e.ID == expenseID })

	path := filepath.Join(s.tripDir, FileName)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	if err := WriteExpenses(f, kept); err != nil {
		f.Close()
		return fmt.Errorf("writing expenses: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing expenses: %w", err)
	}

	s.logger.Info("expense deleted", zap.String("expense", expenseID))
	return nil
}

// PaymentParams holds parameters for recording a repayment.
type PaymentParams struct {
	Date   time.Time
	From   model.MemberID
	To     model.MemberID
	Amount int64
	Note   string
}

// AddPayment validates and appends a repayment. Returns the payment ID.
func (s *Service) AddPayment(params PaymentParams) (string, error) {
	existing, err := s.Payments()
	if err != nil {
		return "", err
	}

	year, month := params.Date.Year(), int(params.Date.Month())
	ids := make([]string, len(existing))
	for i, p := range existing {
		ids[i] = p.ID
	}

	p := model.Payment{
		ID:     id.FormatPaymentID(year, month, id.NextSeq(ids, year, month)),
		Date:   params.Date,
		From:   params.From,
		To:     params.To,
		Amount: params.Amount,
		Note:   params.Note,
	}
	if errs := ledger.ValidatePayment(p, s.members); len(errs) > 0 {
		return "", fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}

	err = s.appendRows(PaymentsFileName, paymentsHeader(), func(w io.Writer) error {
		return AppendPayments(w, []model.Payment{p})
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("payment recorded",
		zap.String("payment", p.ID),
		zap.String("from", string(p.From)),
		zap.String("to", string(p.To)),
		zap.Int64("amount", p.Amount))
	return p.ID, nil
}

// Payments returns every recorded payment in file order.
func (s *Service) Payments() ([]model.Payment, error) {
	path := filepath.Join(s.tripDir, PaymentsFileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening payments %s: %w", path, err)
	}
	defer f.Close()

	out, err := ReadPayments(f)
	if err != nil {
		return nil, fmt.Errorf("reading payments %s: %w", path, err)
	}
	return out, nil
}

// appendRows opens name for appending, writing header first when the file is new.
func (s *Service) appendRows(name string, header []string, write func(io.Writer) error) error {
	if err := os.MkdirAll(s.tripDir, 0o755); err != nil {
		return fmt.Errorf("creating trip dir: %w", err)
	}

	path := filepath.Join(s.tripDir, name)
	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, strings.Join(header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := write(f); err != nil {
		return fmt.Errorf("appending to %s: %w", name, err)
	}
	return nil
}

func containsID(all []model.Expense, expenseID string) bool {
	for _, e := range all {
		if e.ID == expenseID {
			return true
		}
	}
	return false
}

func sameShare(a, b model.Share) bool {
	if a.MemberID != b.MemberID || a.IsCustom() != b.IsCustom() {
		return false
	}
	return !a.IsCustom() || *a.Custom == *b.Custom
}
