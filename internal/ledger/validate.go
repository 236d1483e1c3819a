// Package ledger validates members, expenses and payments before they are
// admitted to a trip ledger.
package ledger

import (
	"errors"
	"fmt"

	"github.com/splitkit-dev/splitkit/internal/model"
	"github.com/splitkit-dev/splitkit/internal/money"
)

// DefaultSplitTolerance is how far, in minor units, custom shares may drift
// from the expense total.
const DefaultSplitTolerance int64 = 1

// MemberChecker tests whether a member ID belongs to the trip.
type MemberChecker interface {
	Exists(id model.MemberID) bool
}

// MemberSet is a MemberChecker over an in-memory member list.
type MemberSet map[model.MemberID]struct{}

// NewMemberSet indexes members by ID.
func NewMemberSet(members []model.Member) MemberSet {
	s := make(MemberSet, len(members))
	for _, m := range members {
		s[m.ID] = struct{}{}
	}
	return s
}

// Exists reports whether id is in the set.
func (s MemberSet) Exists(id model.MemberID) bool {
	_, ok := s[id]
	return ok
}

// Policy controls the rules that are a matter of choice rather than arithmetic.
type Policy struct {
	SplitTolerance int64
	AllowMixed     bool
}

// DefaultPolicy rejects mixed splits and tolerates a one-cent custom split drift.
func DefaultPolicy() Policy {
	return Policy{SplitTolerance: DefaultSplitTolerance}
}

// ValidateExpense returns every rule the expense breaks, or nil.
func ValidateExpense(e model.Expense, members MemberChecker, policy Policy) []error {
	var errs []error

	if e.Amount <= 0 {
		errs = append(errs, InvalidAmountError{ExpenseID: e.ID, Amount: e.Amount})
	}

	if !members.Exists(e.PayerID) {
		errs = append(errs, UnknownMemberError{ExpenseID: e.ID, MemberID: e.PayerID, Role: "payer"})
	}

	if len(e.Shares) == 0 {
		errs = append(errs, EmptyParticipantSetError{ExpenseID: e.ID})
		return errs
	}

	seen := make(map[model.MemberID]bool, len(e.Shares))
	for _, s := range e.Shares {
		if !members.Exists(s.MemberID) {
			errs = append(errs, UnknownMemberError{ExpenseID: e.ID, MemberID: s.MemberID, Role: "participant"})
		}
		if seen[s.MemberID] {
			errs = append(errs, DuplicateParticipantError{ExpenseID: e.ID, MemberID: s.MemberID})
		}
		seen[s.MemberID] = true

		if s.IsCustom() && *s.Custom <= 0 {
			errs = append(errs, InvalidAmountError{ExpenseID: e.ID, MemberID: s.MemberID, Amount: *s.Custom})
		}
	}

	if e.IsMixed() {
		if !policy.AllowMixed {
			errs = append(errs, MixedSplitError{ExpenseID: e.ID})
		}
		return errs
	}

	if e.HasCustomShares() {
		sum := customSum(e)
		if abs(sum-e.Amount) > policy.SplitTolerance {
			errs = append(errs, SplitMismatchError{ExpenseID: e.ID, Expected: e.Amount, Got: sum})
		}
	}

	return errs
}

// Check validates e and joins all violations into one error.
func Check(e model.Expense, members MemberChecker, policy Policy) error {
	return errors.Join(ValidateExpense(e, members, policy)...)
}

// ValidateLedger validates a whole trip snapshot: member and expense IDs
// must be unique and every expense must pass ValidateExpense.
func ValidateLedger(members []model.Member, expenses []model.Expense, policy Policy) []error {
	var errs []error

	set := make(MemberSet, len(members))
	for _, m := range members {
		if set.Exists(m.ID) {
			errs = append(errs, fmt.Errorf("duplicate member %q", m.ID))
		}
		set[m.ID] = struct{}{}
	}

	seen := make(map[string]bool, len(expenses))
	for _, e := range expenses {
		if e.ID != "" && seen[e.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate expense ID %q", ErrInvalidExpense, e.ID))
		}
		seen[e.ID] = true
		errs = append(errs, ValidateExpense(e, set, policy)...)
	}
	return errs
}

// ValidatePayment returns every rule the payment breaks, or nil.
func ValidatePayment(p model.Payment, members MemberChecker) []error {
	var errs []error
	if p.Amount <= 0 {
		errs = append(errs, PaymentError{PaymentID: p.ID, Description: fmt.Sprintf("amount %s must be positive", money.Format(p.Amount))})
	}
	if !members.Exists(p.From) {
		errs = append(errs, PaymentError{PaymentID: p.ID, Description: fmt.Sprintf("unknown payer %q", p.From)})
	}
	if !members.Exists(p.To) {
		errs = append(errs, PaymentError{PaymentID: p.ID, Description: fmt.Sprintf("unknown recipient %q", p.To)})
	}
	if p.From == p.To {
		errs = append(errs, PaymentError{PaymentID: p.ID, Description: "payer and recipient must differ"})
	}
	return errs
}

// Normalize absorbs a custom split drift that is within tolerance into the
// largest custom share (first on ties), so the stored expense sums exactly.
// Expenses that are not all-custom, or drift beyond tolerance, come back
// unchanged. The input is never modified.
func Normalize(e model.Expense, tolerance int64) model.Expense {
	if !e.HasCustomShares() || e.IsMixed() {
		return e
	}
	diff := e.Amount - customSum(e)
	if diff == 0 || abs(diff) > tolerance {
		return e
	}

	largest := 0
	for i, s := range e.Shares {
		if *s.Custom > *e.Shares[largest].Custom {
			largest = i
		}
	}

	shares := make([]model.Share, len(e.Shares))
	copy(shares, e.Shares)
	shares[largest] = model.CustomShare(shares[largest].MemberID, *shares[largest].Custom+diff)
	e.Shares = shares
	return e
}

func customSum(e model.Expense) int64 {
	var sum int64
	for _, s := range e.Shares {
		if s.IsCustom() {
			sum += *s.Custom
		}
	}
	return sum
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
