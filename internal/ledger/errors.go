package ledger

import (
	"errors"
	"fmt"

	"github.com/splitkit-dev/splitkit/internal/model"
	"github.com/splitkit-dev/splitkit/internal/money"
)

// ErrInvalidExpense is wrapped by every expense validation error.
var ErrInvalidExpense = errors.New("invalid expense")

// ErrInvalidPayment is wrapped by every payment validation error.
var ErrInvalidPayment = errors.New("invalid payment")

// SplitMismatchError reports custom shares that do not add up to the total.
type SplitMismatchError struct {
	ExpenseID string
	Expected  int64
	Got       int64
}

func (e SplitMismatchError) Error() string {
	return fmt.Sprintf("expense [%s]: custom shares sum to %s, expected %s (difference %s)",
		e.ExpenseID, money.Format(e.Got), money.Format(e.Expected), money.Format(e.Got-e.Expected))
}

func (e SplitMismatchError) Unwrap() error { return ErrInvalidExpense }

// UnknownMemberError reports a payer or participant that is not a trip member.
type UnknownMemberError struct {
	ExpenseID string
	MemberID  model.MemberID
	Role      string // "payer", "participant", "sender" or "recipient"
}

func (e UnknownMemberError) Error() string {
	return fmt.Sprintf("expense [%s]: unknown %s %q", e.ExpenseID, e.Role, e.MemberID)
}

func (e UnknownMemberError) Unwrap() error { return ErrInvalidExpense }

// EmptyParticipantSetError reports an expense nobody shares.
type EmptyParticipantSetError struct {
	ExpenseID string
}

func (e EmptyParticipantSetError) Error() string {
	return fmt.Sprintf("expense [%s]: at least one participant is required", e.ExpenseID)
}

func (e EmptyParticipantSetError) Unwrap() error { return ErrInvalidExpense }

// InvalidAmountError reports a non-positive total or custom share.
type InvalidAmountError struct {
	ExpenseID string
	MemberID  model.MemberID // empty for the expense total
	Amount    int64
}

func (e InvalidAmountError) Error() string {
	if e.MemberID == "" {
		return fmt.Sprintf("expense [%s]: amount %s must be positive", e.ExpenseID, money.Format(e.Amount))
	}
	return fmt.Sprintf("expense [%s]: share of %q %s must be positive", e.ExpenseID, e.MemberID, money.Format(e.Amount))
}

func (e InvalidAmountError) Unwrap() error { return ErrInvalidExpense }

// MixedSplitError reports an expense that combines equal and custom shares.
type MixedSplitError struct {
	ExpenseID string
}

func (e MixedSplitError) Error() string {
	return fmt.Sprintf("expense [%s]: shares must be all equal or all custom", e.ExpenseID)
}

func (e MixedSplitError) Unwrap() error { return ErrInvalidExpense }

// DuplicateParticipantError reports a member listed twice in one expense.
type DuplicateParticipantError struct {
	ExpenseID string
	MemberID  model.MemberID
}

func (e DuplicateParticipantError) Error() string {
	return fmt.Sprintf("expense [%s]: participant %q listed more than once", e.ExpenseID, e.MemberID)
}

func (e DuplicateParticipantError) Unwrap() error { return ErrInvalidExpense }

// PaymentError reports an invalid recorded payment.
type PaymentError struct {
	PaymentID   string
	Description string
}

func (e PaymentError) Error() string {
	return fmt.Sprintf("payment [%s]: %s", e.PaymentID, e.Description)
}

func (e PaymentError) Unwrap() error { return ErrInvalidPayment }
