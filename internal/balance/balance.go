// Package balance folds a trip's expenses into per-member net balances.
//
// All arithmetic is in integer minor units. An equal split of an amount
// among n participants gives everyone amount/n and hands the remaining
// amount%n minor units, one each, to the first participants in listed order
// (largest remainder), so equal-split expenses always sum to zero exactly.
package balance

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/splitkit-dev/splitkit/internal/ledger"
	"github.com/splitkit-dev/splitkit/internal/model"
)

// UnknownMemberPolicy decides what happens to references outside the member list.
type UnknownMemberPolicy string

const (
	// RejectUnknown fails the computation with ledger.UnknownMemberError.
	RejectUnknown UnknownMemberPolicy = "reject"
	// SkipUnknown drops the reference and logs a warning.
	SkipUnknown UnknownMemberPolicy = "skip"
)

type options struct {
	logger   *zap.Logger
	unknown  UnknownMemberPolicy
	payments []model.Payment
}

// Option configures Compute and Summarize.
type Option func(*options)

// WithLogger sets the logger used for skipped references.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithUnknownMembers sets the unknown member policy. The default is RejectUnknown.
func WithUnknownMembers(p UnknownMemberPolicy) Option {
	return func(o *options) { o.unknown = p }
}

// WithPayments folds recorded repayments into the balances: the sender's
// balance rises and the recipient's falls by the payment amount.
func WithPayments(payments []model.Payment) Option {
	return func(o *options) { o.payments = payments }
}

// Summary is one member's position broken down by source.
type Summary struct {
	MemberID model.MemberID
	Name     string
	Paid     int64 // expense totals this member paid
	Consumed int64 // this member's shares across all expenses
	Sent     int64 // repayments made
	Received int64 // repayments received
	Balance  int64
}

// Shares returns the amount each participant of e owes, in share order.
// Custom shares are taken literally; equal shares take their positional
// part of the total even when the expense mixes both kinds.
func Shares(e model.Expense) []int64 {
	n := int64(len(e.Shares))
	out := make([]int64, len(e.Shares))
	if n == 0 {
		return out
	}
	base, rem := e.Amount/n, e.Amount%n
	for i, s := range e.Shares {
		if s.IsCustom() {
			out[i] = *s.Custom
			continue
		}
		out[i] = base
		if int64(i) < rem {
			out[i]++
		}
	}
	return out
}

// Compute returns every member's net balance. Each member starts at zero;
// the payer of an expense gains its full amount and each participant loses
// their share. Inputs are not modified.
func Compute(members []model.Member, expenses []model.Expense, opts ...Option) (model.Balances, error) {
	summaries, err := fold(members, expenses, opts)
	if err != nil {
		return nil, err
	}
	out := make(model.Balances, len(summaries))
	for _, s := range summaries {
		out[s.MemberID] = s.Balance
	}
	return out, nil
}

// Summarize returns a Summary per member, in member order.
func Summarize(members []model.Member, expenses []model.Expense, opts ...Option) ([]Summary, error) {
	return fold(members, expenses, opts)
}

func fold(members []model.Member, expenses []model.Expense, opts []Option) ([]Summary, error) {
	o := options{logger: zap.NewNop(), unknown: RejectUnknown}
	for _, opt := range opts {
		opt(&o)
	}

	summaries := make([]Summary, len(members))
	index := make(map[model.MemberID]int, len(members))
	for i, m := range members {
		summaries[i] = Summary{MemberID: m.ID, Name: m.Name}
		index[m.ID] = i
	}

	lookup := func(ref model.MemberID, expenseID, role string) (*Summary, error) {
		if i, ok := index[ref]; ok {
			return &summaries[i], nil
		}
		if o.unknown == SkipUnknown {
			o.logger.Warn("skipping unknown member reference",
				zap.String("id", expenseID),
				zap.String("member", string(ref)),
				zap.String("role", role))
			return nil, nil
		}
		return nil, ledger.UnknownMemberError{ExpenseID: expenseID, MemberID: ref, Role: role}
	}

	for _, e := range expenses {
		if len(e.Shares) == 0 {
			return nil, ledger.EmptyParticipantSetError{ExpenseID: e.ID}
		}

		payer, err := lookup(e.PayerID, e.ID, "payer")
		if err != nil {
			return nil, err
		}
		if payer != nil {
			payer.Paid += e.Amount
		}

		shares := Shares(e)
		for i, s := range e.Shares {
			p, err := lookup(s.MemberID, e.ID, "participant")
			if err != nil {
				return nil, err
			}
			if p != nil {
				p.Consumed += shares[i]
			}
		}
	}

	for _, pay := range o.payments {
		from, err := lookup(pay.From, pay.ID, "sender")
		if err != nil {
			return nil, fmt.Errorf("payment %s: %w", pay.ID, err)
		}
		to, err := lookup(pay.To, pay.ID, "recipient")
		if err != nil {
			return nil, fmt.Errorf("payment %s: %w", pay.ID, err)
		}
		if from != nil {
			from.Sent += pay.Amount
		}
		if to != nil {
			to.Received += pay.Amount
		}
	}

	for i := range summaries {
		s := &summaries[i]
		s.Balance = s.Paid - s.Consumed + s.Sent - s.Received
	}
	return summaries, nil
}
