// Package settle turns net balances into a short list of payments that
// clears every debt.
package settle

import (
	"cmp"
	"slices"

	"github.com/splitkit-dev/splitkit/internal/model"
)

// DefaultTolerance treats balances within one minor unit of zero as settled.
const DefaultTolerance int64 = 1

type options struct {
	tolerance int64
}

// Option configures Plan.
type Option func(*options)

// WithTolerance sets the settled-balance tolerance in minor units.
func WithTolerance(minorUnits int64) Option {
	return func(o *options) {
		if minorUnits < 0 {
			minorUnits = 0
		}
		o.tolerance = minorUnits
	}
}

type position struct {
	id     model.MemberID
	amount int64 // always positive: debt for debtors, credit for creditors
}

// Plan matches the largest debtor with the largest creditor, pays the smaller
// of the two amounts, and repeats until one side runs out. It emits at most
// debtors+creditors-1 transfers, in the order they are found. Ties in amount
// are broken by member ID so the plan is reproducible.
func Plan(balances model.Balances, opts ...Option) []model.Transfer {
	o := options{tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}

	var debtors, creditors []position
	for id, b := range balances {
		switch {
		case b < -o.tolerance:
			debtors = append(debtors, position{id: id, amount: -b})
		case b > o.tolerance:
			creditors = append(creditors, position{id: id, amount: b})
		}
	}
	byAmount := func(a, b position) int {
		if c := cmp.Compare(b.amount, a.amount); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	}
	slices.SortFunc(debtors, byAmount)
	slices.SortFunc(creditors, byAmount)

	// A zero tolerance still has to advance once an amount is fully paid.
	done := max(o.tolerance, 1)

	var transfers []model.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]
		payment := min(d.amount, c.amount)

		transfers = append(transfers, model.Transfer{From: d.id, To: c.id, Amount: payment})

		d.amount -= payment
		c.amount -= payment

		if d.amount < done {
			i++
		}
		if c.amount < done {
			j++
		}
	}
	return transfers
}

// Apply returns a copy of balances with every transfer paid: the sender's
// balance rises and the recipient's falls.
func Apply(balances model.Balances, transfers []model.Transfer) model.Balances {
	out := balances.Clone()
	for _, t := range transfers {
		out[t.From] += t.Amount
		out[t.To] -= t.Amount
	}
	return out
}

// Settled reports whether every balance is within tolerance of zero.
func Settled(balances model.Balances, tolerance int64) bool {
	for _, b := range balances {
		if b < -tolerance || b > tolerance {
			return false
		}
	}
	return true
}
