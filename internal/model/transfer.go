package model

import "time"

// Transfer is a suggested payment that reduces outstanding balances.
type Transfer struct {
	From   MemberID
	To     MemberID
	Amount int64
}

// Payment is a repayment one member has actually made to another.
type Payment struct {
	ID     string // "P-YYYY-MM-NNN"
	Date   time.Time
	From   MemberID
	To     MemberID
	Amount int64
	Note   string
}

// Balances maps each member to a net position in minor units. Positive
// means the member is owed money, negative means the member owes money.
type Balances map[MemberID]int64

// Total returns the sum of all balances. It is zero for a consistent ledger.
func (b Balances) Total() int64 {
	var sum int64
	for _, v := range b {
		sum += v
	}
	return sum
}

// Clone returns a copy of b.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
