package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies an expense.
type Category string

const (
	CategoryDining    Category = "dining"
	CategoryTransport Category = "transport"
	CategoryHotel     Category = "hotel"
	CategoryShopping  Category = "shopping"
	CategoryActivity  Category = "activity"
	CategoryOther     Category = "other"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryDining,
	CategoryTransport,
	CategoryHotel,
	CategoryShopping,
	CategoryActivity,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Share is one participant's part of an expense. A nil Custom means an
// equal share of the total; otherwise Custom holds the explicit amount in
// minor units.
type Share struct {
	MemberID MemberID
	Custom   *int64
}

// EqualShare returns a share that takes an even part of the expense total.
func EqualShare(id MemberID) Share {
	return Share{MemberID: id}
}

// CustomShare returns a share with an explicit amount in minor units.
func CustomShare(id MemberID, cents int64) Share {
	return Share{MemberID: id, Custom: &cents}
}

// IsCustom reports whether the share carries an explicit amount.
func (s Share) IsCustom() bool {
	return s.Custom != nil
}

// Expense is a single payment made by one member on behalf of participants.
type Expense struct {
	ID       string // "YYYY-MM-NNN"
	Date     time.Time
	Title    string
	Category Category
	PayerID  MemberID
	Amount   int64 // minor units of the reference currency
	Shares   []Share
	Note     string

	// Set when the expense was entered in a foreign currency and converted.
	OriginalCurrency string
	OriginalAmount   decimal.Decimal
}

// HasCustomShares reports whether any share carries an explicit amount.
func (e Expense) HasCustomShares() bool {
	for _, s := range e.Shares {
		if s.IsCustom() {
			return true
		}
	}
	return false
}

// IsMixed reports whether the expense combines equal and custom shares.
func (e Expense) IsMixed() bool {
	custom := 0
	for _, s := range e.Shares {
		if s.IsCustom() {
			custom++
		}
	}
	return custom > 0 && custom < len(e.Shares)
}

// Participants returns the member IDs of all shares in order.
func (e Expense) Participants() []MemberID {
	ids := make([]MemberID, len(e.Shares))
	for i, s := range e.Shares {
		ids[i] = s.MemberID
	}
	return ids
}
