package model

// MemberID identifies a trip member. It is opaque to the core.
type MemberID string

// Member represents a row in members.csv.
type Member struct {
	ID   MemberID
	Name string
}
