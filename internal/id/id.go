package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// PaymentPrefix marks payment IDs so they never collide with expense IDs.
const PaymentPrefix = "P-"

// tripCodeAlphabet omits characters that are easy to confuse (0/O, 1/I).
const tripCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const tripCodeLen = 8

// FormatExpenseID returns an expense ID like "2025-01-001".
func FormatExpenseID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatPaymentID returns a payment ID like "P-2025-01-001".
func FormatPaymentID(year, month, seq int) string {
	return PaymentPrefix + FormatExpenseID(year, month, seq)
}

// Parse parses "2025-01-001" or "P-2025-01-001" into year, month, seq.
func Parse(id string) (year, month, seq int, err error) {
	base := strings.TrimPrefix(id, PaymentPrefix)

	parts := strings.SplitN(base, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in ID %q: %w", id, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("month %d out of range in ID %q", month, id)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// NextSeq returns one past the highest sequence used by ids in year/month.
// Unparsable IDs are ignored.
func NextSeq(ids []string, year, month int) int {
	maxSeq := 0
	for _, s := range ids {
		y, m, seq, err := Parse(s)
		if err != nil || y != year || m != month {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}

// NewTripCode returns a random 8-character code for sharing a trip.
func NewTripCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(tripCodeAlphabet)))
	for i := 0; i < tripCodeLen; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generating trip code: %w", err)
		}
		b.WriteByte(tripCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidTripCode reports whether code could have come from NewTripCode.
func ValidTripCode(code string) bool {
	if len(code) != tripCodeLen {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(tripCodeAlphabet, r) {
			return false
		}
	}
	return true
}

// MemberSlug derives a member ID from a display name, adding a numeric
// suffix when the slug is already taken.
// "Mary Ann" -> "mary-ann", then "mary-ann-2".
func MemberSlug(name string, taken func(string) bool) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "member"
	}
	if taken == nil || !taken(slug) {
		return slug
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", slug, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
