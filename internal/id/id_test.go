package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatExpenseID(t *testing.T) {
	tests := []struct {
		year, month, seq int
		want             string
	}{
		{2025, 1, 1, "2025-01-001"},
		{2025, 12, 99, "2025-12-099"},
		{2025, 1, 123, "2025-01-123"},
	}
	for _, tt := range tests {
		got := FormatExpenseID(tt.year, tt.month, tt.seq)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatPaymentID(t *testing.T) {
	assert.Equal(t, "P-2025-03-007", FormatPaymentID(2025, 3, 7))
}

func TestParse(t *testing.T) {
	tests := []struct {
		input               string
		wantYear, wantMonth int
		wantSeq             int
	}{
		{"2025-01-001", 2025, 1, 1},
		{"2025-12-099", 2025, 12, 99},
		{"P-2025-02-004", 2025, 2, 4},
	}
	for _, tt := range tests {
		year, month, seq, err := Parse(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantYear, year)
		assert.Equal(t, tt.wantMonth, month)
		assert.Equal(t, tt.wantSeq, seq)
	}
}

func TestParse_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"not-valid",
		"2025-01",
		"xxxx-01-001",
		"2025-13-001",
	}
	for _, input := range badInputs {
		_, _, _, err := Parse(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestNextSeq(t *testing.T) {
	ids := []string{"2025-01-001", "2025-01-004", "2025-02-009", "garbage"}
	assert.Equal(t, 5, NextSeq(ids, 2025, 1))
	assert.Equal(t, 10, NextSeq(ids, 2025, 2))
	assert.Equal(t, 1, NextSeq(ids, 2025, 3))
	assert.Equal(t, 1, NextSeq(nil, 2025, 1))
}

func TestNewTripCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := NewTripCode()
		require.NoError(t, err)
		assert.True(t, ValidTripCode(code), "code %q", code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45, "codes should be random")
}

func TestValidTripCode(t *testing.T) {
	assert.True(t, ValidTripCode("ABCD2345"))
	assert.False(t, ValidTripCode("ABCD234"), "too short")
	assert.False(t, ValidTripCode("ABCD2340"), "0 is not in the alphabet")
	assert.False(t, ValidTripCode("abcd2345"), "lowercase")
}

func TestMemberSlug(t *testing.T) {
	taken := map[string]bool{"alice": true, "alice-2": true}
	isTaken := func(s string) bool { return taken[s] }

	tests := []struct {
		name string
		want string
	}{
		{"Bob", "bob"},
		{"Mary Ann", "mary-ann"},
		{"  Zoë!! ", "zoë"},
		{"Alice", "alice-3"},
		{"???", "member"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MemberSlug(tt.name, isTaken), "name %q", tt.name)
	}
	assert.Equal(t, "alice", MemberSlug("Alice", nil))
}
