package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitkit-dev/splitkit/internal/balance"
	"github.com/splitkit-dev/splitkit/internal/expenses"
	"github.com/splitkit-dev/splitkit/internal/model"
)

var people = map[model.MemberID]string{"alice": "Alice", "bob": "Bob", "carol": "Carol"}

func names(id model.MemberID) string { return people[id] }

var summaries = []balance.Summary{
	{MemberID: "alice", Name: "Alice", Paid: 30000, Consumed: 10000, Balance: 20000},
	{MemberID: "bob", Name: "Bob", Consumed: 10000, Balance: -10000},
	{MemberID: "carol", Name: "Carol", Consumed: 10000, Balance: -10000},
}

var plan = []model.Transfer{
	{From: "bob", To: "alice", Amount: 10000},
	{From: "carol", To: "alice", Amount: 10000},
}

var dinner = model.Expense{
	ID:               "2025-01-001",
	Date:             time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
	Title:            "Ichiran",
	Category:         model.CategoryDining,
	PayerID:          "alice",
	Amount:           30000,
	Shares:           []model.Share{model.EqualShare("alice"), model.EqualShare("bob"), model.EqualShare("carol")},
	OriginalCurrency: "JPY",
	OriginalAmount:   decimal.NewFromInt(5660),
}

func TestWriteBalances(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBalances(&buf, summaries))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, BalancesHeader, lines[0])
	assert.Equal(t, "alice,Alice,300.00,100.00,0.00,0.00,200.00", lines[1])
	assert.Equal(t, "bob,Bob,0.00,100.00,0.00,0.00,-100.00", lines[2])
}

func TestWriteSettlements(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSettlements(&buf, plan, names))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		SettlementsHeader,
		"bob,Bob,alice,Alice,100.00",
		"carol,Carol,alice,Alice,100.00",
	}, lines)
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := Export(dir, Data{Summaries: summaries, Transfers: plan, Expenses: []model.Expense{dinner}, Names: names})
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, name := range []string{BalancesFile, SettlementsFile, ExpensesFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	f, err := os.Open(filepath.Join(dir, ExpensesFile))
	require.NoError(t, err)
	defer f.Close()
	got, err := expenses.ReadExpenses(f)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dinner.ID, got[0].ID)
}

func TestRenderer_Balances(t *testing.T) {
	var buf bytes.Buffer
	out := NewRenderer(&buf, "HKD").Balances(summaries)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Balance (HKD)")
	assert.Contains(t, lines[1], "Alice")
	assert.Contains(t, lines[1], "+200.00")
	assert.Contains(t, lines[2], "-100.00")
	assert.NotContains(t, out, "\x1b[", "plain text for non-terminals")
}

func TestRenderer_ColumnsAlign(t *testing.T) {
	out := NewRenderer(&bytes.Buffer{}, "HKD").Balances(summaries)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	end := len(lines[1])
	for _, l := range lines[1:] {
		assert.Len(t, l, end, "right-aligned balance column: %q", l)
	}
}

func TestRenderer_Settlement(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, "HKD")

	out := r.Settlement(plan, names)
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "->")
	assert.Contains(t, out, "100.00")
	assert.Equal(t, 3, strings.Count(out, "\n"))

	assert.Equal(t, "Everyone is settled up.\n", r.Settlement(nil, names))
}

func TestRenderer_Expenses(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, "HKD")

	custom := dinner
	custom.ID = "2025-01-002"
	custom.OriginalCurrency = ""
	custom.Shares = []model.Share{model.CustomShare("alice", 20000), model.CustomShare("bob", 10000)}

	out := r.Expenses([]model.Expense{dinner, custom}, names)
	assert.Contains(t, out, "2025-01-001")
	assert.Contains(t, out, "300.00 (5660 JPY)")
	assert.Contains(t, out, "Alice, Bob, Carol")
	assert.Contains(t, out, "Alice 200.00, Bob 100.00")
	assert.Contains(t, out, "dining")

	assert.Equal(t, "No expenses yet.\n", r.Expenses(nil, names))
}
