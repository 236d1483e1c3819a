package balance

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/splitkit-dev/splitkit/internal/ledger"
	"github.com/splitkit-dev/splitkit/internal/model"
)

var abc = []model.Member{
	{ID: "a", Name: "Alice"},
	{ID: "b", Name: "Bob"},
	{ID: "c", Name: "Carol"},
}

func equal(ids ...model.MemberID) []model.Share {
	shares := make([]model.Share, len(ids))
	for i, id := range ids {
		shares[i] = model.EqualShare(id)
	}
	return shares
}

func TestShares_EqualSplit(t *testing.T) {
	e := model.Expense{Amount: 300, Shares: equal("a", "b", "c")}
	assert.Equal(t, []int64{100, 100, 100}, Shares(e))
}

func TestShares_Remainder(t *testing.T) {
	// 100 among 3: the first participant takes the leftover unit.
	e := model.Expense{Amount: 100, Shares: equal("a", "b", "c")}
	assert.Equal(t, []int64{34, 33, 33}, Shares(e))

	e = model.Expense{Amount: 1001, Shares: equal("a", "b", "c", "d")}
	assert.Equal(t, []int64{251, 250, 250, 250}, Shares(e))
}

func TestShares_Custom(t *testing.T) {
	e := model.Expense{Amount: 300, Shares: []model.Share{
		model.CustomShare("a", 100),
		model.CustomShare("b", 150),
		model.CustomShare("c", 50),
	}}
	assert.Equal(t, []int64{100, 150, 50}, Shares(e))
}

func TestShares_Mixed(t *testing.T) {
	// Equal shares use total / participant count regardless of custom values.
	e := model.Expense{Amount: 300, Shares: []model.Share{
		model.CustomShare("a", 200),
		model.EqualShare("b"),
		model.EqualShare("c"),
	}}
	assert.Equal(t, []int64{200, 100, 100}, Shares(e))
}

func TestShares_Empty(t *testing.T) {
	assert.Empty(t, Shares(model.Expense{Amount: 300}))
}

func TestCompute_EqualSplit(t *testing.T) {
	expenses := []model.Expense{{ID: "e1", PayerID: "a", Amount: 300, Shares: equal("a", "b", "c")}}
	got, err := Compute(abc, expenses)
	require.NoError(t, err)
	assert.Equal(t, model.Balances{"a": 200, "b": -100, "c": -100}, got)
}

func TestCompute_CustomSplit(t *testing.T) {
	expenses := []model.Expense{{ID: "e1", PayerID: "a", Amount: 300, Shares: []model.Share{
		model.CustomShare("a", 100),
		model.CustomShare("b", 100),
		model.CustomShare("c", 100),
	}}}
	got, err := Compute(abc, expenses)
	require.NoError(t, err)
	assert.Equal(t, model.Balances{"a": 200, "b": -100, "c": -100}, got)
}

func TestCompute_NoExpenses(t *testing.T) {
	got, err := Compute(abc, nil)
	require.NoError(t, err)
	assert.Equal(t, model.Balances{"a": 0, "b": 0, "c": 0}, got)
}

func TestCompute_PayerNotParticipant(t *testing.T) {
	expenses := []model.Expense{{ID: "e1", PayerID: "a", Amount: 1000, Shares: equal("b", "c")}}
	got, err := Compute(abc, expenses)
	require.NoError(t, err)
	assert.Equal(t, model.Balances{"a": 1000, "b": -500, "c": -500}, got)
}

func TestCompute_Idempotent(t *testing.T) {
	expenses := randomLedger(rand.New(rand.NewSource(7)), 40)
	first, err := Compute(abc, expenses)
	require.NoError(t, err)
	second, err := Compute(abc, expenses)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompute_ZeroSum(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		expenses := randomLedger(r, 1+r.Intn(30))
		require.Empty(t, ledger.ValidateLedger(abc, expenses, ledger.DefaultPolicy()))

		got, err := Compute(abc, expenses)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.Total(), "ledger %d", i)
	}
}

func TestCompute_DoesNotModifyInput(t *testing.T) {
	expenses := []model.Expense{{ID: "e1", PayerID: "a", Amount: 100, Shares: equal("a", "b", "c")}}
	before := expenses[0].Shares[0]
	_, err := Compute(abc, expenses)
	require.NoError(t, err)
	assert.Equal(t, before, expenses[0].Shares[0])
}

func TestCompute_UnknownMemberRejected(t *testing.T) {
	expenses := []model.Expense{{ID: "e1", PayerID: "a", Amount: 300, Shares: equal("a", "zed")}}
	_, err := Compute(abc, expenses)
	require.Error(t, err)

	var unknown ledger.UnknownMemberError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, model.MemberID("zed"), unknown.MemberID)
	assert.Equal(t, "participant", unknown.Role)
}

func TestCompute_UnknownMemberSkipped(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&buf), zap.WarnLevel)
	logger := zap.New(core)

	expenses := []model.Expense{{ID: "e1", PayerID: "a", Amount: 300, Shares: equal("a", "zed", "b")}}
	got, err := Compute(abc, expenses, WithUnknownMembers(SkipUnknown), WithLogger(logger))
	require.NoError(t, err)

	// zed's 100 is dropped, so the ledger no longer sums to zero.
	assert.Equal(t, model.Balances{"a": 200, "b": -100, "c": 0}, got)
	assert.Equal(t, int64(100), got.Total())
	assert.Contains(t, buf.String(), "skipping unknown member reference")
	assert.Contains(t, buf.String(), `"member":"zed"`)
}

func TestCompute_EmptyParticipants(t *testing.T) {
	expenses := []model.Expense{{ID: "e1", PayerID: "a", Amount: 300}}
	_, err := Compute(abc, expenses)
	var empty ledger.EmptyParticipantSetError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "e1", empty.ExpenseID)
}

func TestCompute_WithPayments(t *testing.T) {
	expenses := []model.Expense{{ID: "e1", PayerID: "a", Amount: 300, Shares: equal("a", "b", "c")}}
	payments := []model.Payment{{ID: "P-1", From: "b", To: "a", Amount: 100}}

	got, err := Compute(abc, expenses, WithPayments(payments))
	require.NoError(t, err)
	assert.Equal(t, model.Balances{"a": 100, "b": 0, "c": -100}, got)
	assert.Equal(t, int64(0), got.Total())
}

func TestCompute_PaymentUnknownMember(t *testing.T) {
	payments := []model.Payment{{ID: "P-1", From: "b", To: "zed", Amount: 100}}
	_, err := Compute(abc, nil, WithPayments(payments))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment P-1")
	assert.ErrorIs(t, err, ledger.ErrInvalidExpense)
}

func TestSummarize(t *testing.T) {
	expenses := []model.Expense{
		{ID: "e1", PayerID: "a", Amount: 300, Shares: equal("a", "b", "c")},
		{ID: "e2", PayerID: "b", Amount: 100, Shares: equal("a", "b")},
	}
	payments := []model.Payment{{ID: "P-1", From: "c", To: "a", Amount: 100}}

	got, err := Summarize(abc, expenses, WithPayments(payments))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, Summary{MemberID: "a", Name: "Alice", Paid: 300, Consumed: 150, Received: 100, Balance: 50}, got[0])
	assert.Equal(t, Summary{MemberID: "b", Name: "Bob", Paid: 100, Consumed: 150, Balance: -50}, got[1])
	assert.Equal(t, Summary{MemberID: "c", Name: "Carol", Consumed: 100, Sent: 100, Balance: 0}, got[2])
}

// randomLedger builds valid expenses with equal and exact custom splits.
func randomLedger(r *rand.Rand, n int) []model.Expense {
	var out []model.Expense
	for i := 0; i < n; i++ {
		amount := int64(1 + r.Intn(100000))
		payer := abc[r.Intn(len(abc))].ID

		perm := r.Perm(len(abc))
		k := 1 + r.Intn(len(abc))
		var ids []model.MemberID
		for _, p := range perm[:k] {
			ids = append(ids, abc[p].ID)
		}

		e := model.Expense{ID: string(rune('A' + i)), PayerID: payer, Amount: amount}
		if r.Intn(2) == 0 || int64(k) > amount {
			e.Shares = equal(ids...)
		} else {
			remaining := amount
			for j, id := range ids {
				part := remaining
				if j < k-1 {
					part = 1 + r.Int63n(remaining-int64(k-1-j))
				}
				remaining -= part
				e.Shares = append(e.Shares, model.CustomShare(id, part))
			}
		}
		out = append(out, e)
	}
	return out
}
