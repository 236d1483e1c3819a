package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitkit-dev/splitkit/internal/ledger"
	"github.com/splitkit-dev/splitkit/internal/members"
	"github.com/splitkit-dev/splitkit/internal/model"
)

func parseTestdata(t *testing.T) []Row {
	t.Helper()
	f, err := os.Open("../../testdata/import_generic.csv")
	require.NoError(t, err)
	defer f.Close()

	rows, err := (&GenericParser{}).Parse(f)
	require.NoError(t, err)
	return rows
}

func TestGenericParser_Parse(t *testing.T) {
	rows := parseTestdata(t)
	require.Len(t, rows, 4)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "Ichiran", first.Title)
	assert.Equal(t, "Alice", first.Payer)
	assert.Equal(t, "JPY", first.Currency)
	assert.Equal(t, "3000", first.Amount.String())
	require.Len(t, first.Participants, 3)
	assert.Nil(t, first.Participants[0].Amount)
	assert.Equal(t, "tonkotsu", first.Note)

	shop := rows[2]
	require.Len(t, shop.Participants, 2)
	require.NotNil(t, shop.Participants[0].Amount)
	assert.Equal(t, "6000", shop.Participants[0].Amount.String())

	assert.Equal(t, 6, rows[3].Date.Day())
	assert.Equal(t, 6, rows[3].Line, "blank lines still count")
}

func TestGenericParser_HeaderOnly(t *testing.T) {
	rows, err := (&GenericParser{}).Parse(strings.NewReader(GenericHeader + "\n"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestGenericParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "03/01/2025,x,dining,alice,10,,alice,", "parsing date"},
		{"bad amount", "2025-01-03,x,dining,alice,ten,,alice,", "parsing amount"},
		{"bad share", "2025-01-03,x,dining,alice,10,,alice=abc,", "parsing share"},
		{"nameless share", "2025-01-03,x,dining,alice,10,,=5,", "without a name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&GenericParser{}).Parse(strings.NewReader(GenericHeader + "\n" + tt.row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("generic"))
	assert.NotNil(t, r.Get("GENERIC"))
	assert.Nil(t, r.Get("splitwise"))

	assert.Panics(t, func() { r.Register(&GenericParser{}) })
}

var trip = members.NewService([]model.Member{
	{ID: "alice", Name: "Alice"},
	{ID: "bob", Name: "Bob"},
	{ID: "carol", Name: "Carol"},
})

func rates(currency string) (decimal.Decimal, error) {
	switch strings.ToUpper(currency) {
	case "", "HKD":
		return decimal.NewFromInt(1), nil
	case "JPY":
		return decimal.RequireFromString("0.053"), nil
	}
	return decimal.Zero, assert.AnError
}

func TestBuild(t *testing.T) {
	params, err := Build(parseTestdata(t), trip, rates)
	require.NoError(t, err)
	require.Len(t, params, 4)

	ramen := params[0]
	assert.Equal(t, model.MemberID("alice"), ramen.PayerID)
	assert.Equal(t, int64(15900), ramen.Amount)
	assert.Equal(t, "JPY", ramen.OriginalCurrency)
	assert.Equal(t, "3000", ramen.OriginalAmount.String())
	assert.Equal(t, model.CategoryDining, ramen.Category)
	assert.Equal(t, []model.Share{
		model.EqualShare("alice"), model.EqualShare("bob"), model.EqualShare("carol"),
	}, ramen.Shares)

	train := params[1]
	assert.Equal(t, int64(24000), train.Amount)
	assert.Empty(t, train.OriginalCurrency, "reference currency keeps no original")
	assert.Equal(t, []model.Share{model.CustomShare("alice", 12000), model.CustomShare("bob", 12000)}, train.Shares)

	shop := params[2]
	assert.Equal(t, int64(53000), shop.Amount)
	assert.Equal(t, []model.Share{model.CustomShare("carol", 31800), model.CustomShare("alice", 21200)}, shop.Shares)

	assert.Equal(t, int64(15000), params[3].Amount)
}

func TestBuild_CollectsErrors(t *testing.T) {
	rows := []Row{
		{Line: 2, Payer: "mallory", Amount: decimal.NewFromInt(1), Participants: []Participant{{Ref: "alice"}}},
		{Line: 3, Payer: "alice", Amount: decimal.NewFromInt(1), Currency: "EUR", Participants: []Participant{{Ref: "alice"}}},
		{Line: 4, Payer: "alice", Amount: decimal.NewFromInt(1), Participants: []Participant{{Ref: "dave"}}},
	}
	_, err := Build(rows, trip, rates)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `line 2: unknown payer "mallory"`)
	assert.Contains(t, msg, "line 3:")
	assert.Contains(t, msg, `line 4: unknown participant "dave"`)
}

func TestScanAndMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Nil(t, files)

	inbox := filepath.Join(dir, "inbox")
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "tokyo.csv"), []byte(GenericHeader+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("skip"), 0o644))

	files, err = Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "tokyo.csv", files[0].Name)

	require.NoError(t, MarkProcessed(dir, "tokyo.csv"))
	_, err = os.Stat(filepath.Join(inbox, "processed", "tokyo.csv"))
	require.NoError(t, err)

	files, err = Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestBuildRow_ForeignCustomSplitStaysExact(t *testing.T) {
	var group []model.Member
	var parts []Participant
	for i := 0; i < 10; i++ {
		m := model.Member{ID: model.MemberID(fmt.Sprintf("m%02d", i)), Name: fmt.Sprintf("Member %d", i)}
		group = append(group, m)
		share := decimal.NewFromInt(105)
		parts = append(parts, Participant{Ref: string(m.ID), Amount: &share})
	}
	crowd := members.NewService(group)

	row := Row{
		Line:         2,
		Date:         time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
		Payer:        "m00",
		Amount:       decimal.NewFromInt(1050),
		Currency:     "JPY",
		Participants: parts,
	}
	p, err := BuildRow(row, crowd, rates)
	require.NoError(t, err)
	assert.Equal(t, int64(5565), p.Amount)

	var sum int64
	for _, s := range p.Shares {
		require.True(t, s.IsCustom())
		sum += *s.Custom
	}
	assert.Equal(t, p.Amount, sum)

	e := model.Expense{ID: "x", PayerID: p.PayerID, Amount: p.Amount, Shares: p.Shares}
	assert.NoError(t, ledger.Check(e, ledger.NewMemberSet(group), ledger.DefaultPolicy()))
}

func TestGenericParser_ThousandsSeparator(t *testing.T) {
	csv := GenericHeader + "\n" + `2025-01-03,Hotel,hotel,alice,"1,234.50",,"alice=1,000.50;bob=234",` + "\n"
	rows, err := (&GenericParser{}).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1234.5", rows[0].Amount.String())
	assert.Equal(t, "1000.5", rows[0].Participants[0].Amount.String())
}
