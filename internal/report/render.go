package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/splitkit-dev/splitkit/internal/balance"
	"github.com/splitkit-dev/splitkit/internal/model"
	"github.com/splitkit-dev/splitkit/internal/money"
)

var (
	accent   = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	positive = lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#73F59F"}
	negative = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#F38BA8"}
	muted    = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#7F849C"}
)

// Renderer draws tables for a terminal. Colors follow the capabilities of
// the writer it was created for, so piped output stays plain text.
type Renderer struct {
	currency string
	header   lipgloss.Style
	cell     lipgloss.Style
	credit   lipgloss.Style
	debit    lipgloss.Style
	note     lipgloss.Style
}

// NewRenderer returns a Renderer for w. Amounts are labeled with currency.
func NewRenderer(w io.Writer, currency string) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		currency: currency,
		header:   r.NewStyle().Bold(true).Foreground(accent),
		cell:     r.NewStyle(),
		credit:   r.NewStyle().Foreground(positive),
		debit:    r.NewStyle().Foreground(negative),
		note:     r.NewStyle().Foreground(muted).Italic(true),
	}
}

// Balances renders per-member totals. A positive balance means the member
// is owed money.
func (r *Renderer) Balances(summaries []balance.Summary) string {
	rows := make([][]cell, len(summaries))
	for i, s := range summaries {
		rows[i] = []cell{
			{text: s.Name},
			{text: money.Format(s.Paid), right: true},
			{text: money.Format(s.Consumed), right: true},
			{text: money.Format(s.Sent - s.Received), right: true},
			{text: signed(s.Balance), right: true, style: r.amountStyle(s.Balance)},
		}
	}
	head := []string{"Member", "Paid", "Consumed", "Repaid", "Balance (" + r.currency + ")"}
	return r.table(head, rows)
}

// Settlement renders the suggested transfers, or a note when nobody owes anything.
func (r *Renderer) Settlement(transfers []model.Transfer, names Names) string {
	if len(transfers) == 0 {
		return r.note.Render("Everyone is settled up.") + "\n"
	}
	rows := make([][]cell, len(transfers))
	for i, t := range transfers {
		rows[i] = []cell{
			{text: names(t.From)},
			{text: "->"},
			{text: names(t.To)},
			{text: money.Format(t.Amount), right: true},
		}
	}
	return r.table([]string{"From", "", "To", "Amount (" + r.currency + ")"}, rows)
}

// Expenses renders expenses in the order given.
func (r *Renderer) Expenses(list []model.Expense, names Names) string {
	if len(list) == 0 {
		return r.note.Render("No expenses yet.") + "\n"
	}
	rows := make([][]cell, len(list))
	for i, e := range list {
		who := make([]string, len(e.Shares))
		for j, s := range e.Shares {
			who[j] = names(s.MemberID)
			if s.IsCustom() {
				who[j] += " " + money.Format(*s.Custom)
			}
		}
		amount := money.Format(e.Amount)
		if e.OriginalCurrency != "" {
			amount = fmt.Sprintf("%s (%s %s)", amount, e.OriginalAmount.String(), e.OriginalCurrency)
		}
		rows[i] = []cell{
			{text: e.ID},
			{text: e.Date.Format("2006-01-02")},
			{text: e.Title},
			{text: string(e.Category), style: &r.note},
			{text: names(e.PayerID)},
			{text: amount, right: true},
			{text: strings.Join(who, ", ")},
		}
	}
	head := []string{"ID", "Date", "Title", "Category", "Paid by", "Amount (" + r.currency + ")", "Split"}
	return r.table(head, rows)
}

type cell struct {
	text  string
	right bool
	style *lipgloss.Style
}

func (r *Renderer) amountStyle(v int64) *lipgloss.Style {
	switch {
	case v > 0:
		return &r.credit
	case v < 0:
		return &r.debit
	}
	return nil
}

// table lays out cells in padded columns separated by two spaces.
func (r *Renderer) table(head []string, rows [][]cell) string {
	widths := make([]int, len(head))
	for i, h := range head {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c.text))
		}
	}

	var b strings.Builder
	cols := make([]string, len(head))
	for i, h := range head {
		cols[i] = r.header.Render(pad(h, widths[i], false))
	}
	b.WriteString(strings.TrimRight(strings.Join(cols, "  "), " "))
	b.WriteString("\n")

	for _, row := range rows {
		for i, c := range row {
			style := r.cell
			if c.style != nil {
				style = *c.style
			}
			cols[i] = style.Render(pad(c.text, widths[i], c.right))
		}
		b.WriteString(strings.TrimRight(strings.Join(cols, "  "), " "))
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func signed(v int64) string {
	if v > 0 {
		return "+" + money.Format(v)
	}
	return money.Format(v)
}
