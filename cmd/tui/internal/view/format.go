package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

const storeTimeout = 5 * time.Second

// FormatCarbon renders a carbon value in tonnes, or a dash when unset.
func FormatCarbon(v decimal.Decimal) string {
	if v.IsZero() {
		return "-"
	}

	return v.StringFixed(2) + " t"
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ShortRef abbreviates an issuance reference for table cells.
func ShortRef(ref string) string {
	if len(ref) <= 14 {
		return ref
	}

	return ref[:8] + "…" + ref[len(ref)-4:]
}

var stateColors = map[submission.State]lipgloss.Color{
	submission.StatePending:  lipgloss.Color("214"),
	submission.StateVerified: lipgloss.Color("39"),
	submission.StateRejected: lipgloss.Color("196"),
	submission.StateIssued:   lipgloss.Color("46"),
}

func stateBadge(s submission.State) string {
	return lipgloss.NewStyle().Foreground(stateColors[s]).Render(string(s))
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

// StoreCtx returns a context with a standard timeout for store operations.
func StoreCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
