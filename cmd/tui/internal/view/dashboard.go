package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/report"
)

const recentIssuances = 5

type DashboardModel struct {
	CommonModel
	reports *report.Service

	summary *report.Summary
	recon   *report.Reconciliation
	recent  []*ledger.Entry

	loading bool
	err     error
}

func NewDashboardModel(reports *report.Service, actor identity.Actor) DashboardModel {
	return DashboardModel{CommonModel: CommonModel{Actor: actor}, reports: reports, loading: true}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}

	case dashboardMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.recon = msg.recon
		m.recent = msg.recent
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err))
	}

	card := lipgloss.NewStyle().
		Padding(0, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	s := m.summary
	counts := card.Render(fmt.Sprintf(
		"Pending:  %d\nVerified: %d\nRejected: %d (flagged %d)\nIssued:   %d",
		s.Pending, s.Verified, s.Rejected, s.Flagged, s.Issued,
	))

	totals := card.Render(fmt.Sprintf(
		"Credits issued:   %s\nAwaiting issue:   %d\nLedger entries:   %d\nVerification rate: %.1f%%",
		FormatCarbon(s.TotalIssued), s.PendingIssuance, s.LedgerEntries, s.VerificationRate,
	))

	recon := lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render("Ledger reconciled")
	if !m.recon.Consistent {
		lines := []string{lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(
			fmt.Sprintf("Ledger mismatch: store %s, ledger %s", m.recon.StoreTotal, m.recon.LedgerTotal),
		)}
		for _, mm := range m.recon.Mismatches {
			lines = append(lines, fmt.Sprintf("  %s: %s", mm.SubmissionID, mm.Problem))
		}

		recon = strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString("Recent issuances:\n")

	if len(m.recent) == 0 {
		b.WriteString("  none yet\n")
	}

	for _, e := range m.recent {
		fmt.Fprintf(&b, "  %s  %-12s  %s  %s\n", FormatDate(e.IssuedAt), FormatCarbon(e.CarbonValue), ShortRef(e.IssuanceRef), e.IssuedBy)
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("Signed in as %s (%s)\n", m.Actor.ID, m.Actor.Role),
		lipgloss.JoinHorizontal(lipgloss.Top, counts, " ", totals),
		"",
		recon,
		"",
		b.String(),
	))
}

type dashboardMsg struct {
	summary *report.Summary
	recon   *report.Reconciliation
	recent  []*ledger.Entry
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		var msg dashboardMsg

		// Each figure is read from its own snapshot.
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() (err error) {
			msg.summary, err = m.reports.Summary(ctx)
			return err
		})

		g.Go(func() (err error) {
			msg.recon, err = m.reports.Reconcile(ctx)
			return err
		})

		g.Go(func() (err error) {
			msg.recent, err = m.reports.RecentIssuances(ctx, recentIssuances)
			return err
		})

		if err := g.Wait(); err != nil {
			return dashboardMsg{err: err}
		}

		return msg
	}
}
