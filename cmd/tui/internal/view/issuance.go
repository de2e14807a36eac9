package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

// IssuanceModel lists verified submissions awaiting credits.
type IssuanceModel struct {
	CommonModel
	svc *submission.Service

	queue   []*submission.Submission
	current *submission.Submission

	lastRef    string
	loading    bool
	status     string
	totalCount int
}

func NewIssuanceModel(svc *submission.Service, actor identity.Actor) IssuanceModel {
	return IssuanceModel{
		CommonModel: CommonModel{Actor: actor},
		svc:         svc,
		loading:     true,
		status:      "Loading verified submissions...",
	}
}

func (m IssuanceModel) Title() string     { return "Issuance Queue" }
func (m IssuanceModel) ShortHelp() string { return "Enter: issue credits | s: skip | Esc: back" }

func (m IssuanceModel) Init() tea.Cmd {
	return m.loadVerifiedCmd()
}

func (m IssuanceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "enter":
			if m.current != nil {
				m.loading = true
				return m, m.issueCmd()
			}
		case "s":
			if m.current != nil {
				m.next()
			}
		}

	case loadVerifiedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.queue = msg.subs
		m.totalCount = len(m.queue)
		m.next()

	case issueMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error issuing: %v", msg.err)
			break
		}

		m.lastRef = msg.sub.Issuance.IssuanceRef
		m.next()
	}

	return m, nil
}

func (m *IssuanceModel) next() {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = "No verified submissions awaiting issuance."

		return
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Issuing %d/%d", m.totalCount-len(m.queue), m.totalCount)
}

func (m IssuanceModel) View() string {
	var content string

	if m.current != nil {
		s := m.current
		info := fmt.Sprintf(
			"Project:      %s\nSubmitted by: %s\nVerified by:  %s on %s\nCarbon:       %s\n",
			s.ProjectName,
			s.SubmittedBy,
			s.Decision.DecidedBy,
			FormatDate(s.Decision.DecidedAt),
			FormatCarbon(s.Decision.CarbonValue),
		)
		content = fmt.Sprintf("%s\n\n%s\n(Enter to issue, s to skip, Esc to back)", m.status, info)
	} else {
		content = m.status + "\n\n(Esc to back)"
	}

	if m.lastRef != "" {
		content = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render("Issued "+m.lastRef) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

type loadVerifiedMsg struct {
	subs []*submission.Submission
	err  error
}

func (m IssuanceModel) loadVerifiedCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		subs, err := m.svc.ListByState(ctx, submission.StateVerified)
		return loadVerifiedMsg{subs: subs, err: err}
	}
}

type issueMsg struct {
	sub *submission.Submission
	err error
}

func (m IssuanceModel) issueCmd() tea.Cmd {
	id := m.current.ID
	actor := m.Actor

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		sub, err := m.svc.ApplyTransition(ctx, actor, id, submission.Transition{Event: submission.EventIssueCredits})
		return issueMsg{sub: sub, err: err}
	}
}
