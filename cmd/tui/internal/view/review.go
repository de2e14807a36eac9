package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

var rejectReasons = []submission.RejectReason{
	submission.ReasonUnspecified,
	submission.ReasonInsufficientEvidence,
	submission.ReasonDataInconsistent,
	submission.ReasonFraudDetected,
}

// ReviewModel walks the verifier through the pending queue one submission
// at a time.
type ReviewModel struct {
	CommonModel
	svc      *submission.Service
	assessor submission.Assessor

	queue   []*submission.Submission
	current *submission.Submission

	valueInput     textinput.Model
	rationaleInput textinput.Model
	focusIndex     int // 0: value, 1: rationale
	reasonIdx      int

	status     string
	loading    bool
	totalCount int
}

func NewReviewModel(svc *submission.Service, assessor submission.Assessor, actor identity.Actor) ReviewModel {
	vi := textinput.New()
	vi.Placeholder = "tonnes CO2e"
	vi.Width = 20
	vi.Prompt = "Carbon value: "

	ri := textinput.New()
	ri.Placeholder = "optional"
	ri.Width = 50
	ri.Prompt = "Rationale:    "

	return ReviewModel{
		CommonModel:    CommonModel{Actor: actor},
		svc:            svc,
		assessor:       assessor,
		valueInput:     vi,
		rationaleInput: ri,
		loading:        true,
	}
}

func (m ReviewModel) Title() string { return "Verification Queue" }
func (m ReviewModel) ShortHelp() string {
	return "Enter: confirm | Ctrl+R: reject | Ctrl+T: reason | Ctrl+A: automated checks | Ctrl+S: skip | Tab: next field | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadPendingCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "tab":
			m.focusIndex = (m.focusIndex + 1) % 2
			m.focusInputs()
			return m, textinput.Blink
		case "ctrl+t":
			m.reasonIdx = (m.reasonIdx + 1) % len(rejectReasons)
			return m, nil
		case "ctrl+s":
			if m.current != nil {
				m.nextSubmission()
				return m, textinput.Blink
			}
		case "enter":
			if m.current != nil {
				return m, m.decideCmd(submission.EventVerifyConfirm)
			}
		case "ctrl+r":
			if m.current != nil {
				return m, m.decideCmd(submission.EventVerifyReject)
			}
		case "ctrl+a":
			if m.current != nil {
				return m, m.assessCmd()
			}
		}

	case loadPendingMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading queue: %v", msg.err)
			break
		}

		m.queue = msg.subs
		m.totalCount = len(m.queue)
		m.nextSubmission()

		return m, textinput.Blink

	case decisionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			break
		}

		m.nextSubmission()
		m.status = fmt.Sprintf("%s %s. %s", msg.sub.ProjectName, msg.sub.State, m.status)

		return m, textinput.Blink
	}

	if m.current != nil {
		var cmd1, cmd2 tea.Cmd
		m.valueInput, cmd1 = m.valueInput.Update(msg)
		m.rationaleInput, cmd2 = m.rationaleInput.Update(msg)
		cmd = tea.Batch(cmd1, cmd2)
	}

	return m, cmd
}

func (m *ReviewModel) focusInputs() {
	if m.focusIndex == 0 {
		m.valueInput.Focus()
		m.rationaleInput.Blur()
		return
	}

	m.valueInput.Blur()
	m.rationaleInput.Focus()
}

func (m *ReviewModel) nextSubmission() {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = "Queue empty. Nothing left to verify."
		m.valueInput.Blur()
		m.rationaleInput.Blur()

		return
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)

	m.valueInput.SetValue("")
	if !m.current.CarbonValue.IsZero() {
		m.valueInput.SetValue(m.current.CarbonValue.String())
	}

	m.rationaleInput.SetValue("")
	m.reasonIdx = 0
	m.focusIndex = 0
	m.focusInputs()
}

func (m ReviewModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading pending submissions...")
	}

	if m.current == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to back)")
	}

	s := m.current
	info := fmt.Sprintf(
		"Project:   %s\nLocation:  %s\nCollected: %s\nBy:        %s\nState:     %s\nCarbon:    %s\n",
		s.ProjectName,
		s.Location,
		FormatDate(s.CollectionDate),
		s.SubmittedBy,
		stateBadge(s.State),
		FormatCarbon(s.CarbonValue),
	)

	reason := string(rejectReasons[m.reasonIdx])
	if reason == "" {
		reason = "unspecified"
	}

	return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf(
		"%s\n\n%s\n%s\n%s\n\nReject reason: %s\n\n%s",
		m.status,
		info,
		m.valueInput.View(),
		m.rationaleInput.View(),
		activeStyle(reason),
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	))
}

type loadPendingMsg struct {
	subs []*submission.Submission
	err  error
}

func (m ReviewModel) loadPendingCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		subs, err := m.svc.ListByState(ctx, submission.StatePending)
		return loadPendingMsg{subs: subs, err: err}
	}
}

type decisionMsg struct {
	sub *submission.Submission
	err error
}

func (m ReviewModel) decideCmd(event submission.Event) tea.Cmd {
	id := m.current.ID
	actor := m.Actor
	t := submission.Transition{
		Event:     event,
		Rationale: strings.TrimSpace(m.rationaleInput.Value()),
	}

	if event == submission.EventVerifyReject {
		t.Reason = rejectReasons[m.reasonIdx]
	}

	raw := strings.TrimSpace(m.valueInput.Value())

	return func() tea.Msg {
		if event == submission.EventVerifyConfirm && raw != "" {
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return decisionMsg{err: fmt.Errorf("invalid carbon value %q", raw)}
			}
			t.CarbonValue = &v
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		sub, err := m.svc.ApplyTransition(ctx, actor, id, t)
		return decisionMsg{sub: sub, err: err}
	}
}

func (m ReviewModel) assessCmd() tea.Cmd {
	id := m.current.ID
	actor := m.Actor

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		sub, err := m.svc.Assess(ctx, actor, id, m.assessor)
		return decisionMsg{sub: sub, err: err}
	}
}
