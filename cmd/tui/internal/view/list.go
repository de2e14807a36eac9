package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

type ListModel struct {
	CommonModel
	svc *submission.Service

	state listState
	table table.Model
	subs  []*submission.Submission
	form  *huh.Form

	// Filter cycling
	stateFilterIdx int
	mineOnly       bool

	filter  submission.ListFilter
	loading bool
	err     error
	status  string
}

func NewListModel(svc *submission.Service, actor identity.Actor) ListModel {
	columns := []table.Column{
		{Title: "Project", Width: 28},
		{Title: "State", Width: 10},
		{Title: "Carbon", Width: 12},
		{Title: "Collected", Width: 12},
		{Title: "Location", Width: 22},
		{Title: "Submitted By", Width: 24},
		{Title: "Issuance", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		CommonModel: CommonModel{Actor: actor},
		svc:         svc,
		table:       t,
		loading:     true,
	}
}

func (m ListModel) Title() string { return "Submissions" }
func (m ListModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | e: amend carbon value | s: state filter | m: mine only | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.subs = msg.subs
		m.refreshTable()
		return m, nil

	case listSaveMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "s":
			m.stateFilterIdx = (m.stateFilterIdx + 1) % (len(submission.States) + 1)
			m.applyFilter()
			return m, m.loadCmd()
		case "m":
			m.mineOnly = !m.mineOnly
			m.applyFilter()
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.subs) {
		return m, nil
	}

	if m.subs[idx].State != submission.StatePending {
		m.status = "Carbon value can only be amended while pending."
		return m, nil
	}

	current := ""
	if !m.subs[idx].CarbonValue.IsZero() {
		current = m.subs[idx].CarbonValue.String()
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("carbon_value").
				Title("Carbon value (t CO2e)").
				Placeholder(current).
				Validate(func(s string) error {
					v, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || !v.IsPositive() {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()
	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd(m.form.GetString("carbon_value"))
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading submissions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	stateLabel := "All"
	if m.filter.State != nil {
		stateLabel = string(*m.filter.State)
	}

	ownerLabel := "Everyone"
	if m.mineOnly {
		ownerLabel = m.Actor.ID
	}

	header := fmt.Sprintf(
		"Filter: [s] State: %s | [m] Submitted by: %s | %d shown",
		activeStyle(stateLabel),
		activeStyle(ownerLabel),
		len(m.subs),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateEdit && m.form != nil {
		name := ""
		if idx := m.table.Cursor(); idx >= 0 && idx < len(m.subs) {
			name = m.subs[idx].ProjectName
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("Amend Carbon Value\n\nProject: %s\n\n%s", name, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) applyFilter() {
	m.filter.State = nil
	if m.stateFilterIdx > 0 {
		m.filter.State = new(submission.States[m.stateFilterIdx-1])
	}

	m.filter.SubmittedBy = ""
	if m.mineOnly {
		m.filter.SubmittedBy = m.Actor.ID
	}
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.subs))
	for _, s := range m.subs {
		ref := ""
		if s.Issuance != nil {
			ref = ShortRef(s.Issuance.IssuanceRef)
		}
		rows = append(rows, table.Row{
			s.ProjectName,
			string(s.State),
			FormatCarbon(s.CarbonValue),
			FormatDate(s.CollectionDate),
			s.Location.String(),
			s.SubmittedBy,
			ref,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	subs []*submission.Submission
	err  error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		subs, err := m.svc.List(ctx, filter)
		return loadListMsg{subs: subs, err: err}
	}
}

type listSaveMsg struct {
	err error
}

func (m ListModel) saveCmd(raw string) tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.subs) {
		return nil
	}

	id := m.subs[idx].ID
	actor := m.Actor

	return func() tea.Msg {
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return listSaveMsg{err: err}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		_, err = m.svc.AmendCarbonValue(ctx, actor, id, value)
		return listSaveMsg{err: err}
	}
}
