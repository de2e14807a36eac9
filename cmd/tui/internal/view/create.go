package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

type CreateModel struct {
	CommonModel
	svc *submission.Service

	form    *huh.Form
	created *submission.Submission
	err     error
}

func NewCreateModel(svc *submission.Service, actor identity.Actor) CreateModel {
	m := CreateModel{CommonModel: CommonModel{Actor: actor}, svc: svc}
	m.form = newSubmissionForm()

	return m
}

func newSubmissionForm() *huh.Form {
	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("project_name").
				Title("Project name").
				Validate(required("project name")),

			huh.NewInput().
				Key("location").
				Title("Location").
				Placeholder("lat,lng").
				Validate(func(s string) error {
					_, err := submission.ParseLocation(s)
					return err
				}),

			huh.NewInput().
				Key("collection_date").
				Title("Collection date").
				Placeholder(time.Now().Format("2006-01-02")).
				Validate(func(s string) error {
					_, err := submission.ParseCollectionDate(s)
					return err
				}),

			huh.NewInput().
				Key("carbon_value").
				Title("Carbon value (optional)").
				Placeholder("tonnes CO2e").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("not a number")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m CreateModel) Title() string     { return "New Submission" }
func (m CreateModel) ShortHelp() string { return "Navigate form | Esc: back" }

func (m CreateModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.form.State == huh.StateCompleted && msg.Type == tea.KeyEnter {
			m.form = newSubmissionForm()
			m.created = nil
			m.err = nil

			return m, m.form.Init()
		}

	case createdMsg:
		m.created = msg.sub
		m.err = msg.err

		return m, nil
	}

	if m.form.State == huh.StateCompleted {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.createCmd()
	}

	return m, cmd
}

func (m CreateModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.form.State != huh.StateCompleted {
		return style.Render(fmt.Sprintf("New Submission as %s\n\n%s", m.Actor.ID, m.form.View()))
	}

	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err)) +
				"\n\n(Enter for a new form, Esc to go back)",
		)
	}

	if m.created == nil {
		return style.Render("Saving...")
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(
			fmt.Sprintf("Created %s (%s), state %s", m.created.ProjectName, m.created.ID, m.created.State),
		) + "\n\n(Enter for a new form, Esc to go back)",
	)
}

type createdMsg struct {
	sub *submission.Submission
	err error
}

func (m CreateModel) createCmd() tea.Cmd {
	params := submission.CreateParams{
		ProjectName:    m.form.GetString("project_name"),
		Location:       m.form.GetString("location"),
		CollectionDate: m.form.GetString("collection_date"),
		SubmittedBy:    m.Actor.ID,
	}

	if raw := strings.TrimSpace(m.form.GetString("carbon_value")); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil {
			params.CarbonValue = &v
		}
	}

	actor := m.Actor

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		sub, err := m.svc.Create(ctx, actor, params)
		return createdMsg{sub: sub, err: err}
	}
}
