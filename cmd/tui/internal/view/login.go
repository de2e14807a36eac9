package view

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
)

// LoginMsg carries the actor every later screen acts as.
type LoginMsg struct {
	Actor identity.Actor
}

type LoginModel struct {
	accounts identity.Provider
	form     *huh.Form
}

func NewLoginModel(accounts identity.Provider) LoginModel {
	m := LoginModel{accounts: accounts}
	m.form = m.newForm()

	return m
}

func (m LoginModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("ngo@example.com").
				Validate(func(s string) error {
					if _, err := m.accounts.Resolve(context.Background(), s); err != nil {
						return fmt.Errorf("unknown account")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Sign in" }
func (m LoginModel) ShortHelp() string { return "Enter: sign in | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	actor, err := m.accounts.Resolve(context.Background(), m.form.GetString("email"))
	if err != nil {
		m.form = m.newForm()
		return m, m.form.Init()
	}

	return m, func() tea.Msg { return LoginMsg{Actor: actor} }
}

func (m LoginModel) View() string {
	hint := lipgloss.NewStyle().Faint(true).Render(
		"Demo accounts: ngo@example.com, verifier@example.com, admin@example.com",
	)

	return lipgloss.NewStyle().Padding(2).Render(
		"BlueCarbon Registry\n\n" + m.form.View() + "\n\n" + hint,
	)
}
