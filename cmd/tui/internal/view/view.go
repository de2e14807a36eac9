package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Actor identity.Actor
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
