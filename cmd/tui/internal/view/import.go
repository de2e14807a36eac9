package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/intake"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

// ImportModel bulk-creates submissions from a CSV sheet.
type ImportModel struct {
	CommonModel
	intakeService *intake.Service

	state      importState
	filePicker filepicker.Model

	result     *intake.Result
	failedList list.Model

	status string
	err    error
}

func NewImportModel(intakeSvc *intake.Service, actor identity.Actor) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel:   CommonModel{Actor: actor},
		intakeService: intakeSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Submissions" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult {
		return "↑/↓: browse failed rows | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateResult && m.result != nil && len(m.result.Failed) > 0 {
			var cmd tea.Cmd
			m.failedList, cmd = m.failedList.Update(msg)

			return m, cmd
		}

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.result = msg.result
		m.status = fmt.Sprintf("Imported %d submissions (%s, %s layout).",
			len(msg.result.Created), msg.result.Charset, msg.result.Profile)

		items := make([]list.Item, len(msg.result.Failed))
		for i, f := range msg.result.Failed {
			items[i] = failedItem{row: f}
		}

		m.failedList = list.New(items, failedDelegate{}, 80, 15)
		m.failedList.Title = fmt.Sprintf("%d rows rejected", len(items))
		m.failedList.SetShowStatusBar(false)
		m.failedList.SetFilteringEnabled(false)
		m.failedList.SetShowHelp(false)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.err = nil
		m.result = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a CSV sheet to import as %s:\n\n%s", m.Actor.ID, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	content := lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status)
	if len(m.result.Failed) > 0 {
		content += "\n\n" + m.failedList.View()
	}

	return style.Render(content + "\n\n(Esc to go back)")
}

// Messages

type importResultMsg struct {
	result *intake.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	actor := m.Actor

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.intakeService.Import(ctx, actor, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

// Failed row list item

type failedItem struct {
	row intake.RowError
}

func (i failedItem) Title() string       { return "" }
func (i failedItem) Description() string { return "" }
func (i failedItem) FilterValue() string { return "" }

// Failed row list delegate

type failedDelegate struct{}

func (d failedDelegate) Height() int                             { return 1 }
func (d failedDelegate) Spacing() int                            { return 0 }
func (d failedDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d failedDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(failedItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%sline %d  %v", cursor, item.row.Line, item.row.Err)
}
