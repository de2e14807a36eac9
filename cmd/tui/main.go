package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/bluecarbon/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/bluecarbon/internal/config"
	"github.com/MrJamesThe3rd/bluecarbon/internal/database"
	"github.com/MrJamesThe3rd/bluecarbon/internal/demo"
	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/intake"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/report"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
	subStore "github.com/MrJamesThe3rd/bluecarbon/internal/submission/store"
	"github.com/MrJamesThe3rd/bluecarbon/internal/verification"
)

type backend interface {
	submission.Repository
	submission.Snapshotter
	ledger.Reader
}

type model struct {
	submissionService *submission.Service
	intakeService     *intake.Service
	reportService     *report.Service
	rules             submission.Assessor
	accounts          *identity.Directory

	actor       identity.Actor
	currentView View

	loginView     view.LoginModel
	dashboardView view.DashboardModel
	listView      view.ListModel
	createView    view.CreateModel
	importView    view.ImportModel
	reviewView    view.ReviewModel
	issuanceView  view.IssuanceModel
}

type View int

const (
	ViewLogin     View = 0
	ViewMenu      View = 1
	ViewDashboard View = 2
	ViewList      View = 3
	ViewCreate    View = 4
	ViewImport    View = 5
	ViewReview    View = 6
	ViewIssuance  View = 7
)

type menuEntry struct {
	key   string
	label string
	view  View
	role  identity.Role // empty means any role
}

var menu = []menuEntry{
	{key: "1", label: "Dashboard", view: ViewDashboard},
	{key: "2", label: "Browse Submissions", view: ViewList},
	{key: "3", label: "New Submission", view: ViewCreate, role: identity.RoleSubmitter},
	{key: "4", label: "Import Submissions (CSV)", view: ViewImport, role: identity.RoleSubmitter},
	{key: "5", label: "Verification Queue", view: ViewReview, role: identity.RoleVerifier},
	{key: "6", label: "Issuance Queue", view: ViewIssuance, role: identity.RoleAdmin},
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var store backend = subStore.NewMemory()

	if cfg.Store.Backend == "postgres" {
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}

		if err := database.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		store = subStore.NewPostgres(db)
	}

	recorder := ledger.NewRecorder(store)
	subSvc := submission.NewService(store, recorder)

	// An empty in-memory registry is of no use to an operator.
	if cfg.App.SeedDemo || cfg.Store.Backend != "postgres" {
		if _, err := demo.Seed(ctx, subSvc); err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	accounts := identity.DemoDirectory()

	return model{
		submissionService: subSvc,
		intakeService:     intake.NewService(subSvc),
		reportService:     report.NewService(store, recorder),
		rules:             verification.NewRules(cfg.Verify.MaxAge, cfg.Verify.MaxCarbonValue),
		accounts:          accounts,
		currentView:       ViewLogin,
		loginView:         view.NewLoginModel(accounts),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) allowed(e menuEntry) bool {
	return e.role == "" || e.role == m.actor.Role
}

func (m model) open(v View) (model, tea.Cmd) {
	m.currentView = v

	switch v {
	case ViewDashboard:
		m.dashboardView = view.NewDashboardModel(m.reportService, m.actor)
		return m, m.dashboardView.Init()
	case ViewList:
		m.listView = view.NewListModel(m.submissionService, m.actor)
		return m, m.listView.Init()
	case ViewCreate:
		m.createView = view.NewCreateModel(m.submissionService, m.actor)
		return m, m.createView.Init()
	case ViewImport:
		m.importView = view.NewImportModel(m.intakeService, m.actor)
		return m, m.importView.Init()
	case ViewReview:
		m.reviewView = view.NewReviewModel(m.submissionService, m.rules, m.actor)
		return m, m.reviewView.Init()
	case ViewIssuance:
		m.issuanceView = view.NewIssuanceModel(m.submissionService, m.actor)
		return m, m.issuanceView.Init()
	}

	return m, nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "l":
				m.actor = identity.Actor{}
				m.currentView = ViewLogin
				m.loginView = view.NewLoginModel(m.accounts)

				return m, m.loginView.Init()
			}

			for _, e := range menu {
				if e.key == msg.String() && m.allowed(e) {
					return m.open(e.view)
				}
			}

			return m, nil
		}
	case view.LoginMsg:
		m.actor = msg.Actor
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewCreate:
		var newModel tea.Model
		newModel, cmd = m.createView.Update(msg)
		m.createView = newModel.(view.CreateModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewIssuance:
		var newModel tea.Model
		newModel, cmd = m.issuanceView.Update(msg)
		m.issuanceView = newModel.(view.IssuanceModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		s := "BlueCarbon Registry\n" +
			lipgloss.NewStyle().Faint(true).Render(string(m.actor.Role)+": "+m.actor.ID) + "\n\n"

		for _, e := range menu {
			if m.allowed(e) {
				s += e.key + ". " + e.label + "\n"
			}
		}

		return lipgloss.NewStyle().Padding(2).Render(s + "\nl. Sign out\nq. Quit")
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewList:
		return m.listView.View()
	case ViewCreate:
		return m.createView.View()
	case ViewImport:
		return m.importView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewIssuance:
		return m.issuanceView.View()
	}

	return "Unknown View"
}

func main() {
	// slog's default handler writes through the log package, which the
	// program redirects away from the terminal it draws on.
	f, err := tea.LogToFile("bluecarbon-tui.log", "tui")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
