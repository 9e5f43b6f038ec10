package console

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"settlement_console/internal/models"
)

// Source is the read side of the backend the loader needs.
type Source interface {
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// Loader fetches collections and turns them into view models.
// Failures are logged and surfaced as an alert; nothing is retried.
type Loader struct {
	src    Source
	logger *slog.Logger
}

func NewLoader(src Source, logger *slog.Logger) *Loader {
	return &Loader{src: src, logger: logger}
}

// Summary holds the dashboard aggregates.
type Summary struct {
	TotalParticipants int
	ActiveProjects    int
	CompletedProjects int
	TotalSettlements  float64
}

func (s Summary) TotalSettlementsText() string {
	return FormatMoney(s.TotalSettlements)
}

// Summarize counts participants and projects. Settlements total the profit of completed projects.
func Summarize(participants []models.Participant, projects []models.Project) Summary {
	s := Summary{TotalParticipants: len(participants)}
	for _, p := range projects {
		switch p.Status {
		case models.StatusInProgress:
			s.ActiveProjects++
		case models.StatusCompleted:
			s.CompletedProjects++
			s.TotalSettlements += p.Profit
		}
	}
	return s
}

type DashboardView struct {
	Summary Summary
	Recent  Table
	Alert   *Alert
}

type ParticipantsView struct {
	Table Table
	Alert *Alert
}

type ProjectsView struct {
	Table Table
	Alert *Alert
}

func (l *Loader) Dashboard(ctx context.Context, st State) (State, DashboardView) {
	st = st.Activate(TabDashboard)

	var (
		participants []models.Participant
		projects     []models.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = l.src.ListParticipants(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = l.src.ListProjects(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		l.logger.Error("failed to load dashboard", "error", err)
		return st, DashboardView{
			Recent: recentProjectsTable(nil),
			Alert:  NewAlert(AlertDanger, "Failed to load the dashboard."),
		}
	}

	st.Participants = participants
	st.Projects = projects
	return st, DashboardView{
		Summary: Summarize(participants, projects),
		Recent:  recentProjectsTable(projects),
	}
}

func (l *Loader) Participants(ctx context.Context, st State) (State, ParticipantsView) {
	st = st.Activate(TabParticipants)

	participants, err := l.src.ListParticipants(ctx)
	if err != nil {
		l.logger.Error("failed to load participants", "error", err)
		return st, ParticipantsView{
			Table: participantsTable(nil),
			Alert: NewAlert(AlertDanger, "Failed to load participants."),
		}
	}

	st.Participants = participants
	return st, ParticipantsView{Table: participantsTable(participants)}
}

func (l *Loader) Projects(ctx context.Context, st State) (State, ProjectsView) {
	st = st.Activate(TabProjects)

	projects, err := l.src.ListProjects(ctx)
	if err != nil {
		l.logger.Error("failed to load projects", "error", err)
		return st, ProjectsView{
			Table: projectsTable(nil),
			Alert: NewAlert(AlertDanger, "Failed to load projects."),
		}
	}

	st.Projects = projects
	return st, ProjectsView{Table: projectsTable(projects)}
}
