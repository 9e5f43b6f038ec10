package console

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"settlement_console/internal/models"
)

// Calculator computes a project's settlement on the backend.
type Calculator interface {
	CalculateSettlement(ctx context.Context, projectID uint) (models.SettlementResult, error)
}

type ProjectOption struct {
	ID       uint
	Label    string
	Selected bool
}

type SettlementLineView struct {
	Name       string
	Code       string
	Role       Cell
	Rate       float64
	RateText   string
	Amount     float64
	AmountText string
}

type SettlementSummary struct {
	ProjectName      string
	TotalProfit      float64
	TotalProfitText  string
	ParticipantCount int
	Lines            []SettlementLineView
}

type SettlementView struct {
	Options []ProjectOption
	Result  *SettlementSummary
	Alert   *Alert
}

// Placeholder is shown until a calculation has run.
const SettlementPlaceholder = "Select a project and press Calculate."

// Settlements drives the settlement tab. Amounts are shown exactly as the backend returns them.
type Settlements struct {
	src    Source
	calc   Calculator
	logger *slog.Logger
}

func NewSettlements(src Source, calc Calculator, logger *slog.Logger) *Settlements {
	return &Settlements{src: src, calc: calc, logger: logger}
}

// Open refreshes the project picker.
func (s *Settlements) Open(ctx context.Context, st State) (State, SettlementView) {
	st = st.Activate(TabSettlements)

	projects, err := s.src.ListProjects(ctx)
	if err != nil {
		s.logger.Error("failed to load projects for settlement", "error", err)
		return st, SettlementView{
			Options: projectOptions(st.Projects, st.SelectedProject),
			Alert:   NewAlert(AlertDanger, "Failed to load projects."),
		}
	}
	st.Projects = projects
	return st, SettlementView{Options: projectOptions(projects, st.SelectedProject)}
}

// Calculate requests the breakdown for the picked project. An empty pick
// produces a warning and no request.
func (s *Settlements) Calculate(ctx context.Context, st State, rawID string) (State, SettlementView) {
	st = st.Activate(TabSettlements)
	if len(st.Projects) == 0 {
		if projects, err := s.src.ListProjects(ctx); err == nil {
			st.Projects = projects
		} else {
			s.logger.Warn("failed to load projects for settlement", "error", err)
		}
	}

	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		st.SelectedProject = 0
		return st, SettlementView{
			Options: projectOptions(st.Projects, 0),
			Alert:   NewAlert(AlertWarning, "Please select a project."),
		}
	}
	st.SelectedProject = uint(id)
	view := SettlementView{Options: projectOptions(st.Projects, st.SelectedProject)}

	res, err := s.calc.CalculateSettlement(ctx, uint(id))
	if err != nil {
		s.logger.Error("settlement calculation failed", "project_id", id, "error", err)
		view.Alert = NewAlert(AlertDanger, "Failed to calculate settlement: "+err.Error())
		return st, view
	}

	view.Result = summarizeSettlement(res)
	view.Alert = NewAlert(AlertSuccess, "Settlement calculated.")
	return st, view
}

func summarizeSettlement(res models.SettlementResult) *SettlementSummary {
	lines := make([]SettlementLineView, 0, len(res.Lines))
	for _, l := range res.Lines {
		lines = append(lines, SettlementLineView{
			Name:       l.ParticipantName,
			Code:       l.ParticipantCode,
			Role:       RoleBadge(l.ParticipantRole),
			Rate:       l.ProfitRate,
			RateText:   FormatRate(l.ProfitRate),
			Amount:     l.Amount,
			AmountText: FormatMoney(l.Amount),
		})
	}
	return &SettlementSummary{
		ProjectName:      res.ProjectName,
		TotalProfit:      res.TotalProfit,
		TotalProfitText:  FormatMoney(res.TotalProfit),
		ParticipantCount: len(lines),
		Lines:            lines,
	}
}

func projectOptions(projects []models.Project, selected uint) []ProjectOption {
	opts := make([]ProjectOption, 0, len(projects))
	for _, p := range projects {
		label := p.Name
		if c := models.StringValue(p.Client); c != "" {
			label = fmt.Sprintf("%s (%s)", p.Name, c)
		}
		opts = append(opts, ProjectOption{ID: p.ID, Label: label, Selected: p.ID == selected})
	}
	return opts
}
