package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"settlement_console/internal/models"
)

func strPtr(s string) *string { return &s }

func TestEmptyCollectionsRenderOnePlaceholderRow(t *testing.T) {
	fb := &fakeBackend{}
	l := NewLoader(fb, discardLogger())
	ctx := context.Background()

	_, dash := l.Dashboard(ctx, NewState())
	require.Nil(t, dash.Alert)
	require.Len(t, dash.Recent.Rows, 1)
	require.True(t, dash.Recent.Rows[0].Placeholder())
	require.Equal(t, 6, dash.Recent.Rows[0].Span)

	_, parts := l.Participants(ctx, NewState())
	require.Len(t, parts.Table.Rows, 1)
	require.Equal(t, 8, parts.Table.Rows[0].Span)
	require.Equal(t, len(parts.Table.Columns), parts.Table.Rows[0].Span)

	_, projs := l.Projects(ctx, NewState())
	require.Len(t, projs.Table.Rows, 1)
	require.Equal(t, 7, projs.Table.Rows[0].Span)
}

func TestSummarize(t *testing.T) {
	participants := []models.Participant{{ID: 1}, {ID: 2}, {ID: 3}}
	projects := []models.Project{
		{ID: 1, Status: models.StatusInProgress, Profit: 100},
		{ID: 2, Status: models.StatusCompleted, Profit: 250.5},
		{ID: 3, Status: models.StatusCompleted, Profit: 49.5},
		{ID: 4, Status: models.ProjectStatus("planned"), Profit: 999},
		{ID: 5, Status: models.StatusCancelled, Profit: 10},
	}

	s := Summarize(participants, projects)
	require.Equal(t, 3, s.TotalParticipants)
	require.Equal(t, 1, s.ActiveProjects)
	require.Equal(t, 2, s.CompletedProjects)
	require.Equal(t, 300.0, s.TotalSettlements)
}

func TestDashboardShowsFirstFiveProjects(t *testing.T) {
	var projects []models.Project
	for i := 1; i <= 7; i++ {
		projects = append(projects, models.Project{ID: uint(i), Name: "p", Client: strPtr("c"), Status: models.StatusPlanning})
	}
	fb := &fakeBackend{projects: projects}

	st, dash := NewLoader(fb, discardLogger()).Dashboard(context.Background(), NewState())
	require.Len(t, dash.Recent.Rows, 5)
	require.Equal(t, uint(1), dash.Recent.Rows[0].ID)
	require.Equal(t, TabDashboard, st.Tab)
	require.Len(t, st.Projects, 7)
}

func TestLoaderFailureProducesAlert(t *testing.T) {
	fb := &fakeBackend{participantsErr: errBackendDown}
	l := NewLoader(fb, discardLogger())

	_, dash := l.Dashboard(context.Background(), NewState())
	require.NotNil(t, dash.Alert)
	require.Equal(t, AlertDanger, dash.Alert.Kind)
	require.Equal(t, AlertLifetime, dash.Alert.DismissAfter)

	_, parts := l.Participants(context.Background(), NewState())
	require.NotNil(t, parts.Alert)
	require.Len(t, parts.Table.Rows, 1)
}

func TestParticipantRowsUseDashForMissingFields(t *testing.T) {
	fb := &fakeBackend{participants: []models.Participant{
		{ID: 4, Code: "P004", Name: "Park", Role: models.RoleLead, DefaultProfitRate: 25, Phone: strPtr("010-1234")},
	}}

	_, view := NewLoader(fb, discardLogger()).Participants(context.Background(), NewState())
	require.Len(t, view.Table.Rows, 1)
	row := view.Table.Rows[0]
	require.False(t, row.Placeholder())
	require.Equal(t, "Park", row.Label)
	require.Equal(t, "Lead", row.Cells[2].Text)
	require.Equal(t, "25%", row.Cells[3].Text)
	require.Equal(t, "010-1234", row.Cells[4].Text)
	require.Equal(t, "-", row.Cells[5].Text)
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "₩1,234,567", FormatMoney(1234567))
	require.Equal(t, "₩333.33", FormatMoney(333.33))
	require.Equal(t, "-₩1,000", FormatMoney(-1000))
}
