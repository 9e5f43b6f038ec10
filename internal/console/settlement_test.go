package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"settlement_console/internal/models"
	"settlement_console/internal/services"
)

func TestCalculateWithoutSelectionSendsNothing(t *testing.T) {
	fb := &fakeBackend{projects: []models.Project{{ID: 1, Name: "Portal"}}}
	s := NewSettlements(fb, fb, discardLogger())

	st, view := s.Calculate(context.Background(), NewState(), "")
	require.NotNil(t, view.Alert)
	require.Equal(t, AlertWarning, view.Alert.Kind)
	require.Nil(t, view.Result)
	require.NotContains(t, fb.methods(), "Calculate")
	require.Equal(t, uint(0), st.SelectedProject)
}

func TestCalculateShowsBackendAmountsVerbatim(t *testing.T) {
	fb := &fakeBackend{
		projects: []models.Project{{ID: 5, Name: "Portal", Client: strPtr("ACME")}},
		settlement: models.SettlementResult{
			ProjectID:   5,
			ProjectName: "Portal",
			TotalProfit: 1000,
			Lines: []models.SettlementLine{
				{ParticipantName: "Kim", ParticipantCode: "P001", ProfitRate: 30, Amount: 333.33},
				{ParticipantName: "Lee", ParticipantCode: "P002", ParticipantRole: models.RoleLead, ProfitRate: 60, Amount: 666.67},
			},
		},
	}
	s := NewSettlements(fb, fb, discardLogger())

	st, view := s.Open(context.Background(), NewState())
	require.Len(t, view.Options, 1)
	require.Equal(t, "Portal (ACME)", view.Options[0].Label)

	st, view = s.Calculate(context.Background(), st, "5")
	require.Equal(t, uint(5), st.SelectedProject)
	require.True(t, view.Options[0].Selected)
	require.Equal(t, AlertSuccess, view.Alert.Kind)

	res := view.Result
	require.NotNil(t, res)
	require.Equal(t, 2, res.ParticipantCount)
	require.Equal(t, 1000.0, res.TotalProfit)
	for i, line := range fb.settlement.Lines {
		require.Equal(t, line.Amount, res.Lines[i].Amount)
		require.Equal(t, line.ProfitRate, res.Lines[i].Rate)
	}
	require.Equal(t, "₩333.33", res.Lines[0].AmountText)
	require.Equal(t, "Regular", res.Lines[0].Role.Text)
	require.Equal(t, "Lead", res.Lines[1].Role.Text)
}

func TestCalculateErrorAppendsBackendMessage(t *testing.T) {
	fb := &fakeBackend{settlementErr: &services.APIError{StatusCode: 404, Detail: "Project not found"}}
	s := NewSettlements(fb, fb, discardLogger())

	_, view := s.Calculate(context.Background(), NewState(), "77")
	require.Nil(t, view.Result)
	require.Equal(t, AlertDanger, view.Alert.Kind)
	require.Equal(t, "Failed to calculate settlement: Project not found", view.Alert.Message)
}
