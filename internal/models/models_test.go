package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleDefaultProfitRate(t *testing.T) {
	tests := []struct {
		role Role
		want float64
	}{
		{RoleAdmin, 30},
		{RoleLead, 25},
		{RoleSenior, 20},
		{RoleRegular, 15},
		{RoleAssistant, 10},
		{Role("intern"), 15},
		{Role(""), 15},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			require.Equal(t, tt.want, tt.role.DefaultProfitRate())
		})
	}
}

func TestStatusLabelFallsBackToRawValue(t *testing.T) {
	require.Equal(t, "In progress", StatusInProgress.Label())
	require.Equal(t, "planned", ProjectStatus("planned").Label())
}

func TestProjectDecodesBackendDatetimes(t *testing.T) {
	body := `{
		"id": 7,
		"name": "Portal",
		"client": null,
		"total_amount": 1000,
		"cost": 400,
		"profit": 600,
		"status": "in_progress",
		"idea_date": "2024-01-05T00:00:00",
		"contract_date": "2024-02-10T13:45:00.123456",
		"test_date": null,
		"start_date": "2024-03-01",
		"created_at": "2024-01-05T09:30:00"
	}`

	var p Project
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	require.Equal(t, uint(7), p.ID)
	require.Nil(t, p.Client)
	require.Equal(t, "2024-01-05", FormatDate(p.Get(MilestoneIdea)))
	require.Equal(t, "2024-02-10", FormatDate(p.Get(MilestoneContract)))
	require.Equal(t, "", FormatDate(p.Get(MilestoneTest)))
	require.Equal(t, "2024-03-01", FormatDate(p.StartDate))
	require.Equal(t, 9, p.CreatedAt.Hour())
}

func TestProjectInputEncodesPlainDates(t *testing.T) {
	d, err := ParseNullableDate("2024-05-06")
	require.NoError(t, err)

	in := ProjectInput{Name: "Portal", Status: StatusPlanning}
	in.Set(MilestoneQuote, d)

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "2024-05-06", raw["quote_date"])
	require.Nil(t, raw["idea_date"])
	require.Contains(t, raw, "maintenance_date")
	require.NotContains(t, raw, "profit")
}

func TestEntityKindPaths(t *testing.T) {
	require.Equal(t, "/participants/", KindParticipant.CollectionPath())
	require.Equal(t, "/projects/12", KindProject.ItemPath(12))
	require.Equal(t, "participant", KindParticipant.String())
}
