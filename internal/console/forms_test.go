package console

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"settlement_console/internal/models"
)

func TestSelectRolePrefillsDefaultRate(t *testing.T) {
	f := NewParticipantForm().SelectRole(models.RoleLead)
	require.Equal(t, "25", f.ProfitRate)

	f = f.SelectRole(models.RoleAssistant)
	require.Equal(t, "10", f.ProfitRate)
}

func TestParticipantInputFallsBackToRoleDefault(t *testing.T) {
	f := ParticipantFormFromValues(url.Values{
		"name": {"Choi"},
		"role": {"lead"},
	})

	in := f.Input()
	require.Equal(t, models.RoleLead, in.Role)
	require.NotNil(t, in.DefaultProfitRate)
	require.Equal(t, 25.0, *in.DefaultProfitRate)
	require.Nil(t, in.Phone)
	require.Nil(t, in.Notes)
}

func TestParticipantInputKeepsExplicitRate(t *testing.T) {
	f := ParticipantFormFromValues(url.Values{
		"name":                {"Choi"},
		"role":                {"senior"},
		"default_profit_rate": {"17.5"},
		"bank_name":           {"KB"},
	})

	in := f.Input()
	require.Equal(t, 17.5, *in.DefaultProfitRate)
	require.Equal(t, "KB", *in.BankName)
}

func TestProjectFormFromPopulatesEveryField(t *testing.T) {
	idea, err := models.ParseDate("2024-01-05T00:00:00")
	require.NoError(t, err)

	p := models.Project{
		ID:            7,
		Name:          "Portal",
		Client:        strPtr("ACME"),
		TotalAmount:   5000000,
		Cost:          1200000.5,
		Status:        models.StatusInProgress,
		ProgressNotes: nil,
		ProgressRate:  40,
		CurrentStage:  strPtr("development"),
	}
	p.IdeaDate = &idea

	participants := []models.Participant{
		{ID: 1, Name: "Kim", DefaultProfitRate: 30},
		{ID: 2, Name: "Lee", DefaultProfitRate: 15},
	}
	attached := []models.ProjectParticipant{{ParticipantID: 2, ProfitRate: 22}}

	f := ProjectFormFrom(p, participants, attached)
	require.Equal(t, uint(7), f.ID)
	require.Equal(t, "Portal", f.Name)
	require.Equal(t, "ACME", f.Client)
	require.Equal(t, "5000000", f.TotalAmount)
	require.Equal(t, "1200000.5", f.Cost)
	require.Equal(t, models.StatusInProgress, f.Status)
	require.Equal(t, "2024-01-05", f.Dates[models.MilestoneIdea])
	for _, m := range models.Milestones[1:] {
		require.Equal(t, "", f.Dates[m], m)
	}
	require.Equal(t, "", f.StartDate)
	require.Equal(t, "", f.ProgressNotes)
	require.Equal(t, "40", f.ProgressRate)
	require.Equal(t, "development", f.CurrentStage)
	require.Equal(t, "", f.Notes)

	require.Len(t, f.Members, 2)
	require.False(t, f.Members[0].Selected)
	require.True(t, f.Members[1].Selected)
	require.Equal(t, "22", f.Members[1].Rate)
}

func TestProjectFormFromValuesRoundTripsToInput(t *testing.T) {
	participants := []models.Participant{{ID: 3, DefaultProfitRate: 20}, {ID: 4, DefaultProfitRate: 10}}
	v := url.Values{
		"name":          {"Portal"},
		"client":        {""},
		"total_amount":  {"1,000,000"},
		"cost":          {""},
		"status":        {"planning"},
		"contract_date": {"2024-02-01"},
		"member_3":      {"on"},
		"member_rate_3": {"35"},
	}

	f := ProjectFormFromValues(v, participants)
	require.True(t, f.Members[0].Selected)
	require.Equal(t, "35", f.Members[0].Rate)
	require.False(t, f.Members[1].Selected)

	in, err := f.Input()
	require.NoError(t, err)
	require.Equal(t, 1000000.0, in.TotalAmount)
	require.Equal(t, 0.0, in.Cost)
	require.Nil(t, in.Client)
	require.Equal(t, "2024-02-01", models.FormatDate(in.ContractDate))
	require.Nil(t, in.IdeaDate)
	require.Nil(t, in.ProgressRate)
}

func TestProjectInputRejectsBadNumbers(t *testing.T) {
	f := NewProjectForm(nil)
	f.Name = "X"
	f.TotalAmount = "lots"

	_, err := f.Input()
	require.Error(t, err)

	f.TotalAmount = "10"
	f.Dates[models.MilestoneTest] = "tomorrow"
	_, err = f.Input()
	require.ErrorContains(t, err, "test_date")
}

func TestPlanMemberOps(t *testing.T) {
	members := []MemberChoice{
		{ParticipantID: 1, DefaultRate: 30, Selected: true},
		{ParticipantID: 2, DefaultRate: 15, Selected: true, Rate: "40"},
		{ParticipantID: 3, DefaultRate: 20, Selected: true, Rate: "20"},
		{ParticipantID: 4, DefaultRate: 10, Selected: false},
		{ParticipantID: 5, DefaultRate: 10, Selected: true},
	}
	attached := []models.ProjectParticipant{
		{ParticipantID: 2, ProfitRate: 15},
		{ParticipantID: 3, ProfitRate: 20},
		{ParticipantID: 4, ProfitRate: 10},
		{ParticipantID: 5, ProfitRate: 12},
	}

	ops := PlanMemberOps(members, attached)
	require.Len(t, ops, 3)

	require.Equal(t, OpAttach, ops[0].Kind)
	require.Equal(t, uint(1), ops[0].ParticipantID)
	require.Equal(t, 30.0, *ops[0].Rate)

	require.Equal(t, OpUpdateRate, ops[1].Kind)
	require.Equal(t, uint(2), ops[1].ParticipantID)
	require.Equal(t, 40.0, *ops[1].Rate)

	require.Equal(t, OpDetach, ops[2].Kind)
	require.Equal(t, uint(4), ops[2].ParticipantID)
	require.Nil(t, ops[2].Rate)
}
