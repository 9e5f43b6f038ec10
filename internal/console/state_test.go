package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"settlement_console/internal/models"
)

func TestStateTransitionsDoNotMutateOriginal(t *testing.T) {
	st := NewState()
	edited := st.OpenModal(models.KindProject, 7)

	require.Equal(t, ModalClosed, st.Modal(models.KindProject).Mode)
	require.Equal(t, Modal{Mode: ModalEdit, ID: 7}, edited.Modal(models.KindProject))
	require.Equal(t, ModalClosed, edited.Modal(models.KindParticipant).Mode)

	closed := edited.CloseModal(models.KindProject)
	require.Equal(t, ModalClosed, closed.Modal(models.KindProject).Mode)
}

func TestFlashIsTakenOnce(t *testing.T) {
	st := NewState().WithFlash(NewAlert(AlertSuccess, "saved"))

	st, a := st.TakeFlash()
	require.NotNil(t, a)
	require.Equal(t, "saved", a.Message)

	_, a = st.TakeFlash()
	require.Nil(t, a)
}

func TestSessionsSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(time.Hour)
	s.now = func() time.Time { return now }

	s.Save("old", NewState().Activate(TabProjects))
	now = now.Add(30 * time.Minute)
	s.Save("new", NewState().Activate(TabSettlements))

	require.Equal(t, TabProjects, s.Load("old").Tab)

	now = now.Add(45 * time.Minute)
	require.Equal(t, 1, s.Sweep())
	require.Equal(t, TabDashboard, s.Load("old").Tab)
	require.Equal(t, TabSettlements, s.Load("new").Tab)
}
