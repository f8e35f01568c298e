package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/medbook/internal/client/api"
	"github.com/dmitrijs2005/medbook/internal/client/latest"
	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/common"
	"github.com/dmitrijs2005/medbook/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_RequireSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	list, err := e.records.Analyses(ctx)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.NotNil(t, list)

	appts, err := e.records.Appointments(ctx)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.NotNil(t, appts)

	_, err = e.records.AddAnalysis(ctx, models.AnalysisInput{})
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	_, err = e.records.DeleteAppointment(ctx, 1)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	assert.Empty(t, e.backend.Requests())
}

func TestAddAnalysis_UsesSessionUser(t *testing.T) {
	e := newEnv(t)
	e.loginDemo(t)
	ctx := context.Background()

	msg, err := e.records.AddAnalysis(ctx, models.AnalysisInput{UserID: 99, Type: "Глюкоза", Date: "2024-01-10", Result: "5.1"})
	require.NoError(t, err)
	assert.Equal(t, "Анализ сохранен", msg)

	list, err := e.records.Analyses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].UserID)
}

func TestAddAnalysis_Invalid(t *testing.T) {
	e := newEnv(t)
	e.loginDemo(t)
	before := len(e.backend.Requests())

	_, err := e.records.AddAnalysis(context.Background(), models.AnalysisInput{Type: "x", Date: "2024-01-10"})
	assert.True(t, errors.Is(err, common.ErrValidationFailed))
	assert.Len(t, e.backend.Requests(), before)
}

func TestAppointments_Lifecycle(t *testing.T) {
	e := newEnv(t)
	e.loginDemo(t)
	ctx := context.Background()

	in := models.AppointmentInput{Title: "Кардиолог", StartTime: "2024-06-01T09:00", EndTime: "2024-06-01T09:30"}
	_, err := e.records.AddAppointment(ctx, in)
	require.NoError(t, err)

	list, err := e.records.Appointments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusScheduled, list[0].Status)

	edit := models.InputFromAppointment(list[0])
	edit.Status = models.StatusCanceled
	msg, err := e.records.EditAppointment(ctx, list[0].ID, edit)
	require.NoError(t, err)
	assert.Equal(t, "Запись обновлена", msg)

	_, err = e.records.DeleteAppointment(ctx, list[0].ID)
	require.NoError(t, err)

	list, err = e.records.Appointments(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddAppointment_ServerRejectsTimeRange(t *testing.T) {
	e := newEnv(t)
	e.loginDemo(t)
	e.backend.Override(http.MethodPost, "/api/appointments", http.StatusBadRequest, map[string]any{"message": "Invalid time range"})

	_, err := e.records.AddAppointment(context.Background(), models.AppointmentInput{
		Title: "Терапевт", StartTime: "2024-03-01T10:00", EndTime: "2024-03-01T11:00",
	})
	var rf *api.RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, "Invalid time range", rf.Message)
	assert.Empty(t, e.backend.Appointments())
}

func TestAnalyses_ErrorDegradesToEmpty(t *testing.T) {
	e := newEnv(t)
	e.loginDemo(t)
	e.backend.Override(http.MethodGet, "/api/analyses", http.StatusInternalServerError, map[string]any{"message": "db down"})

	list, err := e.records.Analyses(context.Background())
	assert.True(t, errors.Is(err, common.ErrRequestFailed))
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestAnalyses_StaleResponseIsDropped(t *testing.T) {
	remote := &blockingRemote{analyses: make(chan []models.Analysis)}
	sessions := fixedSessions{user: models.UserRecord{ID: 1, Name: "Демо"}}
	svc := NewRecordsService(remote, sessions, latest.NewGuard(), logging.Discard())
	ctx := context.Background()

	type result struct {
		list []models.Analysis
		err  error
	}
	first := make(chan result, 1)
	go func() {
		l, err := svc.Analyses(ctx)
		first <- result{l, err}
	}()
	// make sure the first request is in flight before issuing the second
	time.Sleep(20 * time.Millisecond)

	second := make(chan result, 1)
	go func() {
		l, err := svc.Analyses(ctx)
		second <- result{l, err}
	}()
	time.Sleep(20 * time.Millisecond)

	fresh := []models.Analysis{{ID: 2, Type: "fresh"}}
	stale := []models.Analysis{{ID: 1, Type: "stale"}}
	remote.analyses <- fresh
	remote.analyses <- stale

	r1, r2 := <-first, <-second
	results := []result{r1, r2}

	var applied, dropped int
	for _, r := range results {
		if errors.Is(r.err, ErrSuperseded) {
			dropped++
			assert.Empty(t, r.list)
			continue
		}
		require.NoError(t, r.err)
		applied++
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, dropped)
	assert.ErrorIs(t, r1.err, ErrSuperseded)
}
