// Package services contains the application flows of the medbook client.
// Each service composes the Remote Client with the Session Manager and the
// local components, and is what the REPL talks to.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/medbook/internal/client/api"
	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/common"
)

// ErrSuperseded is returned for a response that arrived after a newer
// request of the same kind was issued. Callers should drop it silently.
var ErrSuperseded = errors.New("response superseded by a newer request")

// Remote is the backend surface the services need; *api.Client implements it.
type Remote interface {
	Login(ctx context.Context, email, password string) (api.AuthResult, error)
	Register(ctx context.Context, r models.Registration) (api.AuthResult, error)
	ListAnalyses(ctx context.Context, userID int64) ([]models.Analysis, error)
	CreateAnalysis(ctx context.Context, in models.AnalysisInput) (string, error)
	ListAppointments(ctx context.Context, userID int64) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, in models.AppointmentInput) (string, error)
	UpdateAppointment(ctx context.Context, id int64, in models.AppointmentInput) (string, error)
	DeleteAppointment(ctx context.Context, id int64) (string, error)
	DashboardStats(ctx context.Context, userID int64) (models.DashboardStats, error)
}

var _ Remote = (*api.Client)(nil)

// Sessions is the part of session.Manager the services use.
type Sessions interface {
	Current() models.Session
	Login(ctx context.Context, user models.UserRecord, token string) error
	Logout(ctx context.Context) error
	UpdateUser(ctx context.Context, u models.UserRecord) (models.UserRecord, error)
}

// currentUserID returns the signed-in user's id or ErrNotAuthenticated.
func currentUserID(s Sessions) (int64, error) {
	cur := s.Current()
	if !cur.Authenticated {
		return 0, common.ErrNotAuthenticated
	}
	return cur.User.ID, nil
}
