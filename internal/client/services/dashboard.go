package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medbook/internal/client/latest"
	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/logging"
)

type DashboardService interface {
	Stats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	remote   Remote
	sessions Sessions
	guard    *latest.Guard
	logger   logging.Logger
}

func NewDashboardService(remote Remote, sessions Sessions, guard *latest.Guard, logger logging.Logger) DashboardService {
	return &dashboardService{remote: remote, sessions: sessions, guard: guard, logger: logger.With("service", "dashboard")}
}

// Stats degrades to an empty dashboard on any failure; the error is still
// returned for display.
func (s *dashboardService) Stats(ctx context.Context) (models.DashboardStats, error) {
	empty := models.DashboardStats{RecentAnalyses: []models.Analysis{}, UpcomingAppointments: []models.Appointment{}}

	uid, err := currentUserID(s.sessions)
	if err != nil {
		return empty, err
	}
	seq := s.guard.Begin(opStats)
	st, err := s.remote.DashboardStats(ctx, uid)
	if !s.guard.IsLatest(opStats, seq) {
		return empty, ErrSuperseded
	}
	if err != nil {
		s.logger.Warn(ctx, "dashboard unavailable", "error", err)
		return empty, fmt.Errorf("load dashboard: %w", err)
	}
	return st, nil
}
