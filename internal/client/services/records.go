package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medbook/internal/client/latest"
	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/validate"
	"github.com/dmitrijs2005/medbook/internal/logging"
)

const (
	opAnalyses     = "analyses"
	opAppointments = "appointments"
	opStats        = "stats"
)

// RecordsService manages the signed-in user's analyses and appointments.
// List calls never fail hard: on error they return an empty list together
// with the error to show.
type RecordsService interface {
	Analyses(ctx context.Context) ([]models.Analysis, error)
	AddAnalysis(ctx context.Context, in models.AnalysisInput) (string, error)
	Appointments(ctx context.Context) ([]models.Appointment, error)
	AddAppointment(ctx context.Context, in models.AppointmentInput) (string, error)
	EditAppointment(ctx context.Context, id int64, in models.AppointmentInput) (string, error)
	DeleteAppointment(ctx context.Context, id int64) (string, error)
}

type recordsService struct {
	remote   Remote
	sessions Sessions
	guard    *latest.Guard
	logger   logging.Logger
}

func NewRecordsService(remote Remote, sessions Sessions, guard *latest.Guard, logger logging.Logger) RecordsService {
	return &recordsService{
		remote:   remote,
		sessions: sessions,
		guard:    guard,
		logger:   logger.With("service", "records"),
	}
}

func (s *recordsService) Analyses(ctx context.Context) ([]models.Analysis, error) {
	uid, err := currentUserID(s.sessions)
	if err != nil {
		return []models.Analysis{}, err
	}
	seq := s.guard.Begin(opAnalyses)
	list, err := s.remote.ListAnalyses(ctx, uid)
	if !s.guard.IsLatest(opAnalyses, seq) {
		s.logger.Debug(ctx, "dropping stale response", "op", opAnalyses, "seq", seq)
		return []models.Analysis{}, ErrSuperseded
	}
	if err != nil {
		return []models.Analysis{}, fmt.Errorf("load analyses: %w", err)
	}
	return list, nil
}

func (s *recordsService) AddAnalysis(ctx context.Context, in models.AnalysisInput) (string, error) {
	uid, err := currentUserID(s.sessions)
	if err != nil {
		return "", err
	}
	in.UserID = uid
	if err := validate.Analysis(in); err != nil {
		return "", err
	}
	return s.remote.CreateAnalysis(ctx, in)
}

func (s *recordsService) Appointments(ctx context.Context) ([]models.Appointment, error) {
	uid, err := currentUserID(s.sessions)
	if err != nil {
		return []models.Appointment{}, err
	}
	seq := s.guard.Begin(opAppointments)
	list, err := s.remote.ListAppointments(ctx, uid)
	if !s.guard.IsLatest(opAppointments, seq) {
		s.logger.Debug(ctx, "dropping stale response", "op", opAppointments, "seq", seq)
		return []models.Appointment{}, ErrSuperseded
	}
	if err != nil {
		return []models.Appointment{}, fmt.Errorf("load appointments: %w", err)
	}
	return list, nil
}

func (s *recordsService) AddAppointment(ctx context.Context, in models.AppointmentInput) (string, error) {
	uid, err := currentUserID(s.sessions)
	if err != nil {
		return "", err
	}
	in.UserID = uid
	if err := validate.Appointment(&in); err != nil {
		return "", err
	}
	return s.remote.CreateAppointment(ctx, in)
}

func (s *recordsService) EditAppointment(ctx context.Context, id int64, in models.AppointmentInput) (string, error) {
	uid, err := currentUserID(s.sessions)
	if err != nil {
		return "", err
	}
	in.UserID = uid
	if err := validate.Appointment(&in); err != nil {
		return "", err
	}
	return s.remote.UpdateAppointment(ctx, id, in)
}

func (s *recordsService) DeleteAppointment(ctx context.Context, id int64) (string, error) {
	if _, err := currentUserID(s.sessions); err != nil {
		return "", err
	}
	return s.remote.DeleteAppointment(ctx, id)
}
