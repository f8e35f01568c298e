package services

import (
	"context"

	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/validate"
	"github.com/dmitrijs2005/medbook/internal/common"
	"github.com/dmitrijs2005/medbook/internal/logging"
)

// ProfileService edits the signed-in user's profile. Changes are local: the
// backend has no profile or password endpoint.
type ProfileService interface {
	Get(ctx context.Context) (models.UserRecord, error)
	Update(ctx context.Context, u models.UserRecord) (models.UserRecord, error)
	ChangePassword(ctx context.Context, p models.PasswordChange) error
}

type profileService struct {
	sessions Sessions
	logger   logging.Logger
}

func NewProfileService(sessions Sessions, logger logging.Logger) ProfileService {
	return &profileService{sessions: sessions, logger: logger.With("service", "profile")}
}

func (s *profileService) Get(ctx context.Context) (models.UserRecord, error) {
	cur := s.sessions.Current()
	if !cur.Authenticated {
		return models.UserRecord{}, common.ErrNotAuthenticated
	}
	return *cur.User, nil
}

// Update keeps the registered email; only the health profile is editable.
func (s *profileService) Update(ctx context.Context, u models.UserRecord) (models.UserRecord, error) {
	cur := s.sessions.Current()
	if !cur.Authenticated {
		return models.UserRecord{}, common.ErrNotAuthenticated
	}
	u.Email = cur.User.Email
	if err := validate.Profile(u); err != nil {
		return models.UserRecord{}, err
	}
	return s.sessions.UpdateUser(ctx, u)
}

func (s *profileService) ChangePassword(ctx context.Context, p models.PasswordChange) error {
	if _, err := currentUserID(s.sessions); err != nil {
		return err
	}
	if err := validate.PasswordChange(p); err != nil {
		return err
	}
	s.logger.Info(ctx, "password change accepted locally")
	return nil
}
