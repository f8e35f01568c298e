package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/validate"
	"github.com/dmitrijs2005/medbook/internal/logging"
	"github.com/google/uuid"
)

// AuthService signs the user in and out.
//
// Login and Register validate the form, call the backend and, only after it
// confirms, hand user and token to the Session Manager.
type AuthService interface {
	Login(ctx context.Context, email, password string) (models.UserRecord, error)
	Register(ctx context.Context, r models.Registration) (models.UserRecord, error)
	Logout(ctx context.Context) error
	Current() models.Session
}

type authService struct {
	remote   Remote
	sessions Sessions
	logger   logging.Logger
	newToken func() string
}

func NewAuthService(remote Remote, sessions Sessions, logger logging.Logger) AuthService {
	return &authService{
		remote:   remote,
		sessions: sessions,
		logger:   logger.With("service", "auth"),
		newToken: uuid.NewString,
	}
}

func (a *authService) Login(ctx context.Context, email, password string) (models.UserRecord, error) {
	if err := validate.Login(email, password); err != nil {
		return models.UserRecord{}, err
	}
	res, err := a.remote.Login(ctx, email, password)
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("login error: %w", err)
	}
	return a.establish(ctx, res.User, res.Token)
}

func (a *authService) Register(ctx context.Context, r models.Registration) (models.UserRecord, error) {
	if err := validate.Registration(r); err != nil {
		return models.UserRecord{}, err
	}
	res, err := a.remote.Register(ctx, r)
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("register error: %w", err)
	}
	return a.establish(ctx, res.User, res.Token)
}

// establish stores the session. A backend that issues no token gets a local
// opaque one so the session invariant (user and token both set) holds.
func (a *authService) establish(ctx context.Context, user models.UserRecord, token string) (models.UserRecord, error) {
	if token == "" {
		token = a.newToken()
		a.logger.Debug(ctx, "backend issued no token, using a local one")
	}
	if err := a.sessions.Login(ctx, user, token); err != nil {
		return models.UserRecord{}, err
	}
	if cur := a.sessions.Current(); cur.User != nil {
		return *cur.User, nil
	}
	return user, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}

func (a *authService) Current() models.Session {
	return a.sessions.Current()
}
