// Package session owns the in-memory authentication state and the two
// session keys of the persistent store. Memory and store are changed
// together, only through Manager.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/profile"
	"github.com/dmitrijs2005/medbook/internal/client/store"
	"github.com/dmitrijs2005/medbook/internal/common"
	"github.com/dmitrijs2005/medbook/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptyToken = errors.New("session token is empty")

// TokenListener is told the new token after every session change; "" means
// logged out.
type TokenListener func(token string)

type Manager struct {
	store   store.Store
	profile *profile.Cache
	logger  logging.Logger
	now     func() time.Time

	mu        sync.RWMutex
	current   models.Session
	listeners []TokenListener
}

type Option func(*Manager)

// WithClock overrides time.Now, used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(s store.Store, p *profile.Cache, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:   s,
		profile: p,
		logger:  logger.With("component", "session"),
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// OnTokenChange registers l. Listeners run synchronously after the state
// change, outside the manager's lock.
func (m *Manager) OnTokenChange(l TokenListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Current returns a copy of the in-memory session.
func (m *Manager) Current() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.NewSession(m.current.User, m.current.Token)
}

// Restore rebuilds the session from the store. It never fails: a missing
// key, an unreadable user, a store error or an expired JWT all produce the
// unauthenticated session.
func (m *Manager) Restore(ctx context.Context) models.Session {
	s := m.load(ctx)
	m.apply(s)
	m.logger.Info(ctx, "session restored", "authenticated", s.Authenticated)
	return s
}

func (m *Manager) load(ctx context.Context) models.Session {
	rawUser, err := m.store.Get(ctx, store.KeyUser)
	if err != nil {
		m.logger.Warn(ctx, "read session user", "error", err)
		return models.Session{}
	}
	rawToken, err := m.store.Get(ctx, store.KeyToken)
	if err != nil {
		m.logger.Warn(ctx, "read session token", "error", err)
		return models.Session{}
	}
	if len(rawUser) == 0 || len(rawToken) == 0 {
		return models.Session{}
	}

	var user *models.UserRecord
	if err := json.Unmarshal(rawUser, &user); err != nil {
		m.logger.Warn(ctx, "stored session user is unreadable", "error", err)
		return models.Session{}
	}
	if user == nil {
		m.logger.Warn(ctx, "stored session user is null")
		return models.Session{}
	}

	token := string(rawToken)
	if tokenExpired(token, m.now()) {
		m.logger.Info(ctx, "stored session token has expired")
		return models.Session{}
	}
	return models.NewSession(user, token)
}

// Login persists user and token, overwriting any previous session, and
// makes them current. The cached profile view is refreshed in the same
// transaction; profile fields the backend does not know about (phone,
// allergies, ...) are carried over when the cached profile belongs to the
// same user.
func (m *Manager) Login(ctx context.Context, user models.UserRecord, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	err := m.store.Update(ctx, func(ctx context.Context, tx store.Store) error {
		cache := m.profile.With(tx)
		cached, err := cache.Load(ctx)
		if err != nil {
			return err
		}
		if cached.ID == user.ID {
			user = mergeProfile(user, cached)
		}
		if err := writeSession(ctx, tx, user, token); err != nil {
			return err
		}
		return cache.Save(ctx, user)
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	m.apply(models.NewSession(&user, token))
	m.logger.Info(ctx, "logged in", "user_id", user.ID)
	return nil
}

// Logout removes both session keys and clears the in-memory state. Calling
// it while logged out is a no-op that still succeeds.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.store.Update(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Delete(ctx, store.KeyUser); err != nil {
			return err
		}
		return tx.Delete(ctx, store.KeyToken)
	})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	m.apply(models.Session{})
	m.logger.Info(ctx, "logged out")
	return nil
}

// UpdateUser replaces the session user with u (keeping the session's id)
// and refreshes the cached profile view. It is the only way to edit the
// profile while logged in.
func (m *Manager) UpdateUser(ctx context.Context, u models.UserRecord) (models.UserRecord, error) {
	cur := m.Current()
	if !cur.Authenticated {
		return models.UserRecord{}, common.ErrNotAuthenticated
	}
	u.ID = cur.User.ID

	err := m.store.Update(ctx, func(ctx context.Context, tx store.Store) error {
		if err := writeSession(ctx, tx, u, cur.Token); err != nil {
			return err
		}
		return m.profile.With(tx).Save(ctx, u)
	})
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("update profile: %w", err)
	}

	m.apply(models.NewSession(&u, cur.Token))
	return u, nil
}

func (m *Manager) apply(s models.Session) {
	m.mu.Lock()
	m.current = s
	listeners := append([]TokenListener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(s.Token)
	}
}

func writeSession(ctx context.Context, s store.Store, u models.UserRecord, token string) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.Set(ctx, store.KeyUser, b); err != nil {
		return err
	}
	return s.Set(ctx, store.KeyToken, []byte(token))
}

// tokenExpired reports whether token is a JWT whose exp is not after now.
// Opaque tokens never expire client-side.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}

func mergeProfile(u, cached models.UserRecord) models.UserRecord {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&u.Name, cached.Name)
	fill(&u.Email, cached.Email)
	fill(&u.Phone, cached.Phone)
	fill(&u.BirthDate, cached.BirthDate)
	fill(&u.SexType, cached.SexType)
	fill(&u.BloodType, cached.BloodType)
	fill(&u.Allergies, cached.Allergies)
	fill(&u.ChronicDiseases, cached.ChronicDiseases)
	fill(&u.EmergencyContact, cached.EmergencyContact)
	return u
}
