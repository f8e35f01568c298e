package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/medbook/internal/client/api"
	"github.com/dmitrijs2005/medbook/internal/client/latest"
	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/profile"
	"github.com/dmitrijs2005/medbook/internal/client/session"
	"github.com/dmitrijs2005/medbook/internal/client/store"
	"github.com/dmitrijs2005/medbook/internal/logging"
	"github.com/dmitrijs2005/medbook/internal/testbackend"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

type env struct {
	backend  *testbackend.Backend
	client   *api.Client
	store    store.Store
	sessions *session.Manager
	auth     AuthService
	records  RecordsService
	board    DashboardService
	profile  ProfileService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	b, url := testbackend.Start(t)
	s, db, err := store.Open(ctx, filepath.Join(t.TempDir(), "medbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.Discard()
	client := api.New(url, api.WithTimeout(2*time.Second))
	sessions := session.NewManager(s, profile.NewCache(s, log), log)
	sessions.OnTokenChange(client.SetToken)
	guard := latest.NewGuard()

	return &env{
		backend:  b,
		client:   client,
		store:    s,
		sessions: sessions,
		auth:     NewAuthService(client, sessions, log),
		records:  NewRecordsService(client, sessions, guard, log),
		board:    NewDashboardService(client, sessions, guard, log),
		profile:  NewProfileService(sessions, log),
	}
}

func (e *env) loginDemo(t *testing.T) models.UserRecord {
	t.Helper()
	u, err := e.auth.Login(context.Background(), testbackend.DemoEmail, testbackend.DemoPassword)
	require.NoError(t, err)
	return u
}

func (e *env) key(t *testing.T, k string) []byte {
	t.Helper()
	v, err := e.store.Get(context.Background(), k)
	require.NoError(t, err)
	return v
}

// blockingRemote answers list calls in the order the test releases them.
type blockingRemote struct {
	Remote
	analyses chan []models.Analysis
	stats    chan models.DashboardStats
}

func (r *blockingRemote) ListAnalyses(ctx context.Context, _ int64) ([]models.Analysis, error) {
	return <-r.analyses, nil
}

func (r *blockingRemote) DashboardStats(ctx context.Context, _ int64) (models.DashboardStats, error) {
	return <-r.stats, nil
}

// fixedSessions is an always-signed-in Sessions.
type fixedSessions struct {
	Sessions
	user models.UserRecord
}

func (f fixedSessions) Current() models.Session {
	return models.NewSession(&f.user, "tok")
}
