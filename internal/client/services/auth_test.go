package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/medbook/internal/client/api"
	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/store"
	"github.com/dmitrijs2005/medbook/internal/common"
	"github.com/dmitrijs2005/medbook/internal/testbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_DemoUserEstablishesSession(t *testing.T) {
	e := newEnv(t)

	u := e.loginDemo(t)
	assert.Equal(t, int64(1), u.ID)

	cur := e.auth.Current()
	require.True(t, cur.Authenticated)
	assert.Equal(t, int64(1), cur.User.ID)
	assert.NotEmpty(t, cur.Token)

	var stored models.UserRecord
	require.NoError(t, json.Unmarshal(e.key(t, store.KeyUser), &stored))
	assert.Equal(t, int64(1), stored.ID)
	assert.Equal(t, cur.Token, string(e.key(t, store.KeyToken)))
}

func TestLogin_BackendTokenIsUsedAndSent(t *testing.T) {
	e := newEnv(t)
	e.backend.Token = "server-token"

	e.loginDemo(t)
	assert.Equal(t, "server-token", e.auth.Current().Token)

	_, err := e.records.Analyses(context.Background())
	require.NoError(t, err)

	reqs := e.backend.Requests()
	assert.Equal(t, "Bearer server-token", reqs[len(reqs)-1].Authorization)
}

func TestLogin_WrongPasswordLeavesLoggedOut(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.Login(context.Background(), testbackend.DemoEmail, "wrong1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRequestFailed))
	var rf *api.RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, "Неверный email или пароль", rf.Message)

	assert.False(t, e.auth.Current().Authenticated)
	assert.Nil(t, e.key(t, store.KeyUser))
	assert.Nil(t, e.key(t, store.KeyToken))
}

func TestLogin_InvalidEmailNeverCallsBackend(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.Login(context.Background(), "demo", "demo123")
	assert.True(t, errors.Is(err, common.ErrValidationFailed))
	assert.Empty(t, e.backend.Requests())
}

func TestRegister_ThenSessionIsActive(t *testing.T) {
	e := newEnv(t)

	u, err := e.auth.Register(context.Background(), models.Registration{
		Email: "anna@example.com", Password: "secret1", ConfirmPassword: "secret1", Name: "Анна", SexType: "женский",
	})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", u.Email)
	assert.Equal(t, "женский", u.SexType)
	assert.True(t, e.auth.Current().Authenticated)
}

func TestRegister_ValidationAndBackendErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, models.Registration{
		Email: "anna@example.com", Password: "secret1", ConfirmPassword: "secret2", Name: "Анна",
	})
	assert.True(t, errors.Is(err, common.ErrValidationFailed))
	assert.Empty(t, e.backend.Requests())

	_, err = e.auth.Register(ctx, models.Registration{
		Email: testbackend.DemoEmail, Password: "secret1", ConfirmPassword: "secret1", Name: "Dup",
	})
	assert.True(t, errors.Is(err, common.ErrRequestFailed))
	assert.False(t, e.auth.Current().Authenticated)
}

func TestLogout_ClearsSessionAndToken(t *testing.T) {
	e := newEnv(t)
	e.backend.Token = "server-token"
	e.loginDemo(t)
	ctx := context.Background()

	require.NoError(t, e.auth.Logout(ctx))
	assert.False(t, e.auth.Current().Authenticated)
	assert.Nil(t, e.key(t, store.KeyUser))
	assert.Nil(t, e.key(t, store.KeyToken))

	// the client no longer sends the old token
	_, err := e.client.ListAnalyses(ctx, 1)
	require.NoError(t, err)
	reqs := e.backend.Requests()
	assert.Empty(t, reqs[len(reqs)-1].Authorization)

	require.NoError(t, e.auth.Logout(ctx))
}

func TestLogin_GatewayErrorWithoutBody(t *testing.T) {
	e := newEnv(t)
	e.backend.Override(http.MethodPost, "/api/auth/login", http.StatusBadGateway, "")

	_, err := e.auth.Login(context.Background(), testbackend.DemoEmail, testbackend.DemoPassword)
	var rf *api.RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, "request failed with status 502", rf.Message)
}
