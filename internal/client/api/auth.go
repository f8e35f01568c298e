package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/medbook/internal/client/models"
)

// AuthResult is a successful login or registration. Token is empty when the
// backend does not issue one.
type AuthResult struct {
	User    models.UserRecord
	Token   string
	Message string
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return AuthResult{}, err
	}
	return parseAuth(data, "login failed")
}

// Register creates an account. Empty BirthDate and SexType go out as null.
func (c *Client) Register(ctx context.Context, r models.Registration) (AuthResult, error) {
	req := registerRequest{
		Email:     r.Email,
		Password:  r.Password,
		Name:      r.Name,
		BirthDate: optional(r.BirthDate),
		SexType:   optional(r.SexType),
	}
	data, err := c.do(ctx, http.MethodPost, "/auth/register", req)
	if err != nil {
		return AuthResult{}, err
	}
	return parseAuth(data, "registration failed")
}

// parseAuth treats a 2xx body without success:true and a user as a failure
// carrying the server's message.
func parseAuth(data []byte, fallback string) (AuthResult, error) {
	var resp authResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return AuthResult{}, statusError(http.StatusOK, fallback)
	}
	if !resp.Success || resp.User == nil {
		msg := resp.Message
		if msg == "" {
			msg = fallback
		}
		return AuthResult{}, statusError(http.StatusOK, msg)
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	return AuthResult{User: resp.User.record(), Token: token, Message: resp.Message}, nil
}
