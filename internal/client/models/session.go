package models

// Session is the authenticated identity plus token of this client instance.
// Authenticated is true exactly when both User and Token are set.
type Session struct {
	User          *UserRecord
	Token         string
	Authenticated bool
}

// NewSession builds a consistent session value. A nil user or an empty token
// yields the unauthenticated session.
func NewSession(user *UserRecord, token string) Session {
	if user == nil || token == "" {
		return Session{}
	}
	u := *user
	return Session{User: &u, Token: token, Authenticated: true}
}
