// Package common contains shared constants and sentinel errors used across
// medbook components.
package common

// HTTP header names attached to every backend request.
const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	RequestIDHeaderName     = "X-Request-ID"
)

// ContentTypeJSON is the only body encoding the backend speaks.
const ContentTypeJSON = "application/json"

// AppName prefixes exported backup files.
const AppName = "medknizhka"
