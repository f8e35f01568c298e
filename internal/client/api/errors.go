package api

import (
	"fmt"

	"github.com/dmitrijs2005/medbook/internal/common"
)

// ConnectionErrorMessage is shown when the backend could not be reached.
const ConnectionErrorMessage = "connection error"

// RequestFailedError is returned by every unsuccessful call. Network is true
// when no HTTP response was received at all; Status is 0 in that case.
type RequestFailedError struct {
	Status  int
	Message string
	Network bool
	Err     error
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, common.ErrRequestFailed) hold.
func (e *RequestFailedError) Is(target error) bool {
	return target == common.ErrRequestFailed
}

func networkError(err error) *RequestFailedError {
	return &RequestFailedError{Message: ConnectionErrorMessage, Network: true, Err: err}
}

func statusError(status int, message string) *RequestFailedError {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &RequestFailedError{Status: status, Message: message}
}
