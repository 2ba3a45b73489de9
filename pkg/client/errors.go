package client

import (
	"errors"
	"fmt"
)

// ErrEmptyBody is returned when a successful response carries no content.
var ErrEmptyBody = errors.New("empty response body")

// APIError is returned for a Data API response outside the 2xx range.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("itembank %s error (status %d): %s", e.ErrorClass, e.StatusCode, e.Message)
	if len(e.Body) > 0 {
		msg += ": " + truncate(string(e.Body), maxErrorBody)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

const maxErrorBody = 512

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
