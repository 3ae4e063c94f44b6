package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrSessionExpired means the access token was rejected and could not be renewed
	ErrSessionExpired = errors.New("session expired")
	// ErrMalformedResponse means a 2xx body could not be decoded as expected
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a non-2xx answer from the API. Message is meant for display.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError wraps failures that prevented a response from arriving
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RedirectError asks the caller to leave the current view for Target.
// Nothing in the current view should run after receiving it.
type RedirectError struct {
	Target string
	Err    error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%v (redirect to %s)", e.Err, e.Target)
}

func (e *RedirectError) Unwrap() error {
	return e.Err
}

// errorBody covers both error shapes the API emits
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// responseError converts a non-2xx response into an APIError and closes the body
func responseError(resp *http.Response) error {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var payload errorBody
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			message = payload.Error
		} else {
			message = payload.Message
		}
	}
	if message == "" {
		message = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// DecodeJSON decodes a successful response body into v and closes it
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// drain discards the rest of a body so the connection can be reused
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}

// UserMessage renders any client error as one human-readable line
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var redirect *RedirectError
	var apiErr *APIError
	var transport *TransportError

	switch {
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	case errors.As(err, &redirect):
		return fmt.Sprintf("Your session has expired. Please sign in again with 'cropwise %s'.", redirect.Target)
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.As(err, &transport):
		return "Could not reach the server. Check your connection and the configured API URL."
	case errors.Is(err, ErrMalformedResponse):
		return "The server sent a response that could not be read."
	default:
		return err.Error()
	}
}
