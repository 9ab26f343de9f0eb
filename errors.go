package deepl

import "fmt"

// APIError is the base error returned for failed API requests. More specific
// error types embed it, so the HTTP status code is always available via
// errors.As against *APIError or the concrete type.
type APIError struct {
	Message string

	// StatusCode is the HTTP status code of the response, or zero when the
	// failure happened before a response was received.
	StatusCode int

	// Retryable reports whether the server condition behind this error is
	// normally transient, for example 429 or 503.
	Retryable bool
}

func (e *APIError) Error() string {
	return e.Message
}

// AuthorizationError indicates the authentication key was rejected.
type AuthorizationError struct {
	APIError
}

func (e *AuthorizationError) Unwrap() error { return &e.APIError }

// QuotaExceededError indicates the quota for this billing period has been
// exceeded.
type QuotaExceededError struct {
	APIError
}

func (e *QuotaExceededError) Unwrap() error { return &e.APIError }

// TooManyRequestsError indicates the servers are currently receiving more
// requests than they can process. It is always retryable.
type TooManyRequestsError struct {
	APIError
}

func (e *TooManyRequestsError) Unwrap() error { return &e.APIError }

// GlossaryNotFoundError indicates the specified glossary was not found.
type GlossaryNotFoundError struct {
	APIError
}

func (e *GlossaryNotFoundError) Unwrap() error { return &e.APIError }

// DocumentNotReadyError indicates the translation of the specified document
// is not yet complete.
type DocumentNotReadyError struct {
	APIError
}

func (e *DocumentNotReadyError) Unwrap() error { return &e.APIError }

// ConnectionError indicates the connection to the API failed. ShouldRetry is
// set at the failure site: transient conditions such as timeouts and refused
// connections are retryable, client-side failures are not.
type ConnectionError struct {
	Message     string
	ShouldRetry bool
	Err         error
}

func (e *ConnectionError) Error() string {
	return e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// DocumentTranslationError wraps any failure during an asynchronous document
// translation so callers always receive the handle of the affected job.
type DocumentTranslationError struct {
	Message string
	Handle  *DocumentHandle
	Err     error
}

func (e *DocumentTranslationError) Error() string {
	if e.Handle == nil {
		return e.Message
	}
	return fmt.Sprintf("%s, document handle: %s", e.Message, e.Handle)
}

func (e *DocumentTranslationError) Unwrap() error {
	return e.Err
}
