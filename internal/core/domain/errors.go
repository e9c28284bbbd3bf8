package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates no record matches the requested key.
	ErrNotFound = errors.New("not found")

	// ErrEmptyContent indicates a record exists but carries no content.
	// Distinct from ErrNotFound so callers can treat it as an upstream
	// ingestion failure.
	ErrEmptyContent = errors.New("empty content")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates required backend settings are missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrNotInitialized indicates a tool whose backend never became ready.
	ErrNotInitialized = errors.New("not initialized")

	// ErrBackend indicates a failure reported by, or while reaching, a backend.
	ErrBackend = errors.New("backend error")

	// ErrDimensionMismatch indicates a query embedding whose length differs
	// from the configured index dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrUnsupportedType indicates an unknown provider or store driver.
	ErrUnsupportedType = errors.New("unsupported type")
)

// BackendMessager is implemented by errors that carry a message reported
// by the backend itself (e.g. a Postgres error payload). Tools prefer this
// message over the Go error text when rendering failures.
type BackendMessager interface {
	BackendMessage() string
}

// BackendMessage extracts the backend-reported message from err, if any.
func BackendMessage(err error) (string, bool) {
	var bm BackendMessager
	if errors.As(err, &bm) {
		msg := bm.BackendMessage()
		return msg, msg != ""
	}
	return "", false
}
