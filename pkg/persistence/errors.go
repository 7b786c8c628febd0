// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrSessionNotFound indicates no session exists for the given identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session's TTL has lapsed.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionAlreadyExists indicates a session with the same identifier
	// already exists.
	ErrSessionAlreadyExists = errors.New("session already exists")

	// ErrStepConflict indicates a conditional update lost the race: the
	// stored current step no longer matched the expected step.
	ErrStepConflict = errors.New("session step conflict")
)

// SessionError wraps session-related storage errors with additional context.
type SessionError struct {
	Op        string // Operation being performed (e.g., "GetByID", "ConditionalUpdate")
	SessionID string // Session ID if applicable
	Err       error  // Underlying error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s operation failed for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSessionError creates a new session error with context.
func NewSessionError(op, sessionID string, err error) *SessionError {
	return &SessionError{
		Op:        op,
		SessionID: sessionID,
		Err:       err,
	}
}

// IsSessionNotFound checks if an error indicates a missing session.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsSessionExpired checks if an error indicates a TTL-lapsed session.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// IsSessionAlreadyExists checks if an error indicates a duplicate session.
func IsSessionAlreadyExists(err error) bool {
	return errors.Is(err, ErrSessionAlreadyExists)
}

// IsStepConflict checks if an error indicates a lost conditional update.
func IsStepConflict(err error) bool {
	return errors.Is(err, ErrStepConflict)
}
