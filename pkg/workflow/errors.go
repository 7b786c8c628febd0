package workflow

import (
	"errors"
	"fmt"

	"github.com/brandforge/brandforge/pkg/naming"
)

// Standard workflow error types surfaced to callers. Provider timeouts and
// failures never appear here; the fan-out absorbs them into fallback content.
var (
	// ErrSessionNotFound indicates no session exists for the identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session's TTL has lapsed.
	ErrSessionExpired = errors.New("session expired")

	// ErrStaleStep indicates the caller's view of the current step lost a
	// race: the stored step no longer matches the expected one.
	ErrStaleStep = errors.New("stale step")

	// ErrValidation indicates malformed or out-of-vocabulary input.
	ErrValidation = errors.New("validation failed")

	// ErrSessionTerminal indicates the session is completed, failed or
	// expired and cannot be advanced.
	ErrSessionTerminal = errors.New("session in terminal state")
)

// Error wraps workflow operation failures with context.
type Error struct {
	Op        string // Operation being performed (e.g., "Advance", "SelectName")
	SessionID string // Session ID if applicable
	Err       error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new workflow error with context.
func NewError(op, sessionID string, err error) *Error {
	return &Error{
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

// IsStaleStep checks if an error indicates a lost step race.
func IsStaleStep(err error) bool {
	return errors.Is(err, ErrStaleStep)
}

// IsValidation checks if an error indicates rejected input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsRegenerationLimitExceeded checks if an error indicates an exhausted
// regeneration allowance.
func IsRegenerationLimitExceeded(err error) bool {
	return errors.Is(err, naming.ErrRegenerationLimitExceeded)
}

// IsInsufficientUniqueNames checks if an error indicates the generator could
// not produce enough unique candidates.
func IsInsufficientUniqueNames(err error) bool {
	return errors.Is(err, naming.ErrInsufficientUniqueNames)
}
