package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be found.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrServiceUnavailable is returned when the quiz API cannot be reached.
	ErrServiceUnavailable = errors.New("quiz service unavailable")
	// ErrUnauthorized is returned when the API rejects the credentials and a refresh did not help.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidQuestion indicates loaded question data breaks a question invariant.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidDraft indicates an authoring draft failed validation.
	ErrInvalidDraft = errors.New("invalid quiz draft")
	// ErrSessionNotFound is returned when a play session id is unknown.
	ErrSessionNotFound = errors.New("play session not found")
	// ErrInvalidState is returned when a session operation is called in the wrong state.
	ErrInvalidState = errors.New("invalid session state")
)

// LoadError reports that a quiz could not be loaded for play. The session never
// becomes playable after a LoadError.
type LoadError struct {
	QuizID int64
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load quiz %d: %v", e.QuizID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
