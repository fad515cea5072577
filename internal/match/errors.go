package match

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned for an unknown or deleted match id.
	ErrNotFound = errors.New("match not found")
	// ErrPermission is returned when a non-host attempts deletion.
	ErrPermission = errors.New("only the host may delete the match")
	// ErrClosed is returned for mutations against a match whose
	// recruitment has ended.
	ErrClosed = errors.New("recruitment is closed")
	// ErrAlreadyJoined is returned when toggling an activity the user
	// already joined; withdrawing goes through the absence flow.
	ErrAlreadyJoined = errors.New("already joined this activity")
)

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid match input: " + e.Reason
}

// ConflictError rejects a creation whose activities overlap another
// recruiting match. Activities carries the conflicting names in the
// candidate's original casing.
type ConflictError struct {
	Activities []string
}

func (e *ConflictError) Error() string {
	return "already recruiting for: " + strings.Join(e.Activities, ", ")
}
