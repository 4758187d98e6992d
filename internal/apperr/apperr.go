package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrNotVisible is the read-path outcome when a blueprint exists but the
	// viewer may not see it (wrong exposure, unpublished, expired, deleted).
	ErrNotVisible = errors.New("not visible")
	// ErrValidation covers malformed identifiers, version tokens and enum values.
	ErrValidation = errors.New("invalid argument")
	// ErrNotOwner is returned when the requester does not own the target.
	ErrNotOwner = errors.New("not the owner")
	// ErrLastVersion guards the "a blueprint always has at least one version"
	// invariant.
	ErrLastVersion = errors.New("cannot delete the last remaining version")
	// ErrAllocationExhausted means the identifier namespace probe failed past
	// the retry bound. Fatal for the request; nothing was created.
	ErrAllocationExhausted = errors.New("identifier allocation exhausted")
	// ErrInvalidClaim covers every ineligible ownership claim: unknown user,
	// blueprint not in the session's claimable list, or already owned.
	ErrInvalidClaim = errors.New("invalid ownership claim")
	// ErrCommentsClosed is returned when commenting on a closed blueprint.
	ErrCommentsClosed = errors.New("comments are closed")
)

// ExhaustedError carries the allocator parameters that ran dry. It unwraps to
// ErrAllocationExhausted so callers can keep using errors.Is.
type ExhaustedError struct {
	Attempts int
	Length   int
	Alphabet string
}

func (e *ExhaustedError) Error() string {
	if e == nil {
		return ErrAllocationExhausted.Error()
	}
	return fmt.Sprintf(
		"identifier allocation exhausted after %d attempts (length=%d alphabet_size=%d)",
		e.Attempts,
		e.Length,
		len(e.Alphabet),
	)
}

func (e *ExhaustedError) Unwrap() error { return ErrAllocationExhausted }
