package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")

	ErrInvalidInterval = fmt.Errorf("%w: interval_months must be a positive integer", ErrInvalidInput)
)

// ConsistencyError reports that a primary write committed but the
// follow-up status update did not. The primary record is left in place;
// the caller retries the secondary step instead of this package rolling
// anything back.
type ConsistencyError struct {
	Op            string
	PrimaryKind   string
	PrimaryID     uuid.UUID
	SecondaryKind string
	SecondaryID   uuid.UUID
	Err           error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s %s created but %s %s was not updated: %v",
		e.Op, e.PrimaryKind, e.PrimaryID, e.SecondaryKind, e.SecondaryID, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
