package model

import (
	"time"

	"github.com/google/uuid"
)

type OccurrenceStatus string

const (
	OccurrenceStatusPending   OccurrenceStatus = "pending"
	OccurrenceStatusScheduled OccurrenceStatus = "scheduled"
	OccurrenceStatusDone      OccurrenceStatus = "done"
	OccurrenceStatusCanceled  OccurrenceStatus = "canceled"
)

type OccurrenceSource string

const (
	OccurrenceSourceContract OccurrenceSource = "contract"
	OccurrenceSourceManual   OccurrenceSource = "manual"
)

// Occurrence is a planned service date. Contract-generated occurrences
// carry their parent contract id; manual ones do not. Status only ever
// advances pending -> scheduled -> done/canceled.
type Occurrence struct {
	ID                uuid.UUID
	ContractID        *uuid.UUID
	CustomerProductID uuid.UUID
	ExpectedDate      time.Time
	IntervalMonths    int
	SourceType        OccurrenceSource
	Status            OccurrenceStatus
	Notes             *string
	CreatedAt         time.Time

	// Joined for presentation
	CustomerName         string
	ProductName          string
	InstallationLocation string
}
