package model

import (
	"time"

	"github.com/google/uuid"
)

type ServiceType string

const (
	ServiceTypeContract ServiceType = "contract"
	ServiceTypeOnCall   ServiceType = "on_call"
)

// ServiceLog is the authoritative record that a unit of work was
// finished. A log referencing a task or occurrence implies that entity
// is terminal. Immutable after creation except administrative edits.
type ServiceLog struct {
	ID                uuid.UUID
	TaskID            *uuid.UUID
	OccurrenceID      *uuid.UUID
	CustomerProductID uuid.UUID
	TechnicianID      uuid.UUID
	ServiceDate       time.Time
	ServiceType       ServiceType
	WorkDescription   string
	ServicePrice      float64
	TechnicianFee     *float64
	Evidence          []string
	Notes             *string
	CreatedAt         time.Time

	// Joined for presentation
	CustomerName         string
	ProductName          string
	TechnicianName       string
	InstallationLocation string
}
