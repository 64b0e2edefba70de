package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCanceled  TaskStatus = "canceled"
)

// Task is a scheduled unit of field work, created manually or derived
// from an occurrence (OccurrenceID set).
type Task struct {
	ID                uuid.UUID
	OccurrenceID      *uuid.UUID
	CustomerID        uuid.UUID
	CustomerProductID uuid.UUID
	TechnicianID      *uuid.UUID
	TaskDate          time.Time
	Title             string
	Description       *string
	Status            TaskStatus
	CreatedAt         time.Time

	// Joined for presentation
	CustomerName         string
	ProductName          string
	TechnicianName       string
	InstallationLocation string
}
