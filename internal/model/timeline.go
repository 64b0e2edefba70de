package model

import (
	"time"

	"github.com/google/uuid"
)

type SourceKind string

const (
	SourceKindOccurrence SourceKind = "occurrence"
	SourceKindTask       SourceKind = "task"
	SourceKindLog        SourceKind = "log"
)

// TimelineItem is the presentation shape every timeline source is
// projected into. One line of work appears exactly once: as its log
// when completed, otherwise as the raw occurrence or task.
type TimelineItem struct {
	ID                 uuid.UUID
	SourceKind         SourceKind
	Date               time.Time
	DisplayStatus      string
	Title              string
	CustomerName       string
	ProductName        string
	TechnicianName     string
	Address            string
	Notes              string
	LinkedTaskID       *uuid.UUID
	LinkedOccurrenceID *uuid.UUID
}

type WorkItemKind string

const (
	WorkItemTask       WorkItemKind = "task"
	WorkItemOccurrence WorkItemKind = "occurrence"
)

// WorkItemRef identifies a task or occurrence in the shared work-item
// id space. Callers resolve an ambiguous id into a ref once, at the
// boundary, instead of re-probing both stores on every operation.
type WorkItemRef struct {
	Kind WorkItemKind
	ID   uuid.UUID
}
