package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/fieldops-service/internal/model"
)

// The engine owns no storage. Everything below is implemented by
// internal/repository against postgres; tests swap in memory fakes.

type OccurrenceFilter struct {
	Statuses          []model.OccurrenceStatus
	From              *time.Time
	To                *time.Time
	ContractID        *uuid.UUID
	CustomerProductID *uuid.UUID
}

type OccurrencePatch struct {
	ExpectedDate *time.Time
	Notes        *string
}

type OccurrenceRepository interface {
	FindAll(ctx context.Context, filter OccurrenceFilter) ([]model.Occurrence, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Occurrence, error)
	Create(ctx context.Context, occurrence model.Occurrence) (*model.Occurrence, error)
	Update(ctx context.Context, id uuid.UUID, patch OccurrencePatch) (*model.Occurrence, error)
	// UpdateStatus advances status only when the current status is one of
	// from. Returns false when zero rows matched, so concurrent writers
	// lose instead of overwriting each other.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []model.OccurrenceStatus, to model.OccurrenceStatus) (bool, error)
	ExistsAt(ctx context.Context, expectedDate time.Time, excludeID *uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskFilter struct {
	Statuses          []model.TaskStatus
	From              *time.Time
	To                *time.Time
	TechnicianID      *uuid.UUID
	CustomerProductID *uuid.UUID
}

type TaskPatch struct {
	TaskDate     *time.Time
	TechnicianID *uuid.UUID
	Title        *string
	Description  *string
}

type TaskRepository interface {
	FindAll(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Create(ctx context.Context, task model.Task) (*model.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*model.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []model.TaskStatus, to model.TaskStatus) (bool, error)
	ExistsAt(ctx context.Context, taskDate time.Time, excludeID *uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceLogFilter struct {
	From              *time.Time
	To                *time.Time
	TechnicianID      *uuid.UUID
	CustomerProductID *uuid.UUID
}

type ServiceLogPatch struct {
	WorkDescription *string
	ServicePrice    *float64
	TechnicianFee   *float64
	Notes           *string
}

type ServiceLogRepository interface {
	FindAll(ctx context.Context, filter ServiceLogFilter) ([]model.ServiceLog, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceLog, error)
	FindByTaskID(ctx context.Context, taskID uuid.UUID) (*model.ServiceLog, error)
	FindByOccurrenceID(ctx context.Context, occurrenceID uuid.UUID) (*model.ServiceLog, error)
	Create(ctx context.Context, log model.ServiceLog) (*model.ServiceLog, error)
	Update(ctx context.Context, id uuid.UUID, patch ServiceLogPatch) (*model.ServiceLog, error)
}

type ContractFilter struct {
	Status            *model.ContractStatus
	CustomerProductID *uuid.UUID
}

type ContractPatch struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *model.ContractStatus
	ContractURL *string
	Notes       *string
	Price       *float64
}

type ContractRepository interface {
	// CreateWithOccurrences persists the contract and its generated
	// occurrences in a single transaction. A contract never exists
	// without its schedule.
	CreateWithOccurrences(ctx context.Context, contract model.Contract, occurrences []model.Occurrence) (*model.Contract, error)
	FindAll(ctx context.Context, filter ContractFilter) ([]model.Contract, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	Update(ctx context.Context, id uuid.UUID, patch ContractPatch) (*model.Contract, error)
	IncrementServicesUsed(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Clock and IDGenerator come from the environment so tests control time
// and identity.
type Clock func() time.Time

type IDGenerator func() uuid.UUID

func DefaultClock() time.Time { return time.Now().UTC() }

func DefaultIDGenerator() uuid.UUID { return uuid.New() }
