package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fieldops-service/internal/metrics"
	"github.com/nurpe/fieldops-service/internal/model"
)

// Reconciler applies the cross-entity status transitions between
// occurrences, tasks and service logs:
//
//	occurrence: pending -> scheduled (task created) -> done (log created)
//	task:       pending -> completed (log created)
//	either:     pending|scheduled -> canceled (explicit cancel)
//
// No transition ever returns an item to pending. Every status write is
// conditional on the expected prior status; a concurrent writer that
// got there first causes ErrConflict instead of a silent overwrite.
type Reconciler struct {
	tasks       TaskRepository
	occurrences OccurrenceRepository
	logs        ServiceLogRepository
	contracts   ContractRepository
	log         zerolog.Logger
	metrics     *metrics.Metrics
	now         Clock
	newID       IDGenerator
}

func NewReconciler(
	tasks TaskRepository,
	occurrences OccurrenceRepository,
	logs ServiceLogRepository,
	contracts ContractRepository,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		tasks:       tasks,
		occurrences: occurrences,
		logs:        logs,
		contracts:   contracts,
		log:         log,
		metrics:     m,
		now:         DefaultClock,
		newID:       DefaultIDGenerator,
	}
}

// WithClock overrides the time and id sources. Tests only.
func (r *Reconciler) WithClock(now Clock, newID IDGenerator) *Reconciler {
	r.now = now
	r.newID = newID
	return r
}

// ResolveWorkItem maps an id from the shared work-item id space onto a
// typed ref, probing the task store first, then occurrences. Callers
// resolve once and pass the ref around.
func (r *Reconciler) ResolveWorkItem(ctx context.Context, id uuid.UUID) (model.WorkItemRef, error) {
	if _, err := r.tasks.FindByID(ctx, id); err == nil {
		return model.WorkItemRef{Kind: model.WorkItemTask, ID: id}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return model.WorkItemRef{}, err
	}

	if _, err := r.occurrences.FindByID(ctx, id); err == nil {
		return model.WorkItemRef{Kind: model.WorkItemOccurrence, ID: id}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return model.WorkItemRef{}, err
	}

	return model.WorkItemRef{}, fmt.Errorf("%w: work item %s", ErrNotFound, id)
}

type TaskData struct {
	CustomerID   uuid.UUID
	TechnicianID *uuid.UUID
	TaskDate     time.Time
	Title        string
	Description  *string
}

// CreateTaskFromOccurrence creates a task for a pending occurrence and
// advances the occurrence to scheduled. The two writes are not one
// transaction: when the occurrence update fails the task already
// exists, which is reported as *ConsistencyError for the caller to
// retry — never rolled back here.
func (r *Reconciler) CreateTaskFromOccurrence(ctx context.Context, occurrenceID uuid.UUID, data TaskData) (*model.Task, error) {
	occurrence, err := r.occurrences.FindByID(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}
	if occurrence.Status != model.OccurrenceStatusPending {
		return nil, fmt.Errorf("%w: occurrence %s is %s, expected pending", ErrConflict, occurrenceID, occurrence.Status)
	}

	taskDate := data.TaskDate
	if taskDate.IsZero() {
		taskDate = occurrence.ExpectedDate
	}
	if exists, err := r.tasks.ExistsAt(ctx, taskDate, nil); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: a task already exists at %s", ErrConflict, taskDate.Format(time.RFC3339))
	}

	title := data.Title
	if title == "" {
		title = plannedServiceTitle
	}

	occID := occurrence.ID
	task, err := r.tasks.Create(ctx, model.Task{
		ID:                r.newID(),
		OccurrenceID:      &occID,
		CustomerID:        data.CustomerID,
		CustomerProductID: occurrence.CustomerProductID,
		TechnicianID:      data.TechnicianID,
		TaskDate:          taskDate,
		Title:             title,
		Description:       data.Description,
		Status:            model.TaskStatusPending,
		CreatedAt:         r.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := r.advanceOccurrence(ctx, occurrence.ID,
		[]model.OccurrenceStatus{model.OccurrenceStatusPending},
		model.OccurrenceStatusScheduled,
	); err != nil {
		return task, r.consistency("create task from occurrence", "task", task.ID, "occurrence", occurrence.ID, err)
	}
	return task, nil
}

type ServiceLogData struct {
	TechnicianID    uuid.UUID
	ServiceDate     time.Time
	WorkDescription string
	ServicePrice    float64
	TechnicianFee   *float64
	Evidence        []string
	Notes           *string
}

// CompleteWithLog records a service log against a work item and marks
// the item terminal: completed for a task, done for an occurrence. A
// task derived from an occurrence closes that occurrence too. The log
// is the primary write; any status update failing afterwards surfaces
// as *ConsistencyError with the log left committed.
func (r *Reconciler) CompleteWithLog(ctx context.Context, targetID uuid.UUID, data ServiceLogData) (*model.ServiceLog, error) {
	ref, err := r.ResolveWorkItem(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return r.CompleteRef(ctx, ref, data)
}

func (r *Reconciler) CompleteRef(ctx context.Context, ref model.WorkItemRef, data ServiceLogData) (*model.ServiceLog, error) {
	if data.WorkDescription == "" {
		return nil, fmt.Errorf("%w: work description is required", ErrInvalidInput)
	}
	if data.TechnicianID == uuid.Nil {
		return nil, fmt.Errorf("%w: technician_id is required", ErrInvalidInput)
	}

	switch ref.Kind {
	case model.WorkItemTask:
		return r.completeTask(ctx, ref.ID, data)
	case model.WorkItemOccurrence:
		return r.completeOccurrence(ctx, ref.ID, data)
	default:
		return nil, fmt.Errorf("%w: unknown work item kind %q", ErrInvalidInput, ref.Kind)
	}
}

func (r *Reconciler) completeTask(ctx context.Context, taskID uuid.UUID, data ServiceLogData) (*model.ServiceLog, error) {
	task, err := r.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != model.TaskStatusPending {
		return nil, fmt.Errorf("%w: task %s is already %s", ErrConflict, taskID, task.Status)
	}
	if existing, err := r.logs.FindByTaskID(ctx, taskID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: task %s already has service log %s", ErrConflict, taskID, existing.ID)
	}

	serviceType := model.ServiceTypeOnCall
	if task.OccurrenceID != nil {
		serviceType = model.ServiceTypeContract
	}

	id := task.ID
	log, err := r.logs.Create(ctx, r.buildLog(data, serviceType, task.CustomerProductID, &id, task.OccurrenceID))
	if err != nil {
		return nil, err
	}

	if err := r.advanceTask(ctx, task.ID, model.TaskStatusCompleted); err != nil {
		return log, r.consistency("complete task", "service log", log.ID, "task", task.ID, err)
	}

	if task.OccurrenceID != nil {
		if err := r.advanceOccurrence(ctx, *task.OccurrenceID,
			[]model.OccurrenceStatus{model.OccurrenceStatusPending, model.OccurrenceStatusScheduled},
			model.OccurrenceStatusDone,
		); err != nil {
			return log, r.consistency("complete task", "service log", log.ID, "occurrence", *task.OccurrenceID, err)
		}
		r.markContractUsage(ctx, *task.OccurrenceID)
	}
	return log, nil
}

func (r *Reconciler) completeOccurrence(ctx context.Context, occurrenceID uuid.UUID, data ServiceLogData) (*model.ServiceLog, error) {
	occurrence, err := r.occurrences.FindByID(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}
	if occurrence.Status != model.OccurrenceStatusPending && occurrence.Status != model.OccurrenceStatusScheduled {
		return nil, fmt.Errorf("%w: occurrence %s is already %s", ErrConflict, occurrenceID, occurrence.Status)
	}
	if existing, err := r.logs.FindByOccurrenceID(ctx, occurrenceID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: occurrence %s already has service log %s", ErrConflict, occurrenceID, existing.ID)
	}

	serviceType := model.ServiceTypeOnCall
	if occurrence.ContractID != nil {
		serviceType = model.ServiceTypeContract
	}

	id := occurrence.ID
	log, err := r.logs.Create(ctx, r.buildLog(data, serviceType, occurrence.CustomerProductID, nil, &id))
	if err != nil {
		return nil, err
	}

	if err := r.advanceOccurrence(ctx, occurrence.ID,
		[]model.OccurrenceStatus{model.OccurrenceStatusPending, model.OccurrenceStatusScheduled},
		model.OccurrenceStatusDone,
	); err != nil {
		return log, r.consistency("complete occurrence", "service log", log.ID, "occurrence", occurrence.ID, err)
	}
	r.markContractUsage(ctx, occurrence.ID)
	return log, nil
}

func (r *Reconciler) buildLog(data ServiceLogData, serviceType model.ServiceType, customerProductID uuid.UUID, taskID, occurrenceID *uuid.UUID) model.ServiceLog {
	serviceDate := data.ServiceDate
	if serviceDate.IsZero() {
		serviceDate = r.now()
	}
	return model.ServiceLog{
		ID:                r.newID(),
		TaskID:            taskID,
		OccurrenceID:      occurrenceID,
		CustomerProductID: customerProductID,
		TechnicianID:      data.TechnicianID,
		ServiceDate:       serviceDate,
		ServiceType:       serviceType,
		WorkDescription:   data.WorkDescription,
		ServicePrice:      data.ServicePrice,
		TechnicianFee:     data.TechnicianFee,
		Evidence:          data.Evidence,
		Notes:             data.Notes,
		CreatedAt:         r.now(),
	}
}

type WorkItemPatch struct {
	Date   *time.Time
	Status *string
	Title  *string
	Notes  *string
}

// UpdateWorkItem updates a task or occurrence addressed through the
// shared id space. Status values use the unified vocabulary
// {pending, completed, canceled}; for occurrences "completed"
// translates to done.
func (r *Reconciler) UpdateWorkItem(ctx context.Context, id uuid.UUID, patch WorkItemPatch) error {
	ref, err := r.ResolveWorkItem(ctx, id)
	if err != nil {
		return err
	}

	switch ref.Kind {
	case model.WorkItemTask:
		return r.updateTask(ctx, id, patch)
	default:
		return r.updateOccurrence(ctx, id, patch)
	}
}

func (r *Reconciler) updateTask(ctx context.Context, id uuid.UUID, patch WorkItemPatch) error {
	if patch.Date != nil || patch.Title != nil || patch.Notes != nil {
		if _, err := r.tasks.Update(ctx, id, TaskPatch{
			TaskDate:    patch.Date,
			Title:       patch.Title,
			Description: patch.Notes,
		}); err != nil {
			return err
		}
	}
	if patch.Status == nil {
		return nil
	}

	var to model.TaskStatus
	switch *patch.Status {
	case "pending":
		return nil // already pending or unreachable, nothing to advance
	case "completed":
		to = model.TaskStatusCompleted
	case "canceled":
		to = model.TaskStatusCanceled
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	}
	return r.advanceTask(ctx, id, to)
}

func (r *Reconciler) updateOccurrence(ctx context.Context, id uuid.UUID, patch WorkItemPatch) error {
	if patch.Date != nil || patch.Notes != nil {
		if _, err := r.occurrences.Update(ctx, id, OccurrencePatch{
			ExpectedDate: patch.Date,
			Notes:        patch.Notes,
		}); err != nil {
			return err
		}
	}
	if patch.Status == nil {
		return nil
	}

	var to model.OccurrenceStatus
	from := []model.OccurrenceStatus{model.OccurrenceStatusPending, model.OccurrenceStatusScheduled}
	switch *patch.Status {
	case "pending":
		return nil
	case "completed", "done":
		to = model.OccurrenceStatusDone
	case "canceled":
		to = model.OccurrenceStatusCanceled
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	}
	return r.advanceOccurrence(ctx, id, from, to)
}

// CancelWorkItem cancels a pending task or a pending/scheduled
// occurrence. Terminal items reject with ErrConflict.
func (r *Reconciler) CancelWorkItem(ctx context.Context, id uuid.UUID) error {
	ref, err := r.ResolveWorkItem(ctx, id)
	if err != nil {
		return err
	}
	switch ref.Kind {
	case model.WorkItemTask:
		return r.advanceTask(ctx, id, model.TaskStatusCanceled)
	default:
		return r.advanceOccurrence(ctx, id,
			[]model.OccurrenceStatus{model.OccurrenceStatusPending, model.OccurrenceStatusScheduled},
			model.OccurrenceStatusCanceled,
		)
	}
}

func (r *Reconciler) advanceTask(ctx context.Context, id uuid.UUID, to model.TaskStatus) error {
	ok, err := r.tasks.UpdateStatus(ctx, id, []model.TaskStatus{model.TaskStatusPending}, to)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: task %s changed status concurrently", ErrConflict, id)
	}
	r.metrics.StatusTransitions.WithLabelValues("task", string(to)).Inc()
	return nil
}

func (r *Reconciler) advanceOccurrence(ctx context.Context, id uuid.UUID, from []model.OccurrenceStatus, to model.OccurrenceStatus) error {
	ok, err := r.occurrences.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: occurrence %s changed status concurrently", ErrConflict, id)
	}
	r.metrics.StatusTransitions.WithLabelValues("occurrence", string(to)).Inc()
	return nil
}

// markContractUsage bumps the parent contract's services_used counter.
// The counter is presentational; a failure here is logged, not
// surfaced, so a completed service never fails over bookkeeping.
func (r *Reconciler) markContractUsage(ctx context.Context, occurrenceID uuid.UUID) {
	occurrence, err := r.occurrences.FindByID(ctx, occurrenceID)
	if err != nil || occurrence.ContractID == nil {
		return
	}
	if err := r.contracts.IncrementServicesUsed(ctx, *occurrence.ContractID); err != nil {
		r.log.Error().Err(err).
			Str("contract_id", occurrence.ContractID.String()).
			Msg("failed to increment contract usage")
	}
}

func (r *Reconciler) consistency(op, primaryKind string, primaryID uuid.UUID, secondaryKind string, secondaryID uuid.UUID, err error) error {
	r.metrics.ConsistencyFailures.Inc()
	r.log.Error().Err(err).
		Str("op", op).
		Str("primary", primaryKind).
		Str("primary_id", primaryID.String()).
		Str("secondary", secondaryKind).
		Str("secondary_id", secondaryID.String()).
		Msg("secondary status update failed after primary write")
	return &ConsistencyError{
		Op:            op,
		PrimaryKind:   primaryKind,
		PrimaryID:     primaryID,
		SecondaryKind: secondaryKind,
		SecondaryID:   secondaryID,
		Err:           err,
	}
}
