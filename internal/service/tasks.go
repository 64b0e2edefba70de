package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fieldops-service/internal/model"
)

// TaskService covers plain task CRUD. Occurrence-derived tasks and
// completions go through the Reconciler.
type TaskService struct {
	tasks TaskRepository
	log   zerolog.Logger
	now   Clock
	newID IDGenerator
}

func NewTaskService(tasks TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasks: tasks,
		log:   log,
		now:   DefaultClock,
		newID: DefaultIDGenerator,
	}
}

type CreateTaskInput struct {
	CustomerID        uuid.UUID
	CustomerProductID uuid.UUID
	TechnicianID      *uuid.UUID
	TaskDate          time.Time
	Title             string
	Description       *string
}

func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	if input.CustomerID == uuid.Nil || input.CustomerProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer_id and customer_product_id are required", ErrInvalidInput)
	}
	if input.TaskDate.IsZero() {
		return nil, fmt.Errorf("%w: task_date is required", ErrInvalidInput)
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	if exists, err := s.tasks.ExistsAt(ctx, input.TaskDate, nil); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: a task already exists at %s", ErrConflict, input.TaskDate.Format(time.RFC3339))
	}

	return s.tasks.Create(ctx, model.Task{
		ID:                s.newID(),
		CustomerID:        input.CustomerID,
		CustomerProductID: input.CustomerProductID,
		TechnicianID:      input.TechnicianID,
		TaskDate:          input.TaskDate,
		Title:             input.Title,
		Description:       input.Description,
		Status:            model.TaskStatusPending,
		CreatedAt:         s.now(),
	})
}

func (s *TaskService) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	return s.tasks.FindAll(ctx, filter)
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *TaskService) Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*model.Task, error) {
	if patch.TaskDate != nil {
		if exists, err := s.tasks.ExistsAt(ctx, *patch.TaskDate, &id); err != nil {
			return nil, err
		} else if exists {
			return nil, fmt.Errorf("%w: a task already exists at %s", ErrConflict, patch.TaskDate.Format(time.RFC3339))
		}
	}
	return s.tasks.Update(ctx, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.tasks.FindByID(ctx, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}
