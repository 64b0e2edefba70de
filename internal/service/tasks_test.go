package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fieldops-service/internal/model"
)

func TestTaskService(t *testing.T) {
	ctx := context.Background()

	newService := func() *TaskService {
		return NewTaskService(newFakeTaskRepo(), zerolog.Nop())
	}

	validInput := func() CreateTaskInput {
		return CreateTaskInput{
			CustomerID:        uuid.New(),
			CustomerProductID: uuid.New(),
			TaskDate:          date(2025, time.July, 10),
			Title:             "Install new unit",
		}
	}

	t.Run("creates pending task", func(t *testing.T) {
		svc := newService()
		created, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		assert.Equal(t, model.TaskStatusPending, created.Status)
		assert.Nil(t, created.OccurrenceID)
	})

	t.Run("rejects duplicate date", func(t *testing.T) {
		svc := newService()
		_, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		_, err = svc.Create(ctx, validInput())
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		svc := newService()
		input := validInput()
		input.Title = ""
		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("update re-checks the date slot", func(t *testing.T) {
		svc := newService()
		first, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		secondInput := validInput()
		secondInput.TaskDate = date(2025, time.July, 11)
		second, err := svc.Create(ctx, secondInput)
		require.NoError(t, err)

		_, err = svc.Update(ctx, second.ID, TaskPatch{TaskDate: &first.TaskDate})
		assert.ErrorIs(t, err, ErrConflict)

		// Keeping its own date is not a conflict with itself.
		_, err = svc.Update(ctx, second.ID, TaskPatch{TaskDate: &second.TaskDate, Title: ptr("Install, updated")})
		assert.NoError(t, err)
	})
}
