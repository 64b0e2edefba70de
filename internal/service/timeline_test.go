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

type timelineHarness struct {
	timeline    *TimelineService
	occurrences *fakeOccurrenceRepo
	tasks       *fakeTaskRepo
	logs        *fakeServiceLogRepo
}

func newTimelineHarness() *timelineHarness {
	occurrences := newFakeOccurrenceRepo()
	tasks := newFakeTaskRepo()
	logs := newFakeServiceLogRepo()
	return &timelineHarness{
		timeline:    NewTimelineService(occurrences, tasks, logs, newTestMetrics(), zerolog.Nop()),
		occurrences: occurrences,
		tasks:       tasks,
		logs:        logs,
	}
}

func (h *timelineHarness) addOccurrence(t *testing.T, day time.Time, status model.OccurrenceStatus, customer string) model.Occurrence {
	t.Helper()
	occurrence := model.Occurrence{
		ID:                uuid.New(),
		CustomerProductID: uuid.New(),
		ExpectedDate:      day,
		Status:            status,
		CustomerName:      customer,
	}
	_, err := h.occurrences.Create(context.Background(), occurrence)
	require.NoError(t, err)
	return occurrence
}

func (h *timelineHarness) addTask(t *testing.T, day time.Time, status model.TaskStatus, occurrenceID *uuid.UUID, title string) model.Task {
	t.Helper()
	task := model.Task{
		ID:                uuid.New(),
		OccurrenceID:      occurrenceID,
		CustomerID:        uuid.New(),
		CustomerProductID: uuid.New(),
		TaskDate:          day,
		Title:             title,
		Status:            status,
	}
	_, err := h.tasks.Create(context.Background(), task)
	require.NoError(t, err)
	return task
}

func (h *timelineHarness) addLog(t *testing.T, day time.Time, taskID, occurrenceID *uuid.UUID, description string) model.ServiceLog {
	t.Helper()
	log := model.ServiceLog{
		ID:                uuid.New(),
		TaskID:            taskID,
		OccurrenceID:      occurrenceID,
		CustomerProductID: uuid.New(),
		TechnicianID:      uuid.New(),
		ServiceDate:       day,
		ServiceType:       model.ServiceTypeOnCall,
		WorkDescription:   description,
	}
	_, err := h.logs.Create(context.Background(), log)
	require.NoError(t, err)
	return log
}

func defaultQuery() TimelineQuery {
	return TimelineQuery{Page: 1, PageSize: 10}
}

func TestTimelineQueryValidation(t *testing.T) {
	ctx := context.Background()
	h := newTimelineHarness()

	t.Run("page must be positive", func(t *testing.T) {
		_, err := h.timeline.Query(ctx, TimelineQuery{Page: 0, PageSize: 10})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("page size must be positive", func(t *testing.T) {
		_, err := h.timeline.Query(ctx, TimelineQuery{Page: 1, PageSize: 0})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		query := defaultQuery()
		query.Status = "archived"
		_, err := h.timeline.Query(ctx, query)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown sort order", func(t *testing.T) {
		query := defaultQuery()
		query.Order = "sideways"
		_, err := h.timeline.Query(ctx, query)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestTimelineDedup(t *testing.T) {
	ctx := context.Background()

	t.Run("logged work appears once, as the log", func(t *testing.T) {
		h := newTimelineHarness()
		occurrence := h.addOccurrence(t, date(2025, time.March, 1), model.OccurrenceStatusDone, "Acme")
		task := h.addTask(t, date(2025, time.March, 1), model.TaskStatusCompleted, &occurrence.ID, "Planned Service")
		log := h.addLog(t, date(2025, time.March, 2), &task.ID, &occurrence.ID, "Replaced filter")

		result, err := h.timeline.Query(ctx, defaultQuery())
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, log.ID, result.Items[0].ID)
		assert.Equal(t, model.SourceKindLog, result.Items[0].SourceKind)
		assert.Equal(t, "completed", result.Items[0].DisplayStatus)
	})

	t.Run("unlogged sources all surface", func(t *testing.T) {
		h := newTimelineHarness()
		h.addOccurrence(t, date(2025, time.March, 1), model.OccurrenceStatusPending, "Acme")
		h.addTask(t, date(2025, time.March, 5), model.TaskStatusPending, nil, "On-call visit")
		h.addLog(t, date(2025, time.February, 20), nil, nil, "Historic on-call job")

		result, err := h.timeline.Query(ctx, defaultQuery())
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
	})
}

func TestTimelineStatusFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("pending excludes terminal items and logs", func(t *testing.T) {
		h := newTimelineHarness()
		pending := h.addOccurrence(t, date(2025, time.March, 1), model.OccurrenceStatusPending, "Acme")
		h.addOccurrence(t, date(2025, time.March, 2), model.OccurrenceStatusDone, "Acme")
		h.addTask(t, date(2025, time.March, 3), model.TaskStatusCanceled, nil, "Canceled visit")
		h.addLog(t, date(2025, time.March, 4), nil, nil, "Completed job")

		query := defaultQuery()
		query.Status = "pending"
		result, err := h.timeline.Query(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, pending.ID, result.Items[0].ID)
	})

	t.Run("scheduled excludes tasks entirely", func(t *testing.T) {
		h := newTimelineHarness()
		scheduled := h.addOccurrence(t, date(2025, time.March, 1), model.OccurrenceStatusScheduled, "Acme")
		h.addTask(t, date(2025, time.March, 2), model.TaskStatusPending, nil, "On-call visit")

		query := defaultQuery()
		query.Status = "scheduled"
		result, err := h.timeline.Query(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, scheduled.ID, result.Items[0].ID)
	})

	t.Run("completed returns logs without double counting", func(t *testing.T) {
		h := newTimelineHarness()
		for i := 0; i < 5; i++ {
			h.addOccurrence(t, date(2025, time.March, 1+i), model.OccurrenceStatusPending, "Acme")
		}
		for i := 0; i < 3; i++ {
			occurrence := h.addOccurrence(t, date(2025, time.April, 1+i), model.OccurrenceStatusDone, "Acme")
			h.addLog(t, occurrence.ExpectedDate, nil, &occurrence.ID, "Routine maintenance")
		}

		query := defaultQuery()
		query.Status = "completed"
		result, err := h.timeline.Query(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
		for _, item := range result.Items {
			assert.Equal(t, model.SourceKindLog, item.SourceKind)
		}
	})
}

func TestTimelineSortAndPaginate(t *testing.T) {
	ctx := context.Background()
	h := newTimelineHarness()
	for day := 1; day <= 7; day++ {
		h.addOccurrence(t, date(2025, time.May, day), model.OccurrenceStatusPending, "Acme")
	}

	t.Run("newest first by default", func(t *testing.T) {
		result, err := h.timeline.Query(ctx, defaultQuery())
		require.NoError(t, err)
		require.Len(t, result.Items, 7)
		for i := 1; i < len(result.Items); i++ {
			assert.False(t, result.Items[i-1].Date.Before(result.Items[i].Date))
		}
	})

	t.Run("ascending on request", func(t *testing.T) {
		query := defaultQuery()
		query.Order = SortAsc
		result, err := h.timeline.Query(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Items, 7)
		assert.Equal(t, date(2025, time.May, 1), result.Items[0].Date)
		assert.Equal(t, date(2025, time.May, 7), result.Items[6].Date)
	})

	t.Run("total counts beyond the page", func(t *testing.T) {
		query := TimelineQuery{Page: 2, PageSize: 3, Order: SortAsc}
		result, err := h.timeline.Query(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, 7, result.Total)
		require.Len(t, result.Items, 3)
		assert.Equal(t, date(2025, time.May, 4), result.Items[0].Date)
	})

	t.Run("page past the end is empty, not an error", func(t *testing.T) {
		query := TimelineQuery{Page: 9, PageSize: 5}
		result, err := h.timeline.Query(ctx, query)
		require.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.Equal(t, 7, result.Total)
	})
}

func TestTimelineSearch(t *testing.T) {
	ctx := context.Background()
	h := newTimelineHarness()
	h.addOccurrence(t, date(2025, time.May, 1), model.OccurrenceStatusPending, "PT Sumber Air")
	h.addOccurrence(t, date(2025, time.May, 2), model.OccurrenceStatusPending, "Acme Corp")
	h.addTask(t, date(2025, time.May, 3), model.TaskStatusPending, nil, "Membrane replacement")

	t.Run("matches customer name case-insensitively", func(t *testing.T) {
		query := defaultQuery()
		query.Search = "sumber"
		result, err := h.timeline.Query(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "PT Sumber Air", result.Items[0].CustomerName)
	})

	t.Run("matches title", func(t *testing.T) {
		query := defaultQuery()
		query.Search = "membrane"
		result, err := h.timeline.Query(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, model.SourceKindTask, result.Items[0].SourceKind)
	})

	t.Run("no match yields empty result", func(t *testing.T) {
		query := defaultQuery()
		query.Search = "nonexistent"
		result, err := h.timeline.Query(ctx, query)
		require.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.Equal(t, 0, result.Total)
	})
}

func TestTimelineDateWindow(t *testing.T) {
	ctx := context.Background()
	h := newTimelineHarness()
	h.addOccurrence(t, date(2025, time.April, 15), model.OccurrenceStatusPending, "Acme")
	inside := h.addOccurrence(t, date(2025, time.May, 15), model.OccurrenceStatusPending, "Acme")
	h.addOccurrence(t, date(2025, time.June, 15), model.OccurrenceStatusPending, "Acme")

	from := date(2025, time.May, 1)
	to := date(2025, time.June, 1)
	query := defaultQuery()
	query.From = &from
	query.To = &to

	result, err := h.timeline.Query(ctx, query)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, inside.ID, result.Items[0].ID)
}

func TestTimelineFetchFailure(t *testing.T) {
	ctx := context.Background()
	h := newTimelineHarness()
	h.occurrences.findAllErr = assert.AnError

	_, err := h.timeline.Query(ctx, defaultQuery())
	assert.Error(t, err)
}
