package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/fieldops-service/internal/metrics"
	"github.com/nurpe/fieldops-service/internal/model"
)

type SortOrder string

const (
	SortDesc SortOrder = "desc" // history/list views, newest first
	SortAsc  SortOrder = "asc"  // forward calendar views
)

type TimelineQuery struct {
	Status            string
	From              *time.Time
	To                *time.Time
	CustomerProductID *uuid.UUID
	Search            string
	Order             SortOrder
	Page              int
	PageSize          int
}

type TimelineResult struct {
	Items []model.TimelineItem
	Total int
}

// TimelineService merges the three independently mutable sources —
// planned occurrences, ad-hoc tasks and completed service logs — into
// one deduplicated timeline. The engine keeps no state of its own;
// every query fetches fresh from the repositories.
type TimelineService struct {
	occurrences OccurrenceRepository
	tasks       TaskRepository
	logs        ServiceLogRepository
	log         zerolog.Logger
	metrics     *metrics.Metrics
}

func NewTimelineService(
	occurrences OccurrenceRepository,
	tasks TaskRepository,
	logs ServiceLogRepository,
	m *metrics.Metrics,
	log zerolog.Logger,
) *TimelineService {
	return &TimelineService{
		occurrences: occurrences,
		tasks:       tasks,
		logs:        logs,
		log:         log,
		metrics:     m,
	}
}

var unifiedStatuses = map[string]struct{}{
	"pending": {}, "scheduled": {}, "completed": {}, "done": {}, "canceled": {},
}

// Query fetches the three sources concurrently, drops every task and
// occurrence already represented by a service log, projects the rest,
// then filters, sorts and paginates in memory. Total counts the merged
// set before the page slice.
func (s *TimelineService) Query(ctx context.Context, query TimelineQuery) (*TimelineResult, error) {
	start := time.Now()

	if query.Page <= 0 || query.PageSize <= 0 {
		return nil, fmt.Errorf("%w: page and page_size must be positive", ErrInvalidInput)
	}
	if query.Status != "" {
		if _, ok := unifiedStatuses[query.Status]; !ok {
			return nil, fmt.Errorf("%w: unknown status filter %q", ErrInvalidInput, query.Status)
		}
	}
	switch query.Order {
	case "":
		query.Order = SortDesc
	case SortAsc, SortDesc:
	default:
		return nil, fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, query.Order)
	}

	var (
		occurrences []model.Occurrence
		tasks       []model.Task
		logs        []model.ServiceLog
	)

	group, groupCtx := errgroup.WithContext(ctx)
	if statuses, want := occurrenceStatusesFor(query.Status); want {
		filter := OccurrenceFilter{
			Statuses:          statuses,
			From:              query.From,
			To:                query.To,
			CustomerProductID: query.CustomerProductID,
		}
		group.Go(func() error {
			var err error
			occurrences, err = fetchWithRetry(groupCtx, func(ctx context.Context) ([]model.Occurrence, error) {
				return s.occurrences.FindAll(ctx, filter)
			})
			return err
		})
	}
	if statuses, want := taskStatusesFor(query.Status); want {
		filter := TaskFilter{
			Statuses:          statuses,
			From:              query.From,
			To:                query.To,
			CustomerProductID: query.CustomerProductID,
		}
		group.Go(func() error {
			var err error
			tasks, err = fetchWithRetry(groupCtx, func(ctx context.Context) ([]model.Task, error) {
				return s.tasks.FindAll(ctx, filter)
			})
			return err
		})
	}
	if wantLogs(query.Status) {
		filter := ServiceLogFilter{
			From:              query.From,
			To:                query.To,
			CustomerProductID: query.CustomerProductID,
		}
		group.Go(func() error {
			var err error
			logs, err = fetchWithRetry(groupCtx, func(ctx context.Context) ([]model.ServiceLog, error) {
				return s.logs.FindAll(ctx, filter)
			})
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// A completed line of work is represented once, as its log; the raw
	// task/occurrence underneath never surfaces alongside it.
	loggedTasks := make(map[uuid.UUID]struct{}, len(logs))
	loggedOccurrences := make(map[uuid.UUID]struct{}, len(logs))
	for _, l := range logs {
		if l.TaskID != nil {
			loggedTasks[*l.TaskID] = struct{}{}
		}
		if l.OccurrenceID != nil {
			loggedOccurrences[*l.OccurrenceID] = struct{}{}
		}
	}

	items := make([]model.TimelineItem, 0, len(occurrences)+len(tasks)+len(logs))
	for _, o := range occurrences {
		if _, logged := loggedOccurrences[o.ID]; logged {
			continue
		}
		items = append(items, ProjectOccurrence(o))
	}
	for _, t := range tasks {
		if _, logged := loggedTasks[t.ID]; logged {
			continue
		}
		items = append(items, ProjectTask(t))
	}
	for _, l := range logs {
		items = append(items, ProjectServiceLog(l))
	}

	if query.Search != "" {
		items = filterBySearch(items, query.Search)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if query.Order == SortAsc {
			return items[i].Date.Before(items[j].Date)
		}
		return items[j].Date.Before(items[i].Date)
	})

	total := len(items)
	startIndex := (query.Page - 1) * query.PageSize
	if startIndex > total {
		startIndex = total
	}
	endIndex := startIndex + query.PageSize
	if endIndex > total {
		endIndex = total
	}

	s.metrics.TimelineQueries.Inc()
	s.metrics.TimelineQueryTime.Observe(time.Since(start).Seconds())

	return &TimelineResult{
		Items: items[startIndex:endIndex],
		Total: total,
	}, nil
}

// occurrenceStatusesFor maps the unified status vocabulary onto
// occurrence statuses. An empty slice with want=true means no status
// constraint.
func occurrenceStatusesFor(status string) ([]model.OccurrenceStatus, bool) {
	switch status {
	case "":
		return nil, true
	case "pending":
		return []model.OccurrenceStatus{model.OccurrenceStatusPending}, true
	case "scheduled":
		return []model.OccurrenceStatus{model.OccurrenceStatusScheduled}, true
	case "completed", "done":
		return []model.OccurrenceStatus{model.OccurrenceStatusDone}, true
	case "canceled":
		return []model.OccurrenceStatus{model.OccurrenceStatusCanceled}, true
	default:
		return nil, false
	}
}

// taskStatusesFor: tasks have no "scheduled" state, so a pure scheduled
// filter excludes them entirely.
func taskStatusesFor(status string) ([]model.TaskStatus, bool) {
	switch status {
	case "":
		return nil, true
	case "pending":
		return []model.TaskStatus{model.TaskStatusPending}, true
	case "completed", "done":
		return []model.TaskStatus{model.TaskStatusCompleted}, true
	case "canceled":
		return []model.TaskStatus{model.TaskStatusCanceled}, true
	default:
		return nil, false
	}
}

func wantLogs(status string) bool {
	return status == "" || status == "completed" || status == "done"
}

// filterBySearch matches case-insensitively over customer name, product
// name, title and notes. Related-name search cannot be pushed down to a
// single storage filter across three heterogeneous sources, so it runs
// here, after projection.
func filterBySearch(items []model.TimelineItem, search string) []model.TimelineItem {
	needle := strings.ToLower(search)
	matched := items[:0]
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.CustomerName), needle) ||
			strings.Contains(strings.ToLower(item.ProductName), needle) ||
			strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Notes), needle) {
			matched = append(matched, item)
		}
	}
	return matched
}
