package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nurpe/fieldops-service/internal/metrics"
	"github.com/nurpe/fieldops-service/internal/model"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New("test", prometheus.NewRegistry())
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func ptr[T any](v T) *T { return &v }

// In-memory stand-ins for the postgres repositories. They honor the
// same contracts: ErrNotFound from FindByID, nil-without-error from the
// log reference lookups, and conditional status updates.

type fakeOccurrenceRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]model.Occurrence
	statusErr  error
	findAllErr error
}

func newFakeOccurrenceRepo() *fakeOccurrenceRepo {
	return &fakeOccurrenceRepo{items: make(map[uuid.UUID]model.Occurrence)}
}

func (f *fakeOccurrenceRepo) FindAll(_ context.Context, filter OccurrenceFilter) ([]model.Occurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findAllErr != nil {
		return nil, f.findAllErr
	}
	var out []model.Occurrence
	for _, o := range f.items {
		if !occurrenceMatches(o, filter) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func occurrenceMatches(o model.Occurrence, filter OccurrenceFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if o.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.From != nil && o.ExpectedDate.Before(*filter.From) {
		return false
	}
	if filter.To != nil && !o.ExpectedDate.Before(*filter.To) {
		return false
	}
	if filter.ContractID != nil && (o.ContractID == nil || *o.ContractID != *filter.ContractID) {
		return false
	}
	if filter.CustomerProductID != nil && o.CustomerProductID != *filter.CustomerProductID {
		return false
	}
	return true
}

func (f *fakeOccurrenceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Occurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: occurrence %s", ErrNotFound, id)
	}
	return &o, nil
}

func (f *fakeOccurrenceRepo) Create(_ context.Context, occurrence model.Occurrence) (*model.Occurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[occurrence.ID] = occurrence
	return &occurrence, nil
}

func (f *fakeOccurrenceRepo) Update(_ context.Context, id uuid.UUID, patch OccurrencePatch) (*model.Occurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: occurrence %s", ErrNotFound, id)
	}
	if patch.ExpectedDate != nil {
		o.ExpectedDate = *patch.ExpectedDate
	}
	if patch.Notes != nil {
		o.Notes = patch.Notes
	}
	f.items[id] = o
	return &o, nil
}

func (f *fakeOccurrenceRepo) UpdateStatus(_ context.Context, id uuid.UUID, from []model.OccurrenceStatus, to model.OccurrenceStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return false, f.statusErr
	}
	o, ok := f.items[id]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if o.Status == status {
			o.Status = to
			f.items[id] = o
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOccurrenceRepo) ExistsAt(_ context.Context, expectedDate time.Time, excludeID *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.items {
		if excludeID != nil && o.ID == *excludeID {
			continue
		}
		if o.ExpectedDate.Equal(expectedDate) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOccurrenceRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

type fakeTaskRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]model.Task
	statusErr error
	createErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{items: make(map[uuid.UUID]model.Task)}
}

func (f *fakeTaskRepo) FindAll(_ context.Context, filter TaskFilter) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Task
	for _, t := range f.items {
		if !taskMatches(t, filter) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func taskMatches(t model.Task, filter TaskFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if t.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.From != nil && t.TaskDate.Before(*filter.From) {
		return false
	}
	if filter.To != nil && !t.TaskDate.Before(*filter.To) {
		return false
	}
	if filter.TechnicianID != nil && (t.TechnicianID == nil || *t.TechnicianID != *filter.TechnicianID) {
		return false
	}
	if filter.CustomerProductID != nil && t.CustomerProductID != *filter.CustomerProductID {
		return false
	}
	return true
}

func (f *fakeTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	return &t, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task model.Task) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.items[task.ID] = task
	return &task, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, id uuid.UUID, patch TaskPatch) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	if patch.TaskDate != nil {
		t.TaskDate = *patch.TaskDate
	}
	if patch.TechnicianID != nil {
		t.TechnicianID = patch.TechnicianID
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = patch.Description
	}
	f.items[id] = t
	return &t, nil
}

func (f *fakeTaskRepo) UpdateStatus(_ context.Context, id uuid.UUID, from []model.TaskStatus, to model.TaskStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return false, f.statusErr
	}
	t, ok := f.items[id]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if t.Status == status {
			t.Status = to
			f.items[id] = t
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskRepo) ExistsAt(_ context.Context, taskDate time.Time, excludeID *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.items {
		if excludeID != nil && t.ID == *excludeID {
			continue
		}
		if t.TaskDate.Equal(taskDate) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

type fakeServiceLogRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]model.ServiceLog
	createErr error
}

func newFakeServiceLogRepo() *fakeServiceLogRepo {
	return &fakeServiceLogRepo{items: make(map[uuid.UUID]model.ServiceLog)}
}

func (f *fakeServiceLogRepo) FindAll(_ context.Context, filter ServiceLogFilter) ([]model.ServiceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ServiceLog
	for _, l := range f.items {
		if filter.From != nil && l.ServiceDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !l.ServiceDate.Before(*filter.To) {
			continue
		}
		if filter.TechnicianID != nil && l.TechnicianID != *filter.TechnicianID {
			continue
		}
		if filter.CustomerProductID != nil && l.CustomerProductID != *filter.CustomerProductID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeServiceLogRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ServiceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: service log %s", ErrNotFound, id)
	}
	return &l, nil
}

func (f *fakeServiceLogRepo) FindByTaskID(_ context.Context, taskID uuid.UUID) (*model.ServiceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.items {
		if l.TaskID != nil && *l.TaskID == taskID {
			log := l
			return &log, nil
		}
	}
	return nil, nil
}

func (f *fakeServiceLogRepo) FindByOccurrenceID(_ context.Context, occurrenceID uuid.UUID) (*model.ServiceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.items {
		if l.OccurrenceID != nil && *l.OccurrenceID == occurrenceID {
			log := l
			return &log, nil
		}
	}
	return nil, nil
}

func (f *fakeServiceLogRepo) Create(_ context.Context, log model.ServiceLog) (*model.ServiceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.items[log.ID] = log
	return &log, nil
}

func (f *fakeServiceLogRepo) Update(_ context.Context, id uuid.UUID, patch ServiceLogPatch) (*model.ServiceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: service log %s", ErrNotFound, id)
	}
	if patch.WorkDescription != nil {
		l.WorkDescription = *patch.WorkDescription
	}
	if patch.ServicePrice != nil {
		l.ServicePrice = *patch.ServicePrice
	}
	if patch.TechnicianFee != nil {
		l.TechnicianFee = patch.TechnicianFee
	}
	if patch.Notes != nil {
		l.Notes = patch.Notes
	}
	f.items[id] = l
	return &l, nil
}

// fakeContractRepo stores contracts and forwards generated occurrences
// to the occurrence fake, all-or-nothing like the real transaction.
type fakeContractRepo struct {
	mu           sync.Mutex
	items        map[uuid.UUID]model.Contract
	occurrences  *fakeOccurrenceRepo
	createErr    error
	incrementErr error
}

func newFakeContractRepo(occurrences *fakeOccurrenceRepo) *fakeContractRepo {
	return &fakeContractRepo{
		items:       make(map[uuid.UUID]model.Contract),
		occurrences: occurrences,
	}
}

func (f *fakeContractRepo) CreateWithOccurrences(ctx context.Context, contract model.Contract, occurrences []model.Occurrence) (*model.Contract, error) {
	f.mu.Lock()
	if f.createErr != nil {
		f.mu.Unlock()
		return nil, f.createErr
	}
	f.items[contract.ID] = contract
	f.mu.Unlock()

	for _, occurrence := range occurrences {
		if _, err := f.occurrences.Create(ctx, occurrence); err != nil {
			return nil, err
		}
	}
	return &contract, nil
}

func (f *fakeContractRepo) FindAll(_ context.Context, filter ContractFilter) ([]model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Contract
	for _, c := range f.items {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.CustomerProductID != nil && c.CustomerProductID != *filter.CustomerProductID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeContractRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: contract %s", ErrNotFound, id)
	}
	return &c, nil
}

func (f *fakeContractRepo) Update(_ context.Context, id uuid.UUID, patch ContractPatch) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: contract %s", ErrNotFound, id)
	}
	if patch.StartDate != nil {
		c.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		c.EndDate = *patch.EndDate
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Notes != nil {
		c.Notes = patch.Notes
	}
	if patch.Price != nil {
		c.Price = *patch.Price
	}
	f.items[id] = c
	return &c, nil
}

func (f *fakeContractRepo) IncrementServicesUsed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrementErr != nil {
		return f.incrementErr
	}
	c, ok := f.items[id]
	if !ok {
		return fmt.Errorf("%w: contract %s", ErrNotFound, id)
	}
	c.ServicesUsed++
	f.items[id] = c
	return nil
}

func (f *fakeContractRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}
