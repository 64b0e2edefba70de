package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fieldops-service/internal/model"
)

// OccurrenceService covers standalone occurrence CRUD. Contract-derived
// occurrences come from ContractService; manual ones are created here.
type OccurrenceService struct {
	occurrences OccurrenceRepository
	log         zerolog.Logger
	now         Clock
	newID       IDGenerator
}

func NewOccurrenceService(occurrences OccurrenceRepository, log zerolog.Logger) *OccurrenceService {
	return &OccurrenceService{
		occurrences: occurrences,
		log:         log,
		now:         DefaultClock,
		newID:       DefaultIDGenerator,
	}
}

type CreateOccurrenceInput struct {
	CustomerProductID uuid.UUID
	ExpectedDate      time.Time
	Notes             *string
}

// CreateManual adds an ad-hoc planned service. Two occurrences cannot
// share the same time slot.
func (s *OccurrenceService) CreateManual(ctx context.Context, input CreateOccurrenceInput) (*model.Occurrence, error) {
	if input.CustomerProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer_product_id is required", ErrInvalidInput)
	}
	if input.ExpectedDate.IsZero() {
		return nil, fmt.Errorf("%w: expected_date is required", ErrInvalidInput)
	}

	if exists, err := s.occurrences.ExistsAt(ctx, input.ExpectedDate, nil); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: an occurrence already exists at %s", ErrConflict, input.ExpectedDate.Format(time.RFC3339))
	}

	return s.occurrences.Create(ctx, model.Occurrence{
		ID:                s.newID(),
		CustomerProductID: input.CustomerProductID,
		ExpectedDate:      input.ExpectedDate,
		SourceType:        model.OccurrenceSourceManual,
		Status:            model.OccurrenceStatusPending,
		Notes:             input.Notes,
		CreatedAt:         s.now(),
	})
}

func (s *OccurrenceService) List(ctx context.Context, filter OccurrenceFilter) ([]model.Occurrence, error) {
	return s.occurrences.FindAll(ctx, filter)
}

func (s *OccurrenceService) Get(ctx context.Context, id uuid.UUID) (*model.Occurrence, error) {
	return s.occurrences.FindByID(ctx, id)
}

func (s *OccurrenceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.occurrences.FindByID(ctx, id); err != nil {
		return err
	}
	return s.occurrences.Delete(ctx, id)
}
