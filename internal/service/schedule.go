package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fieldops-service/internal/metrics"
	"github.com/nurpe/fieldops-service/internal/model"
)

// ContractService creates maintenance contracts and expands them into
// their occurrence schedule. Expansion happens exactly once, at
// creation; count/status updates never regenerate it.
type ContractService struct {
	contracts ContractRepository
	log       zerolog.Logger
	metrics   *metrics.Metrics
	now       Clock
	newID     IDGenerator
}

func NewContractService(contracts ContractRepository, m *metrics.Metrics, log zerolog.Logger) *ContractService {
	return &ContractService{
		contracts: contracts,
		log:       log,
		metrics:   m,
		now:       DefaultClock,
		newID:     DefaultIDGenerator,
	}
}

// WithClock overrides the time source. Tests only.
func (s *ContractService) WithClock(now Clock, newID IDGenerator) *ContractService {
	s.now = now
	s.newID = newID
	return s
}

type CreateContractInput struct {
	CustomerProductID uuid.UUID
	StartDate         time.Time
	EndDate           time.Time
	IntervalMonths    int
	TotalService      int
	ContractURL       *string
	Notes             *string
	Price             float64
}

// ExpandSchedule turns a contract definition into its ordered service
// dates: dates[0] = start, dates[i] = dates[i-1] advanced by
// intervalMonths calendar months. When the target month is shorter than
// the start's day-of-month the date clamps to the last day of that
// month (Jan 31 + 1 month = Feb 28), it does not spill into the next
// one the way time.AddDate would.
func ExpandSchedule(start time.Time, intervalMonths, totalService int) ([]time.Time, error) {
	if intervalMonths <= 0 {
		return nil, ErrInvalidInterval
	}
	if totalService <= 0 {
		return nil, fmt.Errorf("%w: total_service must be a positive integer", ErrInvalidInput)
	}

	dates := make([]time.Time, 0, totalService)
	for i := 0; i < totalService; i++ {
		dates = append(dates, addMonthsClamped(start, i*intervalMonths))
	}
	return dates, nil
}

// addMonthsClamped keeps the day-of-month when the target month has it
// and clamps to the month's last day otherwise. Each step is computed
// from the original start so a clamp never shortens later dates
// (Jan 31 -> Feb 28 -> Mar 31, not Mar 28).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	month = time.Month((m-1)%12 + 1)

	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CreateContract validates the definition, expands the schedule and
// persists contract plus occurrences atomically. Nothing is written
// when validation fails.
func (s *ContractService) CreateContract(ctx context.Context, input CreateContractInput) (*model.Contract, error) {
	if input.CustomerProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer_product_id is required", ErrInvalidInput)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: end_date must not be before start_date", ErrInvalidInput)
	}

	dates, err := ExpandSchedule(input.StartDate, input.IntervalMonths, input.TotalService)
	if err != nil {
		return nil, err
	}

	contract := model.Contract{
		ID:                s.newID(),
		CustomerProductID: input.CustomerProductID,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		IntervalMonths:    input.IntervalMonths,
		TotalService:      input.TotalService,
		ServicesUsed:      0,
		Status:            model.ContractStatusActive,
		ContractURL:       input.ContractURL,
		Notes:             input.Notes,
		Price:             input.Price,
		CreatedAt:         s.now(),
	}

	occurrences := make([]model.Occurrence, 0, len(dates))
	for _, date := range dates {
		contractID := contract.ID
		occurrences = append(occurrences, model.Occurrence{
			ID:                s.newID(),
			ContractID:        &contractID,
			CustomerProductID: input.CustomerProductID,
			ExpectedDate:      date,
			IntervalMonths:    input.IntervalMonths,
			SourceType:        model.OccurrenceSourceContract,
			Status:            model.OccurrenceStatusPending,
			CreatedAt:         contract.CreatedAt,
		})
	}

	created, err := s.contracts.CreateWithOccurrences(ctx, contract, occurrences)
	if err != nil {
		return nil, err
	}

	s.metrics.OccurrencesGenerated.Add(float64(len(occurrences)))
	s.log.Info().
		Str("contract_id", created.ID.String()).
		Int("occurrences", len(occurrences)).
		Msg("contract created with schedule")
	return created, nil
}

func (s *ContractService) ListContracts(ctx context.Context, filter ContractFilter) ([]model.Contract, error) {
	return s.contracts.FindAll(ctx, filter)
}

func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return s.contracts.FindByID(ctx, id)
}

func (s *ContractService) UpdateContract(ctx context.Context, id uuid.UUID, patch ContractPatch) (*model.Contract, error) {
	if patch.Status != nil {
		switch *patch.Status {
		case model.ContractStatusActive, model.ContractStatusExpired:
		default:
			return nil, fmt.Errorf("%w: unknown contract status %q", ErrInvalidInput, *patch.Status)
		}
	}
	return s.contracts.Update(ctx, id, patch)
}

func (s *ContractService) DeleteContract(ctx context.Context, id uuid.UUID) error {
	if _, err := s.contracts.FindByID(ctx, id); err != nil {
		return err
	}
	return s.contracts.Delete(ctx, id)
}
