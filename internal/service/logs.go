package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fieldops-service/internal/model"
)

// ServiceLogService exposes read access and administrative edits.
// Creation happens only through the Reconciler so the status machine
// stays consistent.
type ServiceLogService struct {
	logs ServiceLogRepository
	log  zerolog.Logger
}

func NewServiceLogService(logs ServiceLogRepository, log zerolog.Logger) *ServiceLogService {
	return &ServiceLogService{logs: logs, log: log}
}

func (s *ServiceLogService) List(ctx context.Context, filter ServiceLogFilter) ([]model.ServiceLog, error) {
	return s.logs.FindAll(ctx, filter)
}

func (s *ServiceLogService) Get(ctx context.Context, id uuid.UUID) (*model.ServiceLog, error) {
	return s.logs.FindByID(ctx, id)
}

// Update applies an administrative edit. Only the descriptive fields
// move; references and the service date are fixed at creation.
func (s *ServiceLogService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, patch ServiceLogPatch) (*model.ServiceLog, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if patch.WorkDescription != nil && *patch.WorkDescription == "" {
		return nil, fmt.Errorf("%w: work description cannot be empty", ErrInvalidInput)
	}
	return s.logs.Update(ctx, id, patch)
}
