package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fieldops-service/internal/config"
	"github.com/nurpe/fieldops-service/internal/excel"
	"github.com/nurpe/fieldops-service/internal/pdf"
	"github.com/nurpe/fieldops-service/internal/service"
)

type Handler struct {
	contracts   *service.ContractService
	occurrences *service.OccurrenceService
	tasks       *service.TaskService
	logs        *service.ServiceLogService
	reconciler  *service.Reconciler
	timeline    *service.TimelineService
	exporter    *excel.Generator
	reports     *pdf.Generator
	cfg         *config.Config
	log         zerolog.Logger
}

func NewHandler(
	contracts *service.ContractService,
	occurrences *service.OccurrenceService,
	tasks *service.TaskService,
	logs *service.ServiceLogService,
	reconciler *service.Reconciler,
	timeline *service.TimelineService,
	exporter *excel.Generator,
	reports *pdf.Generator,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		contracts:   contracts,
		occurrences: occurrences,
		tasks:       tasks,
		logs:        logs,
		reconciler:  reconciler,
		timeline:    timeline,
		exporter:    exporter,
		reports:     reports,
		cfg:         cfg,
		log:         log,
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var consistencyErr *service.ConsistencyError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &consistencyErr):
		// The primary write committed; tell the caller exactly which
		// follow-up is missing so they can retry it.
		c.JSON(http.StatusConflict, gin.H{
			"error":          "partially applied",
			"detail":         consistencyErr.Error(),
			"secondary_kind": consistencyErr.SecondaryKind,
			"secondary_id":   consistencyErr.SecondaryID,
		})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	return &id, nil
}
