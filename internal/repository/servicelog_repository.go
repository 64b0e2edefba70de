package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldops-service/internal/model"
	"github.com/nurpe/fieldops-service/internal/service"
)

type ServiceLogRepository struct {
	db *gorm.DB
}

func NewServiceLogRepository(db *gorm.DB) *ServiceLogRepository {
	return &ServiceLogRepository{db: db}
}

// serviceLogRow carries evidence as raw jsonb; the mapper decodes it.
type serviceLogRow struct {
	ID                   uuid.UUID
	TaskID               *uuid.UUID
	OccurrenceID         *uuid.UUID
	CustomerProductID    uuid.UUID
	TechnicianID         uuid.UUID
	ServiceDate          time.Time
	ServiceType          model.ServiceType
	WorkDescription      string
	ServicePrice         float64
	TechnicianFee        *float64
	Evidence             []byte
	Notes                *string
	CreatedAt            time.Time
	CustomerName         string
	ProductName          string
	TechnicianName       string
	InstallationLocation string
}

const serviceLogSelect = `
	SELECT
		l.id,
		l.task_id,
		l.occurrence_id,
		l.customer_product_id,
		l.technician_id,
		l.service_date,
		l.service_type,
		l.work_description,
		l.service_price,
		l.technician_fee,
		l.evidence,
		l.notes,
		l.created_at,
		cust.name AS customer_name,
		pc.name AS product_name,
		tech.name AS technician_name,
		cp.installation_location
	FROM service_logs l
	JOIN customer_products cp ON cp.id = l.customer_product_id
	JOIN customers cust ON cust.id = cp.customer_id
	JOIN product_catalog pc ON pc.id = cp.product_id
	JOIN technicians tech ON tech.id = l.technician_id
`

func mapServiceLog(row serviceLogRow) (*model.ServiceLog, error) {
	var evidence []string
	if len(row.Evidence) > 0 {
		if err := json.Unmarshal(row.Evidence, &evidence); err != nil {
			return nil, fmt.Errorf("decode evidence for log %s: %w", row.ID, err)
		}
	}
	return &model.ServiceLog{
		ID:                   row.ID,
		TaskID:               row.TaskID,
		OccurrenceID:         row.OccurrenceID,
		CustomerProductID:    row.CustomerProductID,
		TechnicianID:         row.TechnicianID,
		ServiceDate:          row.ServiceDate,
		ServiceType:          row.ServiceType,
		WorkDescription:      row.WorkDescription,
		ServicePrice:         row.ServicePrice,
		TechnicianFee:        row.TechnicianFee,
		Evidence:             evidence,
		Notes:                row.Notes,
		CreatedAt:            row.CreatedAt,
		CustomerName:         row.CustomerName,
		ProductName:          row.ProductName,
		TechnicianName:       row.TechnicianName,
		InstallationLocation: row.InstallationLocation,
	}, nil
}

func (r *ServiceLogRepository) FindAll(ctx context.Context, filter service.ServiceLogFilter) ([]model.ServiceLog, error) {
	baseQuery := serviceLogSelect + ` WHERE 1=1`
	var args []interface{}

	if filter.From != nil {
		baseQuery += " AND l.service_date >= ?"
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		baseQuery += " AND l.service_date < ?"
		args = append(args, *filter.To)
	}
	if filter.TechnicianID != nil {
		baseQuery += " AND l.technician_id = ?"
		args = append(args, *filter.TechnicianID)
	}
	if filter.CustomerProductID != nil {
		baseQuery += " AND l.customer_product_id = ?"
		args = append(args, *filter.CustomerProductID)
	}
	baseQuery += " ORDER BY l.service_date DESC"

	var rows []serviceLogRow
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	logs := make([]model.ServiceLog, 0, len(rows))
	for _, row := range rows {
		log, err := mapServiceLog(row)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, nil
}

func (r *ServiceLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceLog, error) {
	row, err := r.findOne(ctx, "l.id = ?", id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: service log %s", service.ErrNotFound, id)
	}
	return row, nil
}

// FindByTaskID returns nil without error when no log references the
// task; absence is an answer here, not a failure.
func (r *ServiceLogRepository) FindByTaskID(ctx context.Context, taskID uuid.UUID) (*model.ServiceLog, error) {
	return r.findOne(ctx, "l.task_id = ?", taskID)
}

func (r *ServiceLogRepository) FindByOccurrenceID(ctx context.Context, occurrenceID uuid.UUID) (*model.ServiceLog, error) {
	return r.findOne(ctx, "l.occurrence_id = ?", occurrenceID)
}

func (r *ServiceLogRepository) findOne(ctx context.Context, condition string, arg interface{}) (*model.ServiceLog, error) {
	var row serviceLogRow
	if err := r.db.WithContext(ctx).Raw(serviceLogSelect+` WHERE `+condition+` LIMIT 1`, arg).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return mapServiceLog(row)
}

func (r *ServiceLogRepository) Create(ctx context.Context, log model.ServiceLog) (*model.ServiceLog, error) {
	evidence, err := json.Marshal(log.Evidence)
	if err != nil {
		return nil, fmt.Errorf("encode evidence: %w", err)
	}

	err = r.db.WithContext(ctx).Exec(`
		INSERT INTO service_logs (
			id,
			task_id,
			occurrence_id,
			customer_product_id,
			technician_id,
			service_date,
			service_type,
			work_description,
			service_price,
			technician_fee,
			evidence,
			notes,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID,
		log.TaskID,
		log.OccurrenceID,
		log.CustomerProductID,
		log.TechnicianID,
		log.ServiceDate,
		log.ServiceType,
		log.WorkDescription,
		log.ServicePrice,
		log.TechnicianFee,
		evidence,
		log.Notes,
		log.CreatedAt,
	).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, log.ID)
}

func (r *ServiceLogRepository) Update(ctx context.Context, id uuid.UUID, patch service.ServiceLogPatch) (*model.ServiceLog, error) {
	var sets []string
	var args []interface{}

	if patch.WorkDescription != nil {
		sets = append(sets, "work_description = ?")
		args = append(args, *patch.WorkDescription)
	}
	if patch.ServicePrice != nil {
		sets = append(sets, "service_price = ?")
		args = append(args, *patch.ServicePrice)
	}
	if patch.TechnicianFee != nil {
		sets = append(sets, "technician_fee = ?")
		args = append(args, *patch.TechnicianFee)
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	res := r.db.WithContext(ctx).Exec(
		"UPDATE service_logs SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: service log %s", service.ErrNotFound, id)
	}
	return r.FindByID(ctx, id)
}
