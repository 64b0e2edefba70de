package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldops-service/internal/model"
	"github.com/nurpe/fieldops-service/internal/service"
)

type OccurrenceRepository struct {
	db *gorm.DB
}

func NewOccurrenceRepository(db *gorm.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

const occurrenceSelect = `
	SELECT
		o.id,
		o.contract_id,
		o.customer_product_id,
		o.expected_date,
		o.interval_months,
		o.source_type,
		o.status,
		o.notes,
		o.created_at,
		cust.name AS customer_name,
		pc.name AS product_name,
		cp.installation_location
	FROM schedule_occurrences o
	JOIN customer_products cp ON cp.id = o.customer_product_id
	JOIN customers cust ON cust.id = cp.customer_id
	JOIN product_catalog pc ON pc.id = cp.product_id
`

func (r *OccurrenceRepository) FindAll(ctx context.Context, filter service.OccurrenceFilter) ([]model.Occurrence, error) {
	baseQuery := occurrenceSelect + ` WHERE 1=1`
	var args []interface{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		baseQuery += fmt.Sprintf(" AND o.status IN (%s)", strings.Join(placeholders, ","))
	}
	if filter.From != nil {
		baseQuery += " AND o.expected_date >= ?"
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		baseQuery += " AND o.expected_date < ?"
		args = append(args, *filter.To)
	}
	if filter.ContractID != nil {
		baseQuery += " AND o.contract_id = ?"
		args = append(args, *filter.ContractID)
	}
	if filter.CustomerProductID != nil {
		baseQuery += " AND o.customer_product_id = ?"
		args = append(args, *filter.CustomerProductID)
	}
	baseQuery += " ORDER BY o.expected_date ASC"

	var occurrences []model.Occurrence
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&occurrences).Error; err != nil {
		return nil, err
	}
	return occurrences, nil
}

func (r *OccurrenceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Occurrence, error) {
	var occurrence model.Occurrence
	if err := r.db.WithContext(ctx).Raw(occurrenceSelect+` WHERE o.id = ? LIMIT 1`, id).Scan(&occurrence).Error; err != nil {
		return nil, err
	}
	if occurrence.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: occurrence %s", service.ErrNotFound, id)
	}
	return &occurrence, nil
}

func (r *OccurrenceRepository) Create(ctx context.Context, occurrence model.Occurrence) (*model.Occurrence, error) {
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO schedule_occurrences (
			id,
			contract_id,
			customer_product_id,
			expected_date,
			interval_months,
			source_type,
			status,
			notes,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		occurrence.ID,
		occurrence.ContractID,
		occurrence.CustomerProductID,
		occurrence.ExpectedDate,
		occurrence.IntervalMonths,
		occurrence.SourceType,
		occurrence.Status,
		occurrence.Notes,
		occurrence.CreatedAt,
	).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, occurrence.ID)
}

func (r *OccurrenceRepository) Update(ctx context.Context, id uuid.UUID, patch service.OccurrencePatch) (*model.Occurrence, error) {
	var sets []string
	var args []interface{}

	if patch.ExpectedDate != nil {
		sets = append(sets, "expected_date = ?")
		args = append(args, *patch.ExpectedDate)
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
		"UPDATE schedule_occurrences SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: occurrence %s", service.ErrNotFound, id)
	}
	return r.FindByID(ctx, id)
}

// UpdateStatus is the conditional write closing the concurrent
// completion race: zero affected rows means the expected prior status
// no longer holds.
func (r *OccurrenceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []model.OccurrenceStatus, to model.OccurrenceStatus) (bool, error) {
	placeholders := make([]string, len(from))
	args := []interface{}{to}
	for i, status := range from {
		placeholders[i] = "?"
		args = append(args, status)
	}
	args = append(args, id)

	res := r.db.WithContext(ctx).Exec(fmt.Sprintf(`
		UPDATE schedule_occurrences
		SET status = ?
		WHERE status IN (%s) AND id = ?
	`, strings.Join(placeholders, ",")), args...)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OccurrenceRepository) ExistsAt(ctx context.Context, expectedDate time.Time, excludeID *uuid.UUID) (bool, error) {
	baseQuery := `SELECT COUNT(*) FROM schedule_occurrences WHERE expected_date = ?`
	args := []interface{}{expectedDate}
	if excludeID != nil {
		baseQuery += " AND id <> ?"
		args = append(args, *excludeID)
	}

	var count int64
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *OccurrenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`DELETE FROM schedule_occurrences WHERE id = ?`, id).Error
}
