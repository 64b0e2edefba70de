package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldops-service/internal/model"
	"github.com/nurpe/fieldops-service/internal/service"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

const contractSelect = `
	SELECT
		c.id,
		c.customer_product_id,
		c.start_date,
		c.end_date,
		c.interval_months,
		c.total_service,
		c.services_used,
		c.status,
		c.contract_url,
		c.notes,
		c.price,
		c.created_at,
		cust.name AS customer_name,
		pc.name AS product_name,
		cp.installation_location
	FROM contracts c
	JOIN customer_products cp ON cp.id = c.customer_product_id
	JOIN customers cust ON cust.id = cp.customer_id
	JOIN product_catalog pc ON pc.id = cp.product_id
`

// CreateWithOccurrences writes the contract and its generated schedule
// in one transaction. Either everything lands or nothing does; a
// contract with no occurrences cannot be observed.
func (r *ContractRepository) CreateWithOccurrences(ctx context.Context, contract model.Contract, occurrences []model.Occurrence) (*model.Contract, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			INSERT INTO contracts (
				id,
				customer_product_id,
				start_date,
				end_date,
				interval_months,
				total_service,
				services_used,
				status,
				contract_url,
				notes,
				price,
				created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			contract.ID,
			contract.CustomerProductID,
			contract.StartDate,
			contract.EndDate,
			contract.IntervalMonths,
			contract.TotalService,
			contract.ServicesUsed,
			contract.Status,
			contract.ContractURL,
			contract.Notes,
			contract.Price,
			contract.CreatedAt,
		).Error; err != nil {
			return err
		}

		for _, occurrence := range occurrences {
			if err := tx.Exec(`
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
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, contract.ID)
}

func (r *ContractRepository) FindAll(ctx context.Context, filter service.ContractFilter) ([]model.Contract, error) {
	baseQuery := contractSelect + ` WHERE 1=1`
	var args []interface{}

	if filter.Status != nil {
		baseQuery += " AND c.status = ?"
		args = append(args, *filter.Status)
	}
	if filter.CustomerProductID != nil {
		baseQuery += " AND c.customer_product_id = ?"
		args = append(args, *filter.CustomerProductID)
	}
	baseQuery += " ORDER BY c.created_at DESC"

	var contracts []model.Contract
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *ContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).Raw(contractSelect+` WHERE c.id = ? LIMIT 1`, id).Scan(&contract).Error; err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: contract %s", service.ErrNotFound, id)
	}
	return &contract, nil
}

func (r *ContractRepository) Update(ctx context.Context, id uuid.UUID, patch service.ContractPatch) (*model.Contract, error) {
	var sets []string
	var args []interface{}

	if patch.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *patch.StartDate)
	}
	if patch.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, *patch.EndDate)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.ContractURL != nil {
		sets = append(sets, "contract_url = ?")
		args = append(args, *patch.ContractURL)
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	if patch.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	res := r.db.WithContext(ctx).Exec(
		"UPDATE contracts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: contract %s", service.ErrNotFound, id)
	}
	return r.FindByID(ctx, id)
}

func (r *ContractRepository) IncrementServicesUsed(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET services_used = services_used + 1
		WHERE id = ? AND services_used < total_service
	`, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: contract %s has no remaining services", service.ErrConflict, id)
	}
	return nil
}

func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`DELETE FROM contracts WHERE id = ?`, id).Error
}
