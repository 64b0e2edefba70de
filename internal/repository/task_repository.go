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

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskSelect = `
	SELECT
		t.id,
		t.occurrence_id,
		t.customer_id,
		t.customer_product_id,
		t.technician_id,
		t.task_date,
		t.title,
		t.description,
		t.status,
		t.created_at,
		cust.name AS customer_name,
		pc.name AS product_name,
		COALESCE(tech.name, 'Unassigned') AS technician_name,
		cp.installation_location
	FROM tasks t
	JOIN customers cust ON cust.id = t.customer_id
	JOIN customer_products cp ON cp.id = t.customer_product_id
	JOIN product_catalog pc ON pc.id = cp.product_id
	LEFT JOIN technicians tech ON tech.id = t.technician_id
`

func (r *TaskRepository) FindAll(ctx context.Context, filter service.TaskFilter) ([]model.Task, error) {
	baseQuery := taskSelect + ` WHERE 1=1`
	var args []interface{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		baseQuery += fmt.Sprintf(" AND t.status IN (%s)", strings.Join(placeholders, ","))
	}
	if filter.From != nil {
		baseQuery += " AND t.task_date >= ?"
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		baseQuery += " AND t.task_date < ?"
		args = append(args, *filter.To)
	}
	if filter.TechnicianID != nil {
		baseQuery += " AND t.technician_id = ?"
		args = append(args, *filter.TechnicianID)
	}
	if filter.CustomerProductID != nil {
		baseQuery += " AND t.customer_product_id = ?"
		args = append(args, *filter.CustomerProductID)
	}
	baseQuery += " ORDER BY t.task_date ASC"

	var tasks []model.Task
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Raw(taskSelect+` WHERE t.id = ? LIMIT 1`, id).Scan(&task).Error; err != nil {
		return nil, err
	}
	if task.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: task %s", service.ErrNotFound, id)
	}
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task model.Task) (*model.Task, error) {
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO tasks (
			id,
			occurrence_id,
			customer_id,
			customer_product_id,
			technician_id,
			task_date,
			title,
			description,
			status,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		task.OccurrenceID,
		task.CustomerID,
		task.CustomerProductID,
		task.TechnicianID,
		task.TaskDate,
		task.Title,
		task.Description,
		task.Status,
		task.CreatedAt,
	).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, task.ID)
}

func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, patch service.TaskPatch) (*model.Task, error) {
	var sets []string
	var args []interface{}

	if patch.TaskDate != nil {
		sets = append(sets, "task_date = ?")
		args = append(args, *patch.TaskDate)
	}
	if patch.TechnicianID != nil {
		sets = append(sets, "technician_id = ?")
		args = append(args, *patch.TechnicianID)
	}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	res := r.db.WithContext(ctx).Exec(
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: task %s", service.ErrNotFound, id)
	}
	return r.FindByID(ctx, id)
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []model.TaskStatus, to model.TaskStatus) (bool, error) {
	placeholders := make([]string, len(from))
	args := []interface{}{to}
	for i, status := range from {
		placeholders[i] = "?"
		args = append(args, status)
	}
	args = append(args, id)

	res := r.db.WithContext(ctx).Exec(fmt.Sprintf(`
		UPDATE tasks
		SET status = ?
		WHERE status IN (%s) AND id = ?
	`, strings.Join(placeholders, ",")), args...)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TaskRepository) ExistsAt(ctx context.Context, taskDate time.Time, excludeID *uuid.UUID) (bool, error) {
	baseQuery := `SELECT COUNT(*) FROM tasks WHERE task_date = ?`
	args := []interface{}{taskDate}
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

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`DELETE FROM tasks WHERE id = ?`, id).Error
}
