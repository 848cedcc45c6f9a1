package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/task-manager/internal/domain"
)

// TaskRepository defines task persistence. Every lookup, update and delete is
// scoped to the owning user.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	UpdateFields(ctx context.Context, task *domain.Task) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error
}

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM task repository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// ListByOwner returns the owner's tasks, newest first.
func (r *gormTaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	result := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

func (r *gormTaskRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// UpdateFields writes the mutable columns of task. The row must still belong
// to task.UserID; otherwise ErrNotFound is returned.
func (r *gormTaskRepository) UpdateFields(ctx context.Context, task *domain.Task) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"completed":   task.Completed,
			"updated_at":  task.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormTaskRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&domain.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
