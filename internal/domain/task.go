package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single to-do item. UserID is set at creation and never changes.
type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:100;not null"`
	Description string    `gorm:"size:500;not null;default:''"`
	Completed   bool      `gorm:"not null;default:false"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_tasks_user_created,priority:1"`
	CreatedAt   time.Time `gorm:"not null;index:idx_tasks_user_created,priority:2,sort:desc"`
	UpdatedAt   time.Time `gorm:"not null"`
}
