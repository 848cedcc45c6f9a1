package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tomlord1122/task-manager/internal/domain"
	"github.com/Tomlord1122/task-manager/internal/repository"
)

// CreateTaskRequest holds the data needed to create a new task. The owner is
// never part of the payload; it comes from the authenticated request.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTaskRequest holds the data for updating an existing task.
// Using pointers allows distinguishing between a field being omitted
// vs. being set to its zero value (e.g., setting Completed to false).
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TaskResponse is the standard representation of a Task returned by the service.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// taskFields are the user-editable fields, validated the same way on create
// and update.
type taskFields struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

// TaskService defines the operations for managing tasks. Every method is
// scoped to ownerID: tasks of other owners behave as if they did not exist.
type TaskService interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error)

	// ListTasks returns the owner's tasks, newest first.
	ListTasks(ctx context.Context, ownerID uuid.UUID) ([]TaskResponse, error)

	GetTask(ctx context.Context, ownerID uuid.UUID, taskID string) (*TaskResponse, error)

	// UpdateTask changes only the fields present in req.
	UpdateTask(ctx context.Context, ownerID uuid.UUID, taskID string, req UpdateTaskRequest) (*TaskResponse, error)

	DeleteTask(ctx context.Context, ownerID uuid.UUID, taskID string) error
}

type taskService struct {
	repo repository.TaskRepository
	log  *slog.Logger
	now  func() time.Time
}

func NewTaskService(repo repository.TaskRepository, log *slog.Logger) TaskService {
	return &taskService{repo: repo, log: log, now: dbNow}
}

// dbNow is the current time at the precision postgres stores, so a response
// built from it matches what later reads return.
func dbNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *taskService) CreateTask(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error) {
	fields := taskFields{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	}
	if err := validateStruct(fields); err != nil {
		return nil, err
	}

	now := s.now()
	task := &domain.Task{
		ID:          uuid.New(),
		Title:       fields.Title,
		Description: fields.Description,
		Completed:   false,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.DebugContext(ctx, "task created", "task_id", task.ID, "user_id", ownerID)
	return toTaskResponse(task), nil
}

func (s *taskService) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]TaskResponse, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, *toTaskResponse(&tasks[i]))
	}
	return responses, nil
}

func (s *taskService) GetTask(ctx context.Context, ownerID uuid.UUID, taskID string) (*TaskResponse, error) {
	task, err := s.find(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

func (s *taskService) UpdateTask(ctx context.Context, ownerID uuid.UUID, taskID string, req UpdateTaskRequest) (*TaskResponse, error) {
	task, err := s.find(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	fields := taskFields{Title: task.Title, Description: task.Description}
	if req.Title != nil {
		fields.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields.Description = strings.TrimSpace(*req.Description)
	}
	if err := validateStruct(fields); err != nil {
		return nil, err
	}

	task.Title = fields.Title
	task.Description = fields.Description
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	task.UpdatedAt = s.now()

	// Last write wins: there is no version check between find and update.
	if err := s.repo.UpdateFields(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update task %s: %w", task.ID, err)
	}
	return toTaskResponse(task), nil
}

func (s *taskService) DeleteTask(ctx context.Context, ownerID uuid.UUID, taskID string) error {
	id, err := parseTaskID(taskID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	s.log.DebugContext(ctx, "task deleted", "task_id", id, "user_id", ownerID)
	return nil
}

func (s *taskService) find(ctx context.Context, ownerID uuid.UUID, taskID string) (*domain.Task, error) {
	id, err := parseTaskID(taskID)
	if err != nil {
		return nil, err
	}
	task, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}
	return task, nil
}

func parseTaskID(taskID string) (uuid.UUID, error) {
	id, err := uuid.Parse(taskID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidTaskID
	}
	return id, nil
}

func toTaskResponse(t *domain.Task) *TaskResponse {
	return &TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
