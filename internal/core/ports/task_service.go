package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// CreateTaskInput carries the already shape-validated data for a new task.
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      domain.TaskStatus // empty = PENDING
	// UserID is only honoured for admins; other actors always own what they create.
	UserID         string
	IdempotencyKey string
}

// OptionalString distinguishes an absent field from one explicitly set to null.
type OptionalString struct {
	Set   bool
	Value *string
}

// UpdateTaskInput is a partial update. Nil pointers and unset optionals leave
// the stored value untouched.
type UpdateTaskInput struct {
	Title       *string
	Description OptionalString
	Status      *domain.TaskStatus
}

// ListTasksInput carries optional list filters.
type ListTasksInput struct {
	Status domain.TaskStatus
	UserID string
}

// CreateTaskResult is returned by TaskService.Create.
type CreateTaskResult struct {
	Task *domain.Task
	// AlreadyExisted is true when the Idempotency-Key matched an earlier create.
	AlreadyExisted bool
}

// TaskService defines the use-case operations on tasks.
type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput, actor domain.Actor) (*CreateTaskResult, error)
	List(ctx context.Context, input ListTasksInput, actor domain.Actor) ([]*domain.Task, error)
	Get(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error)
	Update(ctx context.Context, id string, input UpdateTaskInput, actor domain.Actor) (*domain.Task, error)
	Delete(ctx context.Context, id string, actor domain.Actor) error
}
