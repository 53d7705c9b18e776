package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// TaskFilter carries the query for listing tasks.
// OwnerID is always decided by the service layer from the authorization scope.
type TaskFilter struct {
	OwnerID string            // empty = every owner (admin); non-empty = scoped to owner
	Status  domain.TaskStatus // optional exact match
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	// FindByID retrieves a task by id. When ownerID is non-empty the lookup is
	// additionally restricted to that owner, so a foreign task reads as
	// domain.ErrTaskNotFound.
	FindByID(ctx context.Context, id string, ownerID string) (*domain.Task, error)
	// List returns matching tasks, most recently created first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	// Update overwrites the mutable fields (title, description, status,
	// updated_at) of an existing task.
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// DeleteByOwner removes every task owned by ownerID and reports how many went.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
