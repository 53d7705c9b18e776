package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.PublicUser, error)
	Login(ctx context.Context, email, password string) (*domain.PublicUser, error)
}

// UserService exposes account administration to admins.
type UserService interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.PublicUser, error)
	Delete(ctx context.Context, id string, actor domain.Actor) error
}
