package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/core/authz"
	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

// UserService implements account administration for admins.
type UserService struct {
	users  ports.UserRepository
	tasks  ports.TaskRepository
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, tasks ports.TaskRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, tasks: tasks, logger: logger}
}

// List returns every account without credentials.
func (s *UserService) List(ctx context.Context, actor domain.Actor) ([]domain.PublicUser, error) {
	if !authz.CanManageUsers(actor) {
		return nil, domain.ErrForbidden
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// Delete removes an account together with all tasks it owns. Tasks go first so
// a failure part way never leaves tasks pointing at a missing owner.
func (s *UserService) Delete(ctx context.Context, id string, actor domain.Actor) error {
	if !authz.CanManageUsers(actor) {
		return domain.ErrForbidden
	}
	if id == actor.ID {
		return domain.ErrSelfDeletion
	}

	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	removed, err := s.tasks.DeleteByOwner(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete tasks of user")
		return fmt.Errorf("delete user: delete tasks: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info().
		Str("user_id", id).
		Str("actor_id", actor.ID).
		Int64("tasks_removed", removed).
		Msg("user deleted")
	return nil
}

var _ ports.UserService = (*UserService)(nil)
