package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/core/authz"
	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

// IdempotencyStore remembers which task an Idempotency-Key produced (Redis).
// Reserve is atomic: of several requests with the same key exactly one gets
// reserved=true. The others see the stored task id, or "" while the holder
// is still running.
type IdempotencyStore interface {
	Reserve(ctx context.Context, actorID, key string) (taskID string, reserved bool, err error)
	Reclaim(ctx context.Context, actorID, key, staleTaskID string) (bool, error)
	Complete(ctx context.Context, actorID, key, taskID string) error
	Release(ctx context.Context, actorID, key string) error
}

type TaskService struct {
	tasks  ports.TaskRepository
	users  ports.UserRepository
	idem   IdempotencyStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewTaskService wires the task use cases. idem may be nil, in which case
// Idempotency-Key is ignored.
func NewTaskService(tasks ports.TaskRepository, users ports.UserRepository, idem IdempotencyStore, logger zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		users:  users,
		idem:   idem,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Create stores a new task for the owner chosen by authz.CreationTarget.
func (s *TaskService) Create(ctx context.Context, input ports.CreateTaskInput, actor domain.Actor) (*ports.CreateTaskResult, error) {
	status := input.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("create task: %w: %q", domain.ErrInvalidStatus, status)
	}

	// The owner is confirmed even when it is the actor: a token outlives the
	// account it was issued for.
	target := authz.CreationTarget(actor, input.UserID)
	if _, err := s.users.FindByID(ctx, target.OwnerID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			if target.MustExist {
				return nil, domain.ErrTargetNotFound
			}
			return nil, domain.ErrAccountGone
		}
		return nil, fmt.Errorf("create task: find owner: %w", err)
	}

	reserved, replay, err := s.reserve(ctx, input.IdempotencyKey, actor)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return &ports.CreateTaskResult{Task: replay, AlreadyExisted: true}, nil
	}

	// v7 ids sort by creation time, which breaks created_at ties in List.
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("create task: new id: %w", err)
	}

	now := s.now()
	task := &domain.Task{
		ID:          id.String(),
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		UserID:      target.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error().Err(err).Str("owner_id", task.UserID).Msg("failed to create task")
		if reserved {
			if rerr := s.idem.Release(ctx, actor.ID, input.IdempotencyKey); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", input.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		return nil, fmt.Errorf("create task: %w", err)
	}

	if reserved {
		if err := s.idem.Complete(ctx, actor.ID, input.IdempotencyKey, task.ID); err != nil {
			s.logger.Warn().Err(err).Str("task_id", task.ID).Msg("failed to store idempotency key")
		}
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("owner_id", task.UserID).
		Str("actor_id", actor.ID).
		Msg("task created")

	return &ports.CreateTaskResult{Task: task}, nil
}

// reserve claims key for the actor before anything is written. It returns the
// task to replay when an earlier request with the same key already finished,
// and domain.ErrIdempotencyInProgress while that request is still running.
// Store failures degrade to a plain create.
func (s *TaskService) reserve(ctx context.Context, key string, actor domain.Actor) (bool, *domain.Task, error) {
	if s.idem == nil || key == "" {
		return false, nil, nil
	}

	taskID, reserved, err := s.idem.Reserve(ctx, actor.ID, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed, creating anyway")
		return false, nil, nil
	}
	if reserved {
		return true, nil, nil
	}
	if taskID == "" {
		return false, nil, domain.ErrIdempotencyInProgress
	}

	existing, err := s.Get(ctx, taskID, actor)
	if err == nil {
		s.logger.Info().Str("idempotency_key", key).Str("task_id", existing.ID).Msg("idempotent replay")
		return false, existing, nil
	}
	if !errors.Is(err, domain.ErrTaskNotFound) {
		return false, nil, fmt.Errorf("create task: replay: %w", err)
	}

	// The earlier task was deleted in the meantime; the key starts over.
	reclaimed, err := s.idem.Reclaim(ctx, actor.ID, key, taskID)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reclaim failed, creating anyway")
		return false, nil, nil
	}
	if !reclaimed {
		return false, nil, domain.ErrIdempotencyInProgress
	}
	return true, nil, nil
}

// List returns the tasks visible to actor, newest first.
func (s *TaskService) List(ctx context.Context, input ports.ListTasksInput, actor domain.Actor) ([]*domain.Task, error) {
	scope := authz.ListScope(actor, input.UserID)

	tasks, err := s.tasks.List(ctx, ports.TaskFilter{
		OwnerID: scope.OwnerID,
		Status:  input.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// Get returns a single task. A task the actor may not see is reported exactly
// like a missing one.
func (s *TaskService) Get(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	scope := authz.Visibility(actor)

	task, err := s.tasks.FindByID(ctx, id, scope.OwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if !authz.CanAccess(actor, task) {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// Update applies a partial update. Ownership is checked by Get and is not
// re-checked by the write, so a concurrent delete between the two calls
// surfaces as ErrTaskNotFound from the repository.
func (s *TaskService) Update(ctx context.Context, id string, input ports.UpdateTaskInput, actor domain.Actor) (*domain.Task, error) {
	task, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description.Set {
		task.Description = input.Description.Value
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("update task: %w: %q", domain.ErrInvalidStatus, *input.Status)
		}
		task.Status = *input.Status
	}
	task.UpdatedAt = s.now()

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		s.logger.Error().Err(err).Str("task_id", id).Msg("failed to update task")
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Info().Str("task_id", id).Str("actor_id", actor.ID).Msg("task updated")
	return task, nil
}

// Delete removes a task the actor can access.
func (s *TaskService) Delete(ctx context.Context, id string, actor domain.Actor) error {
	task, err := s.Get(ctx, id, actor)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.ErrTaskNotFound
		}
		s.logger.Error().Err(err).Str("task_id", id).Msg("failed to delete task")
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.Info().Str("task_id", id).Str("actor_id", actor.ID).Msg("task deleted")
	return nil
}

var _ ports.TaskService = (*TaskService)(nil)
