package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tasktracker/task-api/internal/core/domain"
)

func newUserFixture() (*UserService, *stubUserRepo, *stubTaskRepo) {
	users := newStubUserRepo()
	tasks := newStubTaskRepo()
	users.seed(adminActor.ID, "admin@example.com", domain.RoleAdmin)
	users.seed(u1.ID, "u1@example.com", domain.RoleUser)
	users.seed(u2.ID, "u2@example.com", domain.RoleUser)
	return NewUserService(users, tasks, discardLogger), users, tasks
}

func TestUserService_List(t *testing.T) {
	svc, _, _ := newUserFixture()

	got, err := svc.List(context.Background(), adminActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 users, got %d", len(got))
	}
	if got[0].Email != "admin@example.com" || got[0].Role != domain.RoleAdmin {
		t.Errorf("unexpected first user: %+v", got[0])
	}
}

func TestUserService_List_ForbiddenForUser(t *testing.T) {
	svc, _, _ := newUserFixture()

	if _, err := svc.List(context.Background(), u1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_Delete_CascadesTasks(t *testing.T) {
	svc, users, tasks := newUserFixture()
	now := time.Now().UTC()
	seedTask(tasks, "a1", u1.ID, domain.StatusPending, now)
	seedTask(tasks, "a2", u1.ID, domain.StatusCompleted, now)
	seedTask(tasks, "b1", u2.ID, domain.StatusPending, now)

	if err := svc.Delete(context.Background(), u1.ID, adminActor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := users.users[u1.ID]; ok {
		t.Error("user still stored")
	}
	if len(tasks.byID) != 1 || tasks.byID["b1"] == nil {
		t.Errorf("only u1's tasks must be removed, remaining: %v", len(tasks.byID))
	}
}

func TestUserService_Delete_Rules(t *testing.T) {
	cases := []struct {
		name    string
		actor   domain.Actor
		target  string
		wantErr error
	}{
		{"non-admin", u1, u2.ID, domain.ErrForbidden},
		{"self", adminActor, adminActor.ID, domain.ErrSelfDeletion},
		{"unknown user", adminActor, "nobody", domain.ErrUserNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, users, _ := newUserFixture()
			before := len(users.users)

			err := svc.Delete(context.Background(), tc.target, tc.actor)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if len(users.users) != before {
				t.Error("rejected delete must not remove anyone")
			}
		})
	}
}
