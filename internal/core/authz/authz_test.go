package authz

import (
	"testing"

	"github.com/tasktracker/task-api/internal/core/domain"
)

var (
	admin = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	alice = domain.Actor{ID: "user-alice", Role: domain.RoleUser}
	bob   = domain.Actor{ID: "user-bob", Role: domain.RoleUser}
)

func TestVisibility(t *testing.T) {
	if got := Visibility(admin); !got.Unrestricted() {
		t.Errorf("admin scope must be unrestricted, got %+v", got)
	}
	if got := Visibility(alice); got.OwnerID != alice.ID {
		t.Errorf("user scope: want owner %q, got %q", alice.ID, got.OwnerID)
	}
}

func TestVisibility_UnknownRoleIsScopedToSelf(t *testing.T) {
	ghost := domain.Actor{ID: "ghost", Role: "SUPERUSER"}
	if got := Visibility(ghost); got.OwnerID != "ghost" {
		t.Errorf("unknown role must not widen visibility, got %+v", got)
	}
}

func TestListScope(t *testing.T) {
	cases := []struct {
		name      string
		actor     domain.Actor
		requested string
		wantOwner string
	}{
		{"admin without owner sees all", admin, "", ""},
		{"admin narrows to owner", admin, bob.ID, bob.ID},
		{"admin narrows to self", admin, admin.ID, admin.ID},
		{"user without owner", alice, "", alice.ID},
		{"user asking for another owner is ignored", alice, bob.ID, alice.ID},
		{"user asking for self", alice, alice.ID, alice.ID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ListScope(tc.actor, tc.requested)
			if got.OwnerID != tc.wantOwner {
				t.Errorf("want owner %q, got %q", tc.wantOwner, got.OwnerID)
			}
		})
	}
}

func TestCreationTarget(t *testing.T) {
	cases := []struct {
		name      string
		actor     domain.Actor
		requested string
		want      Target
	}{
		{"admin for other user must verify", admin, bob.ID, Target{OwnerID: bob.ID, MustExist: true}},
		{"admin without owner owns it", admin, "", Target{OwnerID: admin.ID}},
		{"admin naming self skips lookup", admin, admin.ID, Target{OwnerID: admin.ID}},
		{"user without owner owns it", alice, "", Target{OwnerID: alice.ID}},
		{"user naming other owner is overridden", alice, bob.ID, Target{OwnerID: alice.ID}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CreationTarget(tc.actor, tc.requested); got != tc.want {
				t.Errorf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestCanAccess(t *testing.T) {
	aliceTask := &domain.Task{ID: "t1", UserID: alice.ID}
	bobTask := &domain.Task{ID: "t2", UserID: bob.ID}

	cases := []struct {
		name  string
		actor domain.Actor
		task  *domain.Task
		want  bool
	}{
		{"owner", alice, aliceTask, true},
		{"non-owner", alice, bobTask, false},
		{"other owner", bob, bobTask, true},
		{"admin on alice task", admin, aliceTask, true},
		{"admin on bob task", admin, bobTask, true},
		{"nil task", admin, nil, false},
		{"anonymous actor on unowned task", domain.Actor{Role: domain.RoleUser}, &domain.Task{ID: "t3"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAccess(tc.actor, tc.task); got != tc.want {
				t.Errorf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCanManageUsers(t *testing.T) {
	if !CanManageUsers(admin) {
		t.Error("admin must manage users")
	}
	if CanManageUsers(alice) {
		t.Error("user must not manage users")
	}
}
