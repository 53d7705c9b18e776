// Package authz holds the role and ownership rules for tasks and accounts.
//
// Every function here is a pure decision over the actor and the records it is
// given. None of them touch a store, so the services call them before and
// after their repository calls and tests can cover every combination directly.
package authz

import "github.com/tasktracker/task-api/internal/core/domain"

// Scope restricts which tasks a query may return.
type Scope struct {
	// OwnerID limits the query to one owner. Empty means every owner.
	OwnerID string
}

// Unrestricted reports whether the scope spans all owners.
func (s Scope) Unrestricted() bool {
	return s.OwnerID == ""
}

// Visibility is the base predicate for reads: admins see everything, anyone
// else sees only their own tasks.
func Visibility(actor domain.Actor) Scope {
	if actor.IsAdmin() {
		return Scope{}
	}
	return Scope{OwnerID: actor.ID}
}

// ListScope narrows Visibility with the owner requested by the caller. Only
// admins may pick an owner; for everyone else the request is ignored and the
// scope stays on the actor.
func ListScope(actor domain.Actor, requestedOwnerID string) Scope {
	scope := Visibility(actor)
	if actor.IsAdmin() && requestedOwnerID != "" {
		scope.OwnerID = requestedOwnerID
	}
	return scope
}

// Target is the owner a new task will be created for.
type Target struct {
	OwnerID string
	// MustExist is set when OwnerID came from the request rather than the
	// token. A missing owner is then the request's fault, not the caller's.
	MustExist bool
}

// CreationTarget decides the owner of a new task. Admins may create on behalf
// of another user; any owner supplied by a non-admin is ignored.
func CreationTarget(actor domain.Actor, requestedOwnerID string) Target {
	if actor.IsAdmin() && requestedOwnerID != "" && requestedOwnerID != actor.ID {
		return Target{OwnerID: requestedOwnerID, MustExist: true}
	}
	return Target{OwnerID: actor.ID}
}

// CanAccess reports whether actor may read or mutate task.
func CanAccess(actor domain.Actor, task *domain.Task) bool {
	if task == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.ID != "" && task.UserID == actor.ID
}

// CanManageUsers reports whether actor may list or remove accounts.
func CanManageUsers(actor domain.Actor) bool {
	return actor.IsAdmin()
}
