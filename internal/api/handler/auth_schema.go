package handler

import "github.com/tasktracker/task-api/internal/core/domain"

type registerRequest struct {
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User  domain.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type meResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email,omitempty"`
	Role  domain.Role `json:"role"`
}
