package model

import (
	"github.com/google/uuid"
)

// User represents a system user. Providers are users that can be booked.
type User struct {
	Base
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Provider     bool       `json:"provider" db:"provider"`
	AvatarID     *uuid.UUID `json:"avatar_id" db:"avatar_id"`
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Provider bool   `json:"provider"`
}

// UpdateUserRequest represents profile update parameters. Changing the
// password requires the old one and a matching confirmation.
type UpdateUserRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1"`
	Email           *string `json:"email" binding:"omitempty,email"`
	OldPassword     *string `json:"old_password" binding:"omitempty,min=6"`
	Password        *string `json:"password" binding:"omitempty,min=6"`
	ConfirmPassword *string `json:"confirm_password"`
	AvatarID        *string `json:"avatar_id" binding:"omitempty,uuid"`
}
