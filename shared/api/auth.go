package api

import "github.com/microsmart/portal/shared/domain"

// Request DTOs

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"required,max=64"`
	LastName    string `json:"last_name" validate:"required,max=64"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest only sends the fields that were filled in.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=64"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=64"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// Response DTOs

type RegisterResponse struct {
	Message string        `json:"message"`
	UserId  domain.UserId `json:"user_id"`
}

// UserResponse is returned by login, GET /auth/user and PUT /auth/user.
type UserResponse struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the backend error envelope. Either field may be set.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e ErrorResponse) Text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
