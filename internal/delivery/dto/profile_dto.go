package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	ID              uuid.UUID `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           *string   `json:"phone"`
	UserType        string    `json:"user_type"`
	ProfileSymbolID *int      `json:"profile_symbol_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	FirstName       *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName        *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	ProfileSymbolID *int    `json:"profile_symbol_id,omitempty" validate:"omitempty,gt=0"`
}

type ProfileSymbolResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
}

type ProfileSymbolListResponse struct {
	Symbols []ProfileSymbolResponse `json:"symbols"`
	Total   int                     `json:"total"`
}
