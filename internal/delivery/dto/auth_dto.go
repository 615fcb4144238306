package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// SignUpRequest carries credentials plus the opaque metadata the backend
// materializes into profile rows.
type SignUpRequest struct {
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Data     SignUpMetadata `json:"data" validate:"required"`
}

type SignUpMetadata struct {
	FirstName   string   `json:"first_name" validate:"required"`
	LastName    string   `json:"last_name" validate:"required"`
	Phone       string   `json:"phone,omitempty" validate:"omitempty,max=20"`
	UserType    string   `json:"user_type" validate:"required,oneof=doctor patient"`
	Designation string   `json:"designation,omitempty" validate:"required_if=UserType doctor"`
	Specialty   string   `json:"specialty,omitempty" validate:"required_if=UserType doctor"`
	Experience  *int     `json:"experience,omitempty" validate:"omitempty,gte=0"`
	DateOfBirth string   `json:"date_of_birth,omitempty" validate:"required_if=UserType patient,omitempty,datetime=2006-01-02"`
	Age         *int     `json:"age,omitempty" validate:"omitempty,gte=0"`
	Allergies   []string `json:"allergies,omitempty"`
}

type PasswordGrantRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Response DTOs

type SessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID           uuid.UUID              `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}
