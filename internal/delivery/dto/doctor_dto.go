package dto

import (
	"time"

	"github.com/google/uuid"
)

type DoctorProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Designation string    `json:"designation"`
	Specialty   string    `json:"specialty"`
	Experience  int       `json:"experience"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdateDoctorProfileRequest struct {
	Designation *string `json:"designation,omitempty" validate:"omitempty,min=1,max=100"`
	Specialty   *string `json:"specialty,omitempty" validate:"omitempty,min=1,max=100"`
	Experience  *int    `json:"experience,omitempty" validate:"omitempty,gte=0"`
}
