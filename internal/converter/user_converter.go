package converter

import (
	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/domain/entity"
)

func UserToResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		UserMetadata: map[string]interface{}(u.RawMetadata),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
