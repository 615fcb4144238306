package repository

import (
	"context"

	"healgenie-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error)
	Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error)
}
