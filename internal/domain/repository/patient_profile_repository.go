package repository

import (
	"context"

	"healgenie-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.PatientProfile, error)
	Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error)
}
