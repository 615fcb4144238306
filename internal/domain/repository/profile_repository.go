package repository

import (
	"context"

	"healgenie-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.Profile) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Profile, error)
	Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error)
	SearchPatients(ctx context.Context, db *gorm.DB, filter entity.PatientSearchFilter) ([]entity.PatientSearchResult, error)
}
