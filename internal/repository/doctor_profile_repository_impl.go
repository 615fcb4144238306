package repository

import (
	"context"
	"errors"

	"healgenie-portal/internal/domain/entity"
	domainRepo "healgenie-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *doctorProfileRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.DoctorProfile{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}
