package repository

import (
	"context"
	"errors"
	"strings"

	"healgenie-portal/internal/domain/entity"
	domainRepo "healgenie-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultSearchLimit = 20

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into an ILIKE pattern matching it literally.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

type profileRepository struct{}

func NewProfileRepository() domainRepo.ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) Create(ctx context.Context, db *gorm.DB, profile *entity.Profile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	err := db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Profile{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// SearchPatients matches patients by name fragment, or by exact id when the query parses as one.
func (r *profileRepository) SearchPatients(ctx context.Context, db *gorm.DB, filter entity.PatientSearchFilter) ([]entity.PatientSearchResult, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	query := db.WithContext(ctx).
		Table("profiles").
		Select(`profiles.id, profiles.first_name, profiles.last_name,
			COALESCE(patient_profiles.age, 0) AS age,
			doctor_patients.last_visit`).
		Joins("LEFT JOIN patient_profiles ON patient_profiles.id = profiles.id").
		Joins("LEFT JOIN doctor_patients ON doctor_patients.patient_id = profiles.id AND doctor_patients.doctor_id = ?", filter.DoctorID).
		Where("profiles.user_type = ?", entity.UserTypePatient)

	q := strings.TrimSpace(filter.Query)
	if id, err := uuid.Parse(q); err == nil {
		query = query.Where("profiles.id = ?", id)
	} else {
		query = query.Where(`(profiles.first_name || ' ' || profiles.last_name) ILIKE ? ESCAPE '\'`, containsPattern(q))
	}

	var results []entity.PatientSearchResult
	err := query.Order("profiles.last_name, profiles.first_name").Limit(limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
