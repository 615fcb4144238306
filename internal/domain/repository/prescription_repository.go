package repository

import (
	"context"

	"healgenie-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrescriptionRepository interface {
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Prescription, error)
}

type DoctorPatientRepository interface {
	FindLink(ctx context.Context, db *gorm.DB, doctorID, patientID uuid.UUID) (*entity.DoctorPatient, error)
}
