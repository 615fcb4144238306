package repository

import (
	"context"
	"errors"

	"healgenie-portal/internal/domain/entity"
	domainRepo "healgenie-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type prescriptionRepository struct{}

func NewPrescriptionRepository() domainRepo.PrescriptionRepository {
	return &prescriptionRepository{}
}

func (r *prescriptionRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Prescription, error) {
	var prescriptions []entity.Prescription
	err := db.WithContext(ctx).
		Preload("Medicines").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&prescriptions).Error
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}

type doctorPatientRepository struct{}

func NewDoctorPatientRepository() domainRepo.DoctorPatientRepository {
	return &doctorPatientRepository{}
}

func (r *doctorPatientRepository) FindLink(ctx context.Context, db *gorm.DB, doctorID, patientID uuid.UUID) (*entity.DoctorPatient, error) {
	var link entity.DoctorPatient
	err := db.WithContext(ctx).Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}
