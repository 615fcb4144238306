package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PatientProfileResponse struct {
	ID             uuid.UUID `json:"id"`
	DateOfBirth    string    `json:"date_of_birth"` // Format: YYYY-MM-DD
	Age            int       `json:"age"`
	Allergies      []string  `json:"allergies"`
	MedicalHistory *string   `json:"medical_history"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UpdatePatientProfileRequest struct {
	Allergies      []string `json:"allergies,omitempty" validate:"omitempty,dive,min=1"`
	MedicalHistory *string  `json:"medical_history,omitempty"`
}

// Patient search

type PatientSearchItem struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Age       int        `json:"age"`
	LastVisit *time.Time `json:"last_visit"`
}

type PatientSearchResponse struct {
	Patients []PatientSearchItem `json:"patients"`
	Total    int                 `json:"total"`
}

// Patient record

type MedicineResponse struct {
	ID     uuid.UUID           `json:"id"`
	Name   string              `json:"name"`
	Timing string              `json:"timing"`
	Price  decimal.NullDecimal `json:"price"`
}

type PrescriptionResponse struct {
	ID           uuid.UUID          `json:"id"`
	DoctorID     uuid.UUID          `json:"doctor_id"`
	Disease      *string            `json:"disease"`
	Symptoms     []string           `json:"symptoms"`
	IsActive     bool               `json:"is_active"`
	SpecialNotes *string            `json:"special_notes"`
	Medicines    []MedicineResponse `json:"medicines"`
	CreatedAt    time.Time          `json:"created_at"`
}

type PatientRecordResponse struct {
	Profile       ProfileResponse        `json:"profile"`
	Patient       PatientProfileResponse `json:"patient"`
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	LastVisit     *time.Time             `json:"last_visit"`
}
