package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prescription is issued by a doctor to a patient.
type Prescription struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"patient_id"`
	Disease      *string     `gorm:"type:text" json:"disease"`
	Symptoms     StringArray `gorm:"type:text[]" json:"symptoms"`
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`
	SpecialNotes *string     `gorm:"type:text" json:"special_notes"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Medicines []PrescriptionMedicine `gorm:"foreignKey:PrescriptionID" json:"medicines,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

// PrescriptionMedicine is one line of a prescription.
type PrescriptionMedicine struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PrescriptionID uuid.UUID           `gorm:"type:uuid;not null;index" json:"prescription_id"`
	Name           string              `gorm:"type:varchar(255);not null" json:"name"`
	Timing         string              `gorm:"type:varchar(100);not null" json:"timing"`
	Price          decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"price"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (PrescriptionMedicine) TableName() string {
	return "prescription_medicines"
}
