package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile represents patient-specific profile data
type PatientProfile struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	DateOfBirth    time.Time   `gorm:"type:date;not null" json:"date_of_birth"`
	Age            int         `gorm:"not null;default:0" json:"age"`
	Allergies      StringArray `gorm:"type:text[]" json:"allergies"`
	MedicalHistory *string     `gorm:"type:text" json:"medical_history"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// AgeAt returns the completed years between DateOfBirth and now.
func (p *PatientProfile) AgeAt(now time.Time) int {
	if p.DateOfBirth.IsZero() {
		return 0
	}
	years := now.Year() - p.DateOfBirth.Year()
	if now.YearDay() < p.DateOfBirth.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
