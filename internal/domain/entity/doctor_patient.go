package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorPatient links a doctor to a patient they have seen.
type DoctorPatient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"patient_id"`
	LastVisit *time.Time `gorm:"type:date" json:"last_visit"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (DoctorPatient) TableName() string {
	return "doctor_patients"
}

// PatientSearchFilter is a domain-level filter for patient search.
type PatientSearchFilter struct {
	DoctorID uuid.UUID // linked doctor, used for last_visit
	Query    string    // matched against first/last name (ILIKE) or exact id
	Limit    int
}

// PatientSearchResult is one row of a patient search.
type PatientSearchResult struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Age       int        `json:"age"`
	LastVisit *time.Time `json:"last_visit"`
}
