package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorProfile represents doctor-specific profile data
type DoctorProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Designation string    `gorm:"type:varchar(100);not null" json:"designation"`
	Specialty   string    `gorm:"type:varchar(100);not null;index" json:"specialty"`
	Experience  int       `gorm:"not null;default:0" json:"experience"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}
