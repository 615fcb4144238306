package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the record shared by every user type, keyed by the user id.
type Profile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName       string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName        string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Phone           *string   `gorm:"type:varchar(20)" json:"phone"`
	UserType        UserType  `gorm:"type:varchar(16);not null;index" json:"user_type"`
	ProfileSymbolID *int      `gorm:"index" json:"profile_symbol_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	ProfileSymbol *ProfileSymbol `gorm:"foreignKey:ProfileSymbolID" json:"profile_symbol,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

// FullName joins first and last name.
func (p *Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
