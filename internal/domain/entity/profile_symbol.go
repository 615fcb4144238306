package entity

import "time"

// ProfileSymbol is a decorative icon a profile may reference.
type ProfileSymbol struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	IconURL   string    `gorm:"type:text;not null" json:"icon_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ProfileSymbol) TableName() string {
	return "profile_symbols"
}
