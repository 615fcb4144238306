package entity

import "github.com/google/uuid"

// Principal is the authenticated caller of a record operation.
type Principal struct {
	UserID   uuid.UUID
	UserType UserType
}

// Owns reports whether the principal is the owner of the row keyed by id.
func (p Principal) Owns(id uuid.UUID) bool {
	return p.UserID != uuid.Nil && p.UserID == id
}

func (p Principal) IsDoctor() bool {
	return p.UserType == UserTypeDoctor
}
