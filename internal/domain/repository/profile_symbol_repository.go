package repository

import (
	"context"

	"healgenie-portal/internal/domain/entity"

	"gorm.io/gorm"
)

type ProfileSymbolRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.ProfileSymbol, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.ProfileSymbol, error)
}
