package repository

import (
	"context"
	"errors"

	"healgenie-portal/internal/domain/entity"
	domainRepo "healgenie-portal/internal/domain/repository"

	"gorm.io/gorm"
)

type profileSymbolRepository struct{}

func NewProfileSymbolRepository() domainRepo.ProfileSymbolRepository {
	return &profileSymbolRepository{}
}

func (r *profileSymbolRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.ProfileSymbol, error) {
	var symbol entity.ProfileSymbol
	err := db.WithContext(ctx).Where("id = ?", id).First(&symbol).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &symbol, nil
}

func (r *profileSymbolRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.ProfileSymbol, error) {
	var symbols []entity.ProfileSymbol
	err := db.WithContext(ctx).Order("id").Find(&symbols).Error
	if err != nil {
		return nil, err
	}
	return symbols, nil
}
