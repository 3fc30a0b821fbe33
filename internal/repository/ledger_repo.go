package repository

import (
	"kosku/internal/models"

	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Create(e *models.LedgerEntry) error {
	return r.db.Create(e).Error
}

func (r *LedgerRepository) ListByProperty(propertyID uint) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.Where("property_id = ?", propertyID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}
