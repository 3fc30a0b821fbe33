package repository

import (
	"kosku/internal/models"

	"gorm.io/gorm"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(p *models.Property) error {
	return r.db.Create(p).Error
}

func (r *PropertyRepository) GetByID(id uint) (*models.Property, error) {
	var p models.Property
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PropertyRepository) Update(p *models.Property) error {
	return r.db.Save(p).Error
}

func (r *PropertyRepository) Delete(id uint) error {
	return r.db.Delete(&models.Property{}, id).Error
}

func (r *PropertyRepository) ListByOwner(ownerID uint) ([]models.Property, error) {
	var props []models.Property
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&props).Error
	return props, err
}

func (r *PropertyRepository) ListAll() ([]models.Property, error) {
	var props []models.Property
	err := r.db.Order("created_at DESC").Find(&props).Error
	return props, err
}
