package repository

import (
	"kosku/internal/models"

	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *RoomRepository) GetByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.Preload("Property").First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *RoomRepository) Update(room *models.Room) error {
	return r.db.Save(room).Error
}

func (r *RoomRepository) Delete(id uint) error {
	return r.db.Delete(&models.Room{}, id).Error
}

func (r *RoomRepository) ListByProperty(propertyID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Where("property_id = ?", propertyID).Order("number").Find(&rooms).Error
	return rooms, err
}

// ListAvailable lists rooms open for booking, optionally filtered by city.
func (r *RoomRepository) ListAvailable(city string) ([]models.Room, error) {
	var rooms []models.Room
	q := r.db.Joins("JOIN properties ON properties.id = rooms.property_id").
		Where("rooms.available = ?", true)
	if city != "" {
		q = q.Where("properties.city = ?", city)
	}
	err := q.Preload("Property").Order("rooms.monthly_price").Find(&rooms).Error
	return rooms, err
}

func (r *RoomRepository) CountByProperty(propertyID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Room{}).Where("property_id = ?", propertyID).Count(&n).Error
	return n, err
}
