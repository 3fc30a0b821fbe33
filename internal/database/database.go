package database

import (
	"errors"
	"log"

	"kosku/config"
	"kosku/internal/domain"
	"kosku/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		// TranslateError surfaces duplicate-key violations as
		// gorm.ErrDuplicatedKey; the booking code retry depends on it.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Room{},
		&models.Booking{},
		&models.Payment{},
		&models.LedgerEntry{},
	)
}

// SeedSuperadmin creates the initial SUPERADMIN account when none exists.
// Credentials come from the environment; an empty password skips the seed.
func SeedSuperadmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var existing models.User
	err := db.Where("role = ?", domain.RoleSuperadmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &models.User{
		Name:         "Superadmin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleSuperadmin,
	}
	if err := db.Create(u).Error; err != nil {
		return err
	}
	log.Printf("[database] seeded superadmin %s", email)
	return nil
}
