package database

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/model"
)

// DefaultAdmin defines the bootstrap administrator credentials
type DefaultAdmin struct {
	FullName string
	Email    string
	Password string
	Phone    string
}

// GetDefaultAdmin returns the bootstrap administrator
func GetDefaultAdmin() DefaultAdmin {
	return DefaultAdmin{
		FullName: "System Administrator",
		Email:    "admin@farm.local",
		Password: "Admin@123", // Change this in production!
		Phone:    "+94112345678",
	}
}

// Seed creates initial data for the database
func Seed(db *gorm.DB) error {
	return SeedAdministrator(db)
}

// SeedAdministrator creates the bootstrap administrator if no
// administrator account exists yet. Without one, the admin console and
// the final-administrator delete guard would be unreachable.
func SeedAdministrator(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("role = ?", constants.RoleAdministrator).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := GetDefaultAdmin()
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Create(&model.User{
		FullName:      admin.FullName,
		Phone:         admin.Phone,
		Email:         admin.Email,
		Password:      string(hash),
		Role:          constants.RoleAdministrator,
		EmailVerified: true,
		IsActive:      true,
	}).Error
}
