package database

import (
	"fmt"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SpaceCount is the number of spaces seeded on an empty database.
const SpaceCount = 20

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.ParkingSpace{},
		&models.Reservation{},
		&models.SlotClaim{},
	); err != nil {
		return err
	}

	// Partial index: the document sweep only scans reservations holding a file
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservation_document
		ON reservations (document_path)
		WHERE document_path <> ''
	`).Error
}

// SeedSpaces inserts the fixed space inventory, leaving existing rows alone.
func SeedSpaces(db *gorm.DB) error {
	spaces := make([]models.ParkingSpace, 0, SpaceCount)
	for n := 1; n <= SpaceCount; n++ {
		spaces = append(spaces, models.ParkingSpace{
			ID:          fmt.Sprintf("space-%d", n),
			SpaceNumber: n,
			Type:        spaceTypeFor(n),
			Location:    fmt.Sprintf("Level %d", (n-1)/10+1),
		})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&spaces).Error
}

func spaceTypeFor(n int) models.SpaceType {
	switch {
	case n <= 2:
		return models.SpaceDisabled
	case n <= 4:
		return models.SpaceElectric
	default:
		return models.SpaceStandard
	}
}

// SeedAdmin creates the bootstrap administrator unless the email is taken.
func SeedAdmin(db *gorm.DB, uid, email, passwordHash string) error {
	admin := models.User{
		UID:          uid,
		Email:        email,
		Username:     "admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
		PasswordHash: passwordHash,
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&admin).Error
}
