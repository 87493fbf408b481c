package models

import "time"

type SpaceType string

const (
	SpaceStandard SpaceType = "standard"
	SpaceDisabled SpaceType = "disabled"
	SpaceElectric SpaceType = "electric"
)

type ParkingSpace struct {
	ID          string    `gorm:"primaryKey;type:varchar(32)"`
	SpaceNumber int       `gorm:"not null;uniqueIndex"`
	Type        SpaceType `gorm:"type:varchar(16);not null"`
	Location    string    `gorm:"type:varchar(128)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
