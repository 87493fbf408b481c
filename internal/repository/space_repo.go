package repository

import (
	"context"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SpaceRepository interface {
	FindAll(ctx context.Context) ([]models.ParkingSpace, error)
	FindByID(ctx context.Context, id string) (*models.ParkingSpace, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ParkingSpace, error)
	Count(ctx context.Context) (int64, error)
}

type spaceRepository struct {
	db *gorm.DB
}

func NewSpaceRepository(db *gorm.DB) SpaceRepository {
	return &spaceRepository{db: db}
}

func (r *spaceRepository) FindAll(ctx context.Context) ([]models.ParkingSpace, error) {
	var spaces []models.ParkingSpace
	if err := r.db.WithContext(ctx).Order("space_number ASC").Find(&spaces).Error; err != nil {
		return nil, err
	}
	return spaces, nil
}

func (r *spaceRepository) FindByID(ctx context.Context, id string) (*models.ParkingSpace, error) {
	var space models.ParkingSpace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// FindByIDForUpdate locks the space row, serializing reservation writes per space.
func (r *spaceRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ParkingSpace, error) {
	var space models.ParkingSpace
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

func (r *spaceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ParkingSpace{}).Count(&count).Error
	return count, err
}
