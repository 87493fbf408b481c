package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"gorm.io/gorm"
)

type StatusCount struct {
	Status models.ReservationStatus
	Count  int64
}

type ShiftCount struct {
	ShiftType models.ShiftType
	Count     int64
}

type SpaceUsage struct {
	SpaceID     string `json:"spaceId"`
	SpaceNumber int    `json:"spaceNumber"`
	Count       int64  `json:"count"`
}

type UserUsage struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Count  int64  `json:"count"`
}

// StatsRepository runs the aggregate queries behind the admin dashboard.
type StatsRepository interface {
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountByShift(ctx context.Context) ([]ShiftCount, error)
	CountWithDocuments(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	TopSpaces(ctx context.Context, limit int) ([]SpaceUsage, error)
	TopUsers(ctx context.Context, limit int) ([]UserUsage, error)
	Recent(ctx context.Context, limit int) ([]models.Reservation, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var out []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&out).Error
	return out, err
}

func (r *statsRepository) CountByShift(ctx context.Context) ([]ShiftCount, error) {
	var out []ShiftCount
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("shift_type, COUNT(*) AS count").
		Group("shift_type").
		Scan(&out).Error
	return out, err
}

func (r *statsRepository) CountWithDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("document_path <> ''").
		Count(&count).Error
	return count, err
}

func (r *statsRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *statsRepository) TopSpaces(ctx context.Context, limit int) ([]SpaceUsage, error) {
	var out []SpaceUsage
	err := r.db.WithContext(ctx).
		Table("reservations").
		Select("reservations.space_id AS space_id, parking_spaces.space_number AS space_number, COUNT(*) AS count").
		Joins("JOIN parking_spaces ON parking_spaces.id = reservations.space_id").
		Where("reservations.status = ?", models.StatusActive).
		Group("reservations.space_id, parking_spaces.space_number").
		Order("count DESC, space_number ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *statsRepository) TopUsers(ctx context.Context, limit int) ([]UserUsage, error) {
	var out []UserUsage
	err := r.db.WithContext(ctx).
		Table("reservations").
		Select("reservations.user_id AS user_id, users.email AS email, COUNT(*) AS count").
		Joins("JOIN users ON users.uid = reservations.user_id").
		Group("reservations.user_id, users.email").
		Order("count DESC, email ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *statsRepository) Recent(ctx context.Context, limit int) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Space").
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
