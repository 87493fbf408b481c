package repository

import (
	"context"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationFilter struct {
	Status   models.ReservationStatus
	UserID   string
	SpaceID  string
	Page     int
	PageSize int
}

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *models.Reservation) error
	Save(ctx context.Context, tx *gorm.DB, r *models.Reservation) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Reservation, error)
	FindOverlapping(ctx context.Context, tx *gorm.DB, spaceID string, period models.DateRange, excludeID string) ([]models.Reservation, error)
	FindBlockingOnDate(ctx context.Context, day models.Date) ([]models.Reservation, error)
	FindByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	List(ctx context.Context, f ReservationFilter) ([]models.Reservation, int64, error)
	CountBlockingByUser(ctx context.Context, userID string) (int64, error)
	ClaimSlots(ctx context.Context, tx *gorm.DB, r *models.Reservation) error
	ReleaseSlots(ctx context.Context, tx *gorm.DB, reservationID string) error
	DocumentPaths(ctx context.Context) ([]string, error)
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(res).Error
}

func (r *reservationRepository) Save(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Save(res).Error
}

func (r *reservationRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return tx.WithContext(ctx).Where("id = ?", id).Delete(&models.Reservation{}).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Space").
		Where("id = ?", id).
		First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// FindByIDForUpdate acquires a row-level lock on the reservation within the given transaction.
func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// FindOverlapping returns blocking reservations on the space whose dates
// intersect the period. Shift overlap is left to the caller.
func (r *reservationRepository) FindOverlapping(ctx context.Context, tx *gorm.DB, spaceID string, period models.DateRange, excludeID string) ([]models.Reservation, error) {
	var out []models.Reservation
	q := tx.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Where("status IN ?", []models.ReservationStatus{models.StatusPending, models.StatusActive}).
		Where("start_date <= ? AND end_date >= ?", period.End, period.Start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("start_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reservationRepository) FindBlockingOnDate(ctx context.Context, day models.Date) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.ReservationStatus{models.StatusPending, models.StatusActive}).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Find(&out).Error
	return out, err
}

func (r *reservationRepository) FindByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Space").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *reservationRepository) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.UserID != "" {
			db = db.Where("user_id = ?", f.UserID)
		}
		if f.SpaceID != "" {
			db = db.Where("space_id = ?", f.SpaceID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Reservation{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Reservation
	err := r.db.WithContext(ctx).
		Scopes(filter).
		Preload("User").
		Preload("Space").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&out).Error
	return out, total, err
}

func (r *reservationRepository) CountBlockingByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("user_id = ? AND status IN ?", userID, []models.ReservationStatus{models.StatusPending, models.StatusActive}).
		Count(&count).Error
	return count, err
}

// ClaimSlots inserts one claim per (space, day, half) held by the reservation.
// A concurrent holder of any of them makes this fail with gorm.ErrDuplicatedKey.
func (r *reservationRepository) ClaimSlots(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	claims := models.ClaimsFor(res)
	if len(claims) == 0 {
		return nil
	}
	return tx.WithContext(ctx).CreateInBatches(claims, 200).Error
}

func (r *reservationRepository) ReleaseSlots(ctx context.Context, tx *gorm.DB, reservationID string) error {
	return tx.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Delete(&models.SlotClaim{}).Error
}

func (r *reservationRepository) DocumentPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("document_path <> ''").
		Pluck("document_path", &paths).Error
	return paths, err
}
