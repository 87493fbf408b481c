package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"gorm.io/gorm"
)

type UserFilter struct {
	Role       models.Role
	Department models.Department
	Search     string
	SortBy     string
	SortDesc   bool
	Page       int
	PageSize   int
}

// sortColumns whitelists the user list sort keys.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"email":       "email",
	"username":    "username",
	"lastLoginAt": "last_login_at",
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Save(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, uid string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, f UserFilter) ([]models.User, int64, error)
	TouchLogin(ctx context.Context, uid string, at time.Time) error
	Count(ctx context.Context) (total int64, active int64, err error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) Save(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepository) FindByID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.Role != "" {
			db = db.Where("role = ?", f.Role)
		}
		if f.Department != "" {
			db = db.Where("department = ?", f.Department)
		}
		if f.Search != "" {
			like := "%" + strings.ToLower(f.Search) + "%"
			db = db.Where(
				"LOWER(email) LIKE ? OR LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
				like, like, like, like,
			)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	order := column + " ASC"
	if f.SortDesc {
		order = column + " DESC"
	}

	var users []models.User
	err := r.db.WithContext(ctx).
		Scopes(filter).
		Order(order).
		Order("uid ASC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&users).Error
	return users, total, err
}

func (r *userRepository) TouchLogin(ctx context.Context, uid string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("uid = ?", uid).
		Update("last_login_at", at).Error
}

func (r *userRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, active int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}
