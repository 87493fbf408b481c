package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultUserPageSize = 50
	MaxUserPageSize     = 100
	MaxBulkUsers        = 100
)

const (
	BulkActivate         = "activate"
	BulkDeactivate       = "deactivate"
	BulkDelete           = "delete"
	BulkUpdateRole       = "updateRole"
	BulkUpdateDepartment = "updateDepartment"
	BulkResetPassword    = "resetPassword"
)

// ProfileUpdate holds the fields a user may change on their own profile.
type ProfileUpdate struct {
	FirstName  *string
	LastName   *string
	Username   *string
	Department *models.Department
}

type CreateUserInput struct {
	Email      string
	Username   string
	FirstName  string
	LastName   string
	Department models.Department
	Role       models.Role
}

type AdminUserUpdate struct {
	ProfileUpdate
	Email    *string
	Role     *models.Role
	IsActive *bool
}

type BulkInput struct {
	Action     string
	UserIDs    []string
	Role       models.Role
	Department models.Department
}

type BulkItemResult struct {
	UserID            string `json:"userId"`
	Success           bool   `json:"success"`
	TemporaryPassword string `json:"temporaryPassword,omitempty"`
}

type BulkItemError struct {
	UserID string `json:"userId"`
	Error  string `json:"error"`
}

type BulkResult struct {
	Results []BulkItemResult
	Errors  []BulkItemError
}

type UserService interface {
	Profile(ctx context.Context, uid string) (*models.User, []models.Reservation, error)
	UpdateProfile(ctx context.Context, uid string, in ProfileUpdate) (*models.User, error)
	Deactivate(ctx context.Context, uid string) error

	ListUsers(ctx context.Context, f repository.UserFilter) ([]models.User, int64, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*models.User, string, error)
	UpdateUser(ctx context.Context, caller *Identity, uid string, in AdminUserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, caller *Identity, uid string) error
	Bulk(ctx context.Context, caller *Identity, in BulkInput) (*BulkResult, error)
}

type userService struct {
	users        repository.UserRepository
	reservations repository.ReservationRepository
}

func NewUserService(users repository.UserRepository, reservations repository.ReservationRepository) UserService {
	return &userService{users: users, reservations: reservations}
}

func (s *userService) Profile(ctx context.Context, uid string) (*models.User, []models.Reservation, error) {
	user, err := s.find(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	reservations, err := s.reservations.FindByUser(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	return user, reservations, nil
}

func (s *userService) UpdateProfile(ctx context.Context, uid string, in ProfileUpdate) (*models.User, error) {
	user, err := s.find(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(user, in); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Deactivate(ctx context.Context, uid string) error {
	user, err := s.find(ctx, uid)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.users.Save(ctx, user)
}

func (s *userService) ListUsers(ctx context.Context, f repository.UserFilter) ([]models.User, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultUserPageSize
	}
	if f.PageSize > MaxUserPageSize {
		f.PageSize = MaxUserPageSize
	}
	return s.users.List(ctx, f)
}

// CreateUser registers a user with a generated temporary password, returned
// once to the caller.
func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, "", invalidField("email", "is required")
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if !in.Role.Valid() {
		return nil, "", invalidField("role", "must be user or admin")
	}
	if in.Department != "" && !in.Department.Valid() {
		return nil, "", invalidField("department", "must be one of frontend, backend, mobile, qa")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	password := temporaryPassword()
	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	username := in.Username
	if username == "" {
		username = strings.Split(email, "@")[0]
	}

	user := &models.User{
		UID:           uuid.NewString(),
		Email:         email,
		Username:      username,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Department:    in.Department,
		Role:          in.Role,
		IsActive:      true,
		PasswordHash:  hash,
		PasswordReset: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}
	return user, password, nil
}

func (s *userService) UpdateUser(ctx context.Context, caller *Identity, uid string, in AdminUserUpdate) (*models.User, error) {
	user, err := s.find(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(user, in.ProfileUpdate); err != nil {
		return nil, err
	}
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if email == "" {
			return nil, invalidField("email", "must not be empty")
		}
		user.Email = email
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, invalidField("role", "must be user or admin")
		}
		if uid == caller.UID && *in.Role != models.RoleAdmin {
			return nil, ErrSelfAction
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		if uid == caller.UID && !*in.IsActive {
			return nil, ErrSelfAction
		}
		user.IsActive = *in.IsActive
	}

	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser soft-deletes a user. A user still holding pending or active
// reservations is refused.
func (s *userService) DeleteUser(ctx context.Context, caller *Identity, uid string) error {
	if uid == caller.UID {
		return ErrSelfAction
	}
	user, err := s.find(ctx, uid)
	if err != nil {
		return err
	}
	open, err := s.reservations.CountBlockingByUser(ctx, uid)
	if err != nil {
		return err
	}
	if open > 0 {
		return ErrUserHasReservations
	}
	user.IsActive = false
	return s.users.Save(ctx, user)
}

func (s *userService) Bulk(ctx context.Context, caller *Identity, in BulkInput) (*BulkResult, error) {
	if len(in.UserIDs) == 0 {
		return nil, invalidField("userIds", "must not be empty")
	}
	if len(in.UserIDs) > MaxBulkUsers {
		return nil, invalidField("userIds", fmt.Sprintf("at most %d users per request", MaxBulkUsers))
	}
	for _, id := range in.UserIDs {
		if id == caller.UID {
			return nil, ErrSelfAction
		}
	}

	var apply func(ctx context.Context, u *models.User) (string, error)
	switch in.Action {
	case BulkActivate:
		apply = func(_ context.Context, u *models.User) (string, error) {
			u.IsActive = true
			return "", nil
		}
	case BulkDeactivate:
		apply = func(_ context.Context, u *models.User) (string, error) {
			u.IsActive = false
			return "", nil
		}
	case BulkDelete:
		apply = func(ctx context.Context, u *models.User) (string, error) {
			open, err := s.reservations.CountBlockingByUser(ctx, u.UID)
			if err != nil {
				return "", err
			}
			if open > 0 {
				return "", ErrUserHasReservations
			}
			u.IsActive = false
			return "", nil
		}
	case BulkUpdateRole:
		if !in.Role.Valid() {
			return nil, invalidField("data.role", "must be user or admin")
		}
		apply = func(_ context.Context, u *models.User) (string, error) {
			u.Role = in.Role
			return "", nil
		}
	case BulkUpdateDepartment:
		if !in.Department.Valid() {
			return nil, invalidField("data.department", "must be one of frontend, backend, mobile, qa")
		}
		apply = func(_ context.Context, u *models.User) (string, error) {
			u.Department = in.Department
			return "", nil
		}
	case BulkResetPassword:
		apply = func(_ context.Context, u *models.User) (string, error) {
			password := temporaryPassword()
			hash, err := HashPassword(password)
			if err != nil {
				return "", err
			}
			u.PasswordHash = hash
			u.PasswordReset = true
			return password, nil
		}
	default:
		return nil, invalidField("action", "unsupported bulk action")
	}

	result := &BulkResult{Results: []BulkItemResult{}, Errors: []BulkItemError{}}
	for _, id := range in.UserIDs {
		user, err := s.find(ctx, id)
		if err == nil {
			var password string
			if password, err = apply(ctx, user); err == nil {
				err = s.users.Save(ctx, user)
			}
			if err == nil {
				result.Results = append(result.Results, BulkItemResult{UserID: id, Success: true, TemporaryPassword: password})
				continue
			}
		}
		result.Errors = append(result.Errors, BulkItemError{UserID: id, Error: err.Error()})
	}
	return result, nil
}

func (s *userService) find(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func applyProfile(u *models.User, in ProfileUpdate) error {
	if in.Department != nil {
		if !in.Department.Valid() {
			return invalidField("department", "must be one of frontend, backend, mobile, qa")
		}
		u.Department = *in.Department
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return invalidField("username", "must not be empty")
		}
		u.Username = name
	}
	return nil
}

func temporaryPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
