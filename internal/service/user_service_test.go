package service

import (
	"context"
	"testing"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserFixture(t *testing.T) (*fixture, UserService) {
	t.Helper()
	f := newFixture(t)
	return f, NewUserService(repository.NewUserRepository(f.db), f.repo)
}

func strPtr(s string) *string { return &s }

func TestProfile(t *testing.T) {
	f, svc := newUserFixture(t)
	ctx := context.Background()
	f.insertReservation(t, "r1", "space-3", "2026-03-10", "2026-03-10", models.ShiftMorning, models.StatusPending)

	user, reservations, err := svc.Profile(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)
	assert.Len(t, reservations, 1)

	_, _, err = svc.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	_, svc := newUserFixture(t)
	ctx := context.Background()

	dept := models.DeptBackend
	user, err := svc.UpdateProfile(ctx, "owner", ProfileUpdate{FirstName: strPtr("  Ann "), Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.FirstName)
	assert.Equal(t, models.DeptBackend, user.Department)

	bad := models.Department("sales")
	_, err = svc.UpdateProfile(ctx, "owner", ProfileUpdate{Department: &bad})
	assert.True(t, IsValidation(err))

	_, err = svc.UpdateProfile(ctx, "owner", ProfileUpdate{Username: strPtr("  ")})
	assert.True(t, IsValidation(err))
}

func TestDeactivateSelf(t *testing.T) {
	f, svc := newUserFixture(t)
	require.NoError(t, svc.Deactivate(context.Background(), "other"))

	var u models.User
	require.NoError(t, f.db.First(&u, "uid = ?", "other").Error)
	assert.False(t, u.IsActive)
}

func TestCreateUser(t *testing.T) {
	_, svc := newUserFixture(t)
	ctx := context.Background()

	user, password, err := svc.CreateUser(ctx, CreateUserInput{Email: " New.Hire@Example.com ", Department: models.DeptQA})
	require.NoError(t, err)
	assert.Equal(t, "new.hire@example.com", user.Email)
	assert.Equal(t, "new.hire", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.True(t, user.PasswordReset)
	assert.Len(t, password, 16)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)))

	_, _, err = svc.CreateUser(ctx, CreateUserInput{Email: "NEW.HIRE@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = svc.CreateUser(ctx, CreateUserInput{Email: "x@example.com", Role: "root"})
	assert.True(t, IsValidation(err))

	_, _, err = svc.CreateUser(ctx, CreateUserInput{})
	assert.True(t, IsValidation(err))
}

func TestUpdateUser_SelfGuards(t *testing.T) {
	f, svc := newUserFixture(t)
	ctx := context.Background()

	demote := models.RoleUser
	_, err := svc.UpdateUser(ctx, f.admin, "boss", AdminUserUpdate{Role: &demote})
	assert.ErrorIs(t, err, ErrSelfAction)

	off := false
	_, err = svc.UpdateUser(ctx, f.admin, "boss", AdminUserUpdate{IsActive: &off})
	assert.ErrorIs(t, err, ErrSelfAction)

	promote := models.RoleAdmin
	user, err := svc.UpdateUser(ctx, f.admin, "other", AdminUserUpdate{Role: &promote, IsActive: &off})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.False(t, user.IsActive)

	_, err = svc.UpdateUser(ctx, f.admin, "other", AdminUserUpdate{Email: strPtr("owner@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestDeleteUser(t *testing.T) {
	f, svc := newUserFixture(t)
	ctx := context.Background()
	f.insertReservation(t, "r1", "space-3", "2026-03-10", "2026-03-10", models.ShiftMorning, models.StatusActive)

	assert.ErrorIs(t, svc.DeleteUser(ctx, f.admin, "boss"), ErrSelfAction)
	assert.ErrorIs(t, svc.DeleteUser(ctx, f.admin, "owner"), ErrUserHasReservations)
	assert.ErrorIs(t, svc.DeleteUser(ctx, f.admin, "ghost"), ErrUserNotFound)
	require.NoError(t, svc.DeleteUser(ctx, f.admin, "other"))
}

func TestBulk(t *testing.T) {
	f, svc := newUserFixture(t)
	ctx := context.Background()
	f.insertReservation(t, "r1", "space-3", "2026-03-10", "2026-03-10", models.ShiftMorning, models.StatusPending)

	_, err := svc.Bulk(ctx, f.admin, BulkInput{Action: BulkDeactivate, UserIDs: []string{"other", "boss"}})
	assert.ErrorIs(t, err, ErrSelfAction)

	_, err = svc.Bulk(ctx, f.admin, BulkInput{Action: "explode", UserIDs: []string{"other"}})
	assert.True(t, IsValidation(err))

	_, err = svc.Bulk(ctx, f.admin, BulkInput{Action: BulkUpdateRole, UserIDs: []string{"other"}, Role: "root"})
	assert.True(t, IsValidation(err))

	result, err := svc.Bulk(ctx, f.admin, BulkInput{Action: BulkDelete, UserIDs: []string{"owner", "other", "ghost"}})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "other", result.Results[0].UserID)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, BulkItemError{UserID: "owner", Error: ErrUserHasReservations.Error()}, result.Errors[0])
	assert.Equal(t, BulkItemError{UserID: "ghost", Error: ErrUserNotFound.Error()}, result.Errors[1])

	reset, err := svc.Bulk(ctx, f.admin, BulkInput{Action: BulkResetPassword, UserIDs: []string{"owner"}})
	require.NoError(t, err)
	require.Len(t, reset.Results, 1)
	assert.Len(t, reset.Results[0].TemporaryPassword, 16)

	dept, err := svc.Bulk(ctx, f.admin, BulkInput{Action: BulkUpdateDepartment, UserIDs: []string{"owner", "other"}, Department: models.DeptMobile})
	require.NoError(t, err)
	assert.Len(t, dept.Results, 2)
	assert.Empty(t, dept.Errors)
}

func TestListUsers_ClampsPaging(t *testing.T) {
	_, svc := newUserFixture(t)

	users, total, err := svc.ListUsers(context.Background(), repository.UserFilter{PageSize: 1000, Role: models.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)
}
