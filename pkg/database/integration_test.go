//go:build integration

package database_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/repository"
	"github.com/Eursukkul/parking-reservation/internal/service"
	"github.com/Eursukkul/parking-reservation/pkg/blobstore"
	"github.com/Eursukkul/parking-reservation/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "parking_test_db"),
	)

	testDB = database.NewPostgresDB(dsn)
	code := m.Run()

	testDB.Exec("DROP TABLE IF EXISTS slot_claims, reservations, parking_spaces, users")
	os.Exit(code)
}

func cleanTables(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.Exec("DELETE FROM slot_claims").Error)
	require.NoError(t, testDB.Exec("DELETE FROM reservations").Error)
	require.NoError(t, testDB.Exec("DELETE FROM users").Error)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seedUsers(t *testing.T, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("user-%03d", i)
		require.NoError(t, testDB.Create(&models.User{
			UID:          ids[i],
			Email:        ids[i] + "@example.com",
			Username:     ids[i],
			Role:         models.RoleUser,
			IsActive:     true,
			PasswordHash: "x",
		}).Error)
	}
	return ids
}

func newReservationService() service.ReservationService {
	return service.NewReservationService(
		repository.NewReservationRepository(testDB),
		repository.NewSpaceRepository(testDB),
		service.NewDocumentService(blobstore.NewMemoryStore("integration")),
		service.NewPeriodPolicy(time.UTC, 0),
		nil,
	)
}

func nextWeek() models.Date {
	return models.DateOf(time.Now().UTC()).AddDays(7)
}

func TestSeedSpaces_Idempotent(t *testing.T) {
	require.NoError(t, database.SeedSpaces(testDB))

	var n int64
	require.NoError(t, testDB.Model(&models.ParkingSpace{}).Count(&n).Error)
	assert.Equal(t, int64(database.SpaceCount), n)
}

// Twenty users race for the same space and shift: exactly one wins.
func TestConcurrentDoubleBooking(t *testing.T) {
	cleanTables(t)
	users := seedUsers(t, 20)
	svc := newReservationService()
	day := nextWeek()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	wg.Add(len(users))
	for _, uid := range users {
		go func(uid string) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), service.CreateReservationInput{
				UserID:    uid,
				SpaceID:   "space-7",
				StartDate: day,
				EndDate:   day,
				ShiftType: models.ShiftMorning,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, service.ErrSpaceUnavailable):
				conflicts++
			}
		}(uid)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "only one reservation may hold the slot")
	assert.Equal(t, len(users)-1, conflicts)

	var claims int64
	testDB.Model(&models.SlotClaim{}).Where("space_id = ?", "space-7").Count(&claims)
	assert.Equal(t, int64(1), claims)
}

// Morning and afternoon on the same day never conflict, even under contention.
func TestConcurrentDisjointShifts(t *testing.T) {
	cleanTables(t)
	users := seedUsers(t, 2)
	svc := newReservationService()
	day := nextWeek()

	shifts := []models.ShiftType{models.ShiftMorning, models.ShiftAfternoon}
	errs := make([]error, len(shifts))
	var wg sync.WaitGroup
	wg.Add(len(shifts))
	for i, shift := range shifts {
		go func(i int, shift models.ShiftType) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), service.CreateReservationInput{
				UserID:    users[i],
				SpaceID:   "space-8",
				StartDate: day,
				EndDate:   day,
				ShiftType: shift,
			})
		}(i, shift)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	_, err := svc.Create(context.Background(), service.CreateReservationInput{
		UserID:    users[0],
		SpaceID:   "space-8",
		StartDate: day,
		EndDate:   day,
		ShiftType: models.ShiftFullDay,
	})
	assert.ErrorIs(t, err, service.ErrSpaceUnavailable)
}

func TestCancelFreesSlot(t *testing.T) {
	cleanTables(t)
	users := seedUsers(t, 2)
	svc := newReservationService()
	day := nextWeek()

	first, err := svc.Create(context.Background(), service.CreateReservationInput{
		UserID: users[0], SpaceID: "space-9", StartDate: day, EndDate: day.AddDays(1), ShiftType: models.ShiftFullDay,
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), &service.Identity{UID: users[0], Role: models.RoleUser}, first.ID, "")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), service.CreateReservationInput{
		UserID: users[1], SpaceID: "space-9", StartDate: day.AddDays(1), EndDate: day.AddDays(1), ShiftType: models.ShiftMorning,
	})
	assert.NoError(t, err)
}
