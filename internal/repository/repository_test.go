package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewSQLiteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, uid, email string) *models.User {
	t.Helper()
	u := &models.User{UID: uid, Email: email, Username: uid, Role: models.RoleUser, IsActive: true, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedReservation(t *testing.T, db *gorm.DB, id, userID, spaceID, start, end string, shift models.ShiftType, status models.ReservationStatus) *models.Reservation {
	t.Helper()
	r := &models.Reservation{
		ID:        id,
		UserID:    userID,
		SpaceID:   spaceID,
		StartDate: date(start),
		EndDate:   date(end),
		ShiftType: shift,
		Status:    status,
	}
	require.NoError(t, NewReservationRepository(db).Create(context.Background(), db, r))
	return r
}

func TestSpaceRepository_FindAllSortedBySpaceNumber(t *testing.T) {
	db := newTestDB(t)
	repo := NewSpaceRepository(db)

	spaces, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, spaces, database.SpaceCount)
	for i, s := range spaces {
		assert.Equal(t, i+1, s.SpaceNumber)
	}
	assert.Equal(t, models.SpaceDisabled, spaces[0].Type)
	assert.Equal(t, models.SpaceElectric, spaces[2].Type)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(database.SpaceCount), count)
}

func TestSpaceRepository_FindByIDForUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewSpaceRepository(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		space, err := repo.FindByIDForUpdate(context.Background(), tx, "space-3")
		require.NoError(t, err)
		assert.Equal(t, 3, space.SpaceNumber)
		return nil
	})
	require.NoError(t, err)

	_, err = repo.FindByID(context.Background(), "space-99")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReservationRepository_FindOverlapping(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "u1@example.com")
	seedReservation(t, db, "r-active", "u1", "space-3", "2024-05-01", "2024-05-03", models.ShiftMorning, models.StatusActive)
	seedReservation(t, db, "r-pending", "u1", "space-3", "2024-05-03", "2024-05-05", models.ShiftAfternoon, models.StatusPending)
	seedReservation(t, db, "r-cancelled", "u1", "space-3", "2024-05-02", "2024-05-02", models.ShiftFullDay, models.StatusCancelled)
	seedReservation(t, db, "r-rejected", "u1", "space-3", "2024-05-02", "2024-05-02", models.ShiftFullDay, models.StatusRejected)
	seedReservation(t, db, "r-other-space", "u1", "space-4", "2024-05-02", "2024-05-02", models.ShiftFullDay, models.StatusActive)
	seedReservation(t, db, "r-later", "u1", "space-3", "2024-05-10", "2024-05-11", models.ShiftFullDay, models.StatusActive)

	repo := NewReservationRepository(db)
	ctx := context.Background()

	got, err := repo.FindOverlapping(ctx, db, "space-3", models.DateRange{Start: date("2024-05-02"), End: date("2024-05-03")}, "")
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.ElementsMatch(t, []string{"r-active", "r-pending"}, ids)

	got, err = repo.FindOverlapping(ctx, db, "space-3", models.DateRange{Start: date("2024-05-02"), End: date("2024-05-03")}, "r-active")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r-pending", got[0].ID)

	got, err = repo.FindOverlapping(ctx, db, "space-3", models.DateRange{Start: date("2024-05-06"), End: date("2024-05-09")}, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReservationRepository_ClaimSlotsRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "u1@example.com")
	repo := NewReservationRepository(db)
	ctx := context.Background()

	first := seedReservation(t, db, "r1", "u1", "space-3", "2024-05-01", "2024-05-01", models.ShiftMorning, models.StatusPending)
	require.NoError(t, repo.ClaimSlots(ctx, db, first))

	afternoon := seedReservation(t, db, "r2", "u1", "space-3", "2024-05-01", "2024-05-01", models.ShiftAfternoon, models.StatusPending)
	require.NoError(t, repo.ClaimSlots(ctx, db, afternoon))

	fullDay := seedReservation(t, db, "r3", "u1", "space-3", "2024-05-01", "2024-05-01", models.ShiftFullDay, models.StatusPending)
	err := repo.ClaimSlots(ctx, db, fullDay)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, repo.ReleaseSlots(ctx, db, "r1"))
	require.NoError(t, repo.ReleaseSlots(ctx, db, "r2"))
	assert.NoError(t, repo.ClaimSlots(ctx, db, fullDay))
}

func TestReservationRepository_FindByIDPreloads(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "u1@example.com")
	seedReservation(t, db, "r1", "u1", "space-5", "2024-05-01", "2024-05-01", models.ShiftMorning, models.StatusPending)

	r, err := NewReservationRepository(db).FindByID(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, r.User)
	require.NotNil(t, r.Space)
	assert.Equal(t, "u1@example.com", r.User.Email)
	assert.Equal(t, 5, r.Space.SpaceNumber)
	assert.Equal(t, "2024-05-01", r.StartDate.String())

	_, err = NewReservationRepository(db).FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReservationRepository_ListAndCounts(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "u1@example.com")
	seedUser(t, db, "u2", "u2@example.com")
	seedReservation(t, db, "r1", "u1", "space-1", "2024-05-01", "2024-05-01", models.ShiftMorning, models.StatusPending)
	seedReservation(t, db, "r2", "u1", "space-2", "2024-05-01", "2024-05-01", models.ShiftMorning, models.StatusActive)
	seedReservation(t, db, "r3", "u2", "space-1", "2024-05-02", "2024-05-02", models.ShiftMorning, models.StatusCancelled)

	repo := NewReservationRepository(db)
	ctx := context.Background()

	all, total, err := repo.List(ctx, ReservationFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)

	byUser, total, err := repo.List(ctx, ReservationFilter{UserID: "u1", Status: models.StatusActive, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byUser, 1)
	assert.Equal(t, "r2", byUser[0].ID)
	assert.NotNil(t, byUser[0].User)

	n, err := repo.CountBlockingByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CountBlockingByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	onDate, err := repo.FindBlockingOnDate(ctx, date("2024-05-01"))
	require.NoError(t, err)
	assert.Len(t, onDate, 2)

	mine, err := repo.FindByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.NotNil(t, mine[0].Space)
}

func TestReservationRepository_DocumentPaths(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "u1@example.com")
	r := seedReservation(t, db, "r1", "u1", "space-1", "2024-05-01", "2024-05-04", models.ShiftMorning, models.StatusPending)
	seedReservation(t, db, "r2", "u1", "space-2", "2024-05-01", "2024-05-01", models.ShiftMorning, models.StatusPending)

	r.AttachDocument(&models.ScheduleDocument{Path: "u1/1_a_doc.pdf", Filename: "doc.pdf", Size: 9, ContentType: "application/pdf", UploadedAt: time.Now()})
	repo := NewReservationRepository(db)
	require.NoError(t, repo.Save(context.Background(), db, r))

	paths, err := repo.DocumentPaths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1/1_a_doc.pdf"}, paths)
}

func TestUserRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	users := []*models.User{
		{UID: "a", Email: "alice@example.com", Username: "alice", FirstName: "Alice", Department: models.DeptBackend, Role: models.RoleAdmin, IsActive: true, PasswordHash: "x"},
		{UID: "b", Email: "bob@example.com", Username: "bob", FirstName: "Bob", Department: models.DeptFrontend, Role: models.RoleUser, IsActive: true, PasswordHash: "x"},
		{UID: "c", Email: "carol@example.com", Username: "carol", FirstName: "Carol", Department: models.DeptBackend, Role: models.RoleUser, IsActive: false, PasswordHash: "x"},
	}
	for _, u := range users {
		require.NoError(t, repo.Create(ctx, u))
	}

	got, total, err := repo.List(ctx, UserFilter{Department: models.DeptBackend, SortBy: "email", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, got, 2)
	assert.Equal(t, "alice@example.com", got[0].Email)

	got, _, err = repo.List(ctx, UserFilter{Search: "BOB", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].UID)

	got, _, err = repo.List(ctx, UserFilter{SortBy: "email", SortDesc: true, Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "carol@example.com", got[0].Email)

	found, err := repo.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a", found.UID)

	total, active, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), active)
}

func TestStatsRepository_Aggregates(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "u1@example.com")
	seedUser(t, db, "u2", "u2@example.com")
	seedReservation(t, db, "r1", "u1", "space-1", "2024-05-01", "2024-05-01", models.ShiftMorning, models.StatusActive)
	seedReservation(t, db, "r2", "u1", "space-1", "2024-05-02", "2024-05-02", models.ShiftFullDay, models.StatusActive)
	seedReservation(t, db, "r3", "u2", "space-2", "2024-05-02", "2024-05-02", models.ShiftMorning, models.StatusPending)

	repo := NewStatsRepository(db)
	ctx := context.Background()

	byStatus, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	counts := map[models.ReservationStatus]int64{}
	for _, c := range byStatus {
		counts[c.Status] = c.Count
	}
	assert.Equal(t, int64(2), counts[models.StatusActive])
	assert.Equal(t, int64(1), counts[models.StatusPending])

	byShift, err := repo.CountByShift(ctx)
	require.NoError(t, err)
	shifts := map[models.ShiftType]int64{}
	for _, c := range byShift {
		shifts[c.ShiftType] = c.Count
	}
	assert.Equal(t, int64(2), shifts[models.ShiftMorning])
	assert.Equal(t, int64(1), shifts[models.ShiftFullDay])

	spaces, err := repo.TopSpaces(ctx, 10)
	require.NoError(t, err)
	require.Len(t, spaces, 1)
	assert.Equal(t, "space-1", spaces[0].SpaceID)
	assert.Equal(t, int64(2), spaces[0].Count)

	users, err := repo.TopUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].UserID)

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	docs, err := repo.CountWithDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), docs)
}
