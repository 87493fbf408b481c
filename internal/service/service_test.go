package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/repository"
	"github.com/Eursukkul/parking-reservation/pkg/blobstore"
	"github.com/Eursukkul/parking-reservation/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recordingPublisher struct {
	mu     sync.Mutex
	events []ReservationEvent
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload.(ReservationEvent))
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	db     *gorm.DB
	store  *blobstore.MemoryStore
	pub    *recordingPublisher
	repo   repository.ReservationRepository
	svc    ReservationService
	owner  *Identity
	other  *Identity
	admin  *Identity
	policy PeriodPolicy
}

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

func seedUser(t *testing.T, db *gorm.DB, uid string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		UID:          uid,
		Email:        uid + "@example.com",
		Username:     uid,
		Role:         role,
		IsActive:     true,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	seedUser(t, db, "owner", models.RoleUser)
	seedUser(t, db, "other", models.RoleUser)
	seedUser(t, db, "boss", models.RoleAdmin)

	store := blobstore.NewMemoryStore("test")
	pub := &recordingPublisher{}
	repo := repository.NewReservationRepository(db)
	policy := PeriodPolicy{Now: fixedClock, Location: time.UTC}

	return &fixture{
		db:     db,
		store:  store,
		pub:    pub,
		repo:   repo,
		svc:    NewReservationService(repo, repository.NewSpaceRepository(db), NewDocumentService(store), policy, pub),
		owner:  &Identity{UID: "owner", Role: models.RoleUser},
		other:  &Identity{UID: "other", Role: models.RoleUser},
		admin:  &Identity{UID: "boss", Role: models.RoleAdmin},
		policy: policy,
	}
}

func d(s string) models.Date {
	date, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return date
}

func pdfUpload(name string) *DocumentUpload {
	return &DocumentUpload{
		Filename:    name,
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF"),
	}
}

// insertReservation writes a reservation and its claims directly, bypassing
// the period policy so past dates can be used.
func (f *fixture) insertReservation(t *testing.T, id, spaceID, start, end string, shift models.ShiftType, status models.ReservationStatus) *models.Reservation {
	t.Helper()
	r := &models.Reservation{
		ID:        id,
		UserID:    "owner",
		SpaceID:   spaceID,
		StartDate: d(start),
		EndDate:   d(end),
		ShiftType: shift,
		Status:    status,
	}
	ctx := context.Background()
	require.NoError(t, f.repo.Create(ctx, f.db, r))
	if status.Blocking() {
		require.NoError(t, f.repo.ClaimSlots(ctx, f.db, r))
	}
	return r
}

func (f *fixture) claimCount(t *testing.T, reservationID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.SlotClaim{}).Where("reservation_id = ?", reservationID).Count(&n).Error)
	return n
}

func (f *fixture) blobCount(t *testing.T) int {
	t.Helper()
	objs, err := f.store.List(context.Background(), "")
	require.NoError(t, err)
	return len(objs)
}
