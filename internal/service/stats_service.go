package service

import (
	"context"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultStatsWindowDays = 30
	statsTopN              = 10
)

type Stats struct {
	TotalReservations int64
	TotalUsers        int64
	ActiveUsers       int64
	TotalSpaces       int64
	ByStatus          map[models.ReservationStatus]int64
	ByShift           map[models.ShiftType]int64
	WithDocuments     int64
	PeriodStart       models.Date
	PeriodEnd         models.Date
	NewReservations   int64
	SpaceUtilization  []repository.SpaceUsage
	UserActivity      []repository.UserUsage
	Recent            []models.Reservation
}

type StatsService interface {
	Stats(ctx context.Context, start, end models.Date) (*Stats, error)
}

type statsService struct {
	stats  repository.StatsRepository
	users  repository.UserRepository
	spaces repository.SpaceRepository
	policy PeriodPolicy
}

func NewStatsService(stats repository.StatsRepository, users repository.UserRepository, spaces repository.SpaceRepository, policy PeriodPolicy) StatsService {
	return &statsService{stats: stats, users: users, spaces: spaces, policy: policy}
}

// Stats aggregates the admin dashboard. A zero period defaults to the last
// 30 days ending today.
func (s *statsService) Stats(ctx context.Context, start, end models.Date) (*Stats, error) {
	if end.IsZero() {
		end = s.policy.Today()
	}
	if start.IsZero() {
		start = end.AddDays(-DefaultStatsWindowDays)
	}
	if end.Before(start) {
		return nil, invalidField("endDate", "must not be before startDate")
	}

	out := &Stats{
		PeriodStart: start,
		PeriodEnd:   end,
		ByStatus:    map[models.ReservationStatus]int64{},
		ByShift:     map[models.ShiftType]int64{},
	}
	for _, st := range []models.ReservationStatus{models.StatusPending, models.StatusActive, models.StatusRejected, models.StatusCancelled} {
		out.ByStatus[st] = 0
	}
	for _, sh := range models.AllShifts {
		out.ByShift[sh] = 0
	}

	g, ctx := errgroup.WithContext(ctx)
	var byStatus []repository.StatusCount
	var byShift []repository.ShiftCount

	g.Go(func() (err error) { byStatus, err = s.stats.CountByStatus(ctx); return })
	g.Go(func() (err error) { byShift, err = s.stats.CountByShift(ctx); return })
	g.Go(func() (err error) { out.WithDocuments, err = s.stats.CountWithDocuments(ctx); return })
	g.Go(func() (err error) {
		from, to := statsWindow(start, end)
		out.NewReservations, err = s.stats.CountCreatedBetween(ctx, from, to)
		return
	})
	g.Go(func() (err error) { out.SpaceUtilization, err = s.stats.TopSpaces(ctx, statsTopN); return })
	g.Go(func() (err error) { out.UserActivity, err = s.stats.TopUsers(ctx, statsTopN); return })
	g.Go(func() (err error) { out.Recent, err = s.stats.Recent(ctx, statsTopN); return })
	g.Go(func() (err error) { out.TotalUsers, out.ActiveUsers, err = s.users.Count(ctx); return })
	g.Go(func() (err error) { out.TotalSpaces, err = s.spaces.Count(ctx); return })

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, c := range byStatus {
		out.ByStatus[c.Status] = c.Count
		out.TotalReservations += c.Count
	}
	for _, c := range byShift {
		out.ByShift[c.ShiftType] = c.Count
	}
	return out, nil
}

// statsWindow converts a calendar period to the [from, to) instants used for
// created_at filtering.
func statsWindow(start, end models.Date) (time.Time, time.Time) {
	return start.Time(), end.AddDays(1).Time()
}
