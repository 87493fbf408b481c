package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateReservationInput struct {
	UserID    string
	SpaceID   string
	StartDate models.Date
	EndDate   models.Date
	ShiftType models.ShiftType
	Document  *DocumentUpload
}

// UpdateReservationInput changes only the fields that are set.
type UpdateReservationInput struct {
	StartDate *models.Date
	EndDate   *models.Date
	ShiftType *models.ShiftType
	Document  *DocumentUpload
}

func (in UpdateReservationInput) empty() bool {
	return in.StartDate == nil && in.EndDate == nil && in.ShiftType == nil && in.Document == nil
}

type AvailabilityQuery struct {
	SpaceID              string
	StartDate            models.Date
	EndDate              models.Date
	ShiftType            models.ShiftType
	ExcludeReservationID string
}

type SpaceAvailability struct {
	Space  models.ParkingSpace
	Shifts map[models.ShiftType]bool
}

type ReservationService interface {
	Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error)
	Update(ctx context.Context, caller *Identity, id string, in UpdateReservationInput) (*models.Reservation, error)
	Cancel(ctx context.Context, caller *Identity, id, reason string) (*models.Reservation, error)
	Approve(ctx context.Context, caller *Identity, id string) (*models.Reservation, error)
	Reject(ctx context.Context, caller *Identity, id, reason string) (*models.Reservation, error)
	Delete(ctx context.Context, caller *Identity, id string) error
	Get(ctx context.Context, id string) (*models.Reservation, error)
	ListForUser(ctx context.Context, userID string) ([]models.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]models.Reservation, int64, error)
	IsAvailable(ctx context.Context, q AvailabilityQuery) (bool, error)
	Dashboard(ctx context.Context, day models.Date) (models.Date, []SpaceAvailability, error)
	Spaces(ctx context.Context) ([]models.ParkingSpace, error)
	Document(ctx context.Context, caller *Identity, id string) (*models.Reservation, *models.ScheduleDocument, error)
	RemoveDocument(ctx context.Context, caller *Identity, id string) (*models.Reservation, error)
}

type reservationService struct {
	reservations repository.ReservationRepository
	spaces       repository.SpaceRepository
	docs         DocumentService
	policy       PeriodPolicy
	publisher    EventPublisher
	now          func() time.Time
}

func NewReservationService(
	reservations repository.ReservationRepository,
	spaces repository.SpaceRepository,
	docs DocumentService,
	policy PeriodPolicy,
	publisher EventPublisher,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		spaces:       spaces,
		docs:         docs,
		policy:       policy,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (s *reservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	// 1. Required fields
	if err := requireReservationFields(in.SpaceID, in.ShiftType); err != nil {
		return nil, err
	}

	// 2. Period rules
	if err := s.policy.ValidatePeriod(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	period := models.DateRange{Start: in.StartDate, End: in.EndDate}

	// 3. Long reservations need a schedule document
	if RequiresDocument(period) && in.Document == nil {
		return nil, ErrDocumentRequired
	}
	if in.Document != nil {
		if err := ValidateDocument(in.Document); err != nil {
			return nil, err
		}
	}

	res := &models.Reservation{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		SpaceID:   in.SpaceID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		ShiftType: in.ShiftType,
		Status:    models.StatusPending,
	}

	// 4. Store the document before the transaction; compensate on failure
	if in.Document != nil {
		doc, err := s.docs.Upload(ctx, in.UserID, in.Document)
		if err != nil {
			return nil, err
		}
		res.AttachDocument(doc)
	}

	// 5. Lock the space, re-check availability, insert and claim slots atomically
	err := s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.spaces.FindByIDForUpdate(ctx, tx, in.SpaceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSpaceNotFound
			}
			return err
		}
		if err := s.ensureAvailable(ctx, tx, res); err != nil {
			return err
		}
		if err := s.reservations.Create(ctx, tx, res); err != nil {
			return err
		}
		return s.claimSlots(ctx, tx, res)
	})
	if err != nil {
		s.docs.Discard(ctx, res.DocumentPath)
		return nil, err
	}

	publish(s.publisher, EventReservationCreated, res, "")
	return res, nil
}

func (s *reservationService) Update(ctx context.Context, caller *Identity, id string, in UpdateReservationInput) (*models.Reservation, error) {
	if in.empty() {
		return nil, invalid("no fields to update")
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && current.UserID != caller.UID {
		return nil, ErrForbidden
	}
	if !current.Status.Blocking() {
		return nil, ErrReservationClosed
	}

	next := *current
	if in.StartDate != nil {
		next.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		next.EndDate = *in.EndDate
	}
	if in.ShiftType != nil {
		if !in.ShiftType.Valid() {
			return nil, invalidField("shiftType", "must be one of MORNING, AFTERNOON, FULL_DAY")
		}
		next.ShiftType = *in.ShiftType
	}

	if in.StartDate != nil || in.EndDate != nil {
		if err := s.policy.ValidatePeriod(next.StartDate, next.EndDate); err != nil {
			return nil, err
		}
	}
	if RequiresDocument(next.Period()) && !current.HasDocument() && in.Document == nil {
		return nil, ErrDocumentRequired
	}

	var newDoc *models.ScheduleDocument
	if in.Document != nil {
		if newDoc, err = s.docs.Upload(ctx, current.UserID, in.Document); err != nil {
			return nil, err
		}
	}

	var result *models.Reservation
	var replacedPath string
	err = s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.spaces.FindByIDForUpdate(ctx, tx, current.SpaceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSpaceNotFound
			}
			return err
		}
		res, err := s.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if !res.Status.Blocking() {
			return ErrReservationClosed
		}

		// Release own claims first so the reservation never blocks itself
		if err := s.reservations.ReleaseSlots(ctx, tx, res.ID); err != nil {
			return err
		}

		res.StartDate = next.StartDate
		res.EndDate = next.EndDate
		res.ShiftType = next.ShiftType
		if newDoc != nil {
			replacedPath = res.DocumentPath
			res.AttachDocument(newDoc)
		}

		if err := s.ensureAvailable(ctx, tx, res); err != nil {
			return err
		}
		if err := s.reservations.Save(ctx, tx, res); err != nil {
			return err
		}
		if err := s.claimSlots(ctx, tx, res); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if newDoc != nil {
			s.docs.Discard(ctx, newDoc.Path)
		}
		return nil, err
	}

	s.docs.Discard(ctx, replacedPath)
	publish(s.publisher, EventReservationUpdated, result, "")
	return result, nil
}

func (s *reservationService) Cancel(ctx context.Context, caller *Identity, id, reason string) (*models.Reservation, error) {
	return s.transition(ctx, caller, id, models.StatusCancelled, reason)
}

func (s *reservationService) Approve(ctx context.Context, caller *Identity, id string) (*models.Reservation, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.transition(ctx, caller, id, models.StatusActive, "")
}

func (s *reservationService) Reject(ctx context.Context, caller *Identity, id, reason string) (*models.Reservation, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.transition(ctx, caller, id, models.StatusRejected, reason)
}

// transition moves a reservation through the status table. Leaving a
// blocking status releases its slot claims in the same transaction.
func (s *reservationService) transition(ctx context.Context, caller *Identity, id string, to models.ReservationStatus, reason string) (*models.Reservation, error) {
	var result *models.Reservation
	var removedPath string

	err := s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if !caller.IsAdmin() && res.UserID != caller.UID {
			return ErrForbidden
		}
		if err := models.CanTransition(res.Status, to, caller.actor()); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}

		now := s.now()
		switch to {
		case models.StatusActive:
			res.ApprovedBy = caller.UID
			res.ApprovedAt = &now
		case models.StatusRejected:
			res.RejectedBy = caller.UID
			res.RejectedAt = &now
			res.RejectionReason = reason
		case models.StatusCancelled:
			res.CancelledBy = caller.UID
			res.CancelledAt = &now
			res.CancellationReason = reason
			removedPath = res.DocumentPath
			res.ClearDocument()
		}
		res.Status = to

		if !to.Blocking() {
			if err := s.reservations.ReleaseSlots(ctx, tx, res.ID); err != nil {
				return err
			}
		}
		if err := s.reservations.Save(ctx, tx, res); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.docs.Discard(ctx, removedPath)
	publish(s.publisher, eventFor(to), result, reason)
	return result, nil
}

func eventFor(status models.ReservationStatus) string {
	switch status {
	case models.StatusActive:
		return EventReservationApproved
	case models.StatusRejected:
		return EventReservationRejected
	case models.StatusCancelled:
		return EventReservationCancelled
	}
	return EventReservationUpdated
}

func (s *reservationService) Delete(ctx context.Context, caller *Identity, id string) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	var deleted *models.Reservation
	err := s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if err := s.reservations.ReleaseSlots(ctx, tx, id); err != nil {
			return err
		}
		if err := s.reservations.Delete(ctx, tx, id); err != nil {
			return err
		}
		deleted = res
		return nil
	})
	if err != nil {
		return err
	}

	s.docs.Discard(ctx, deleted.DocumentPath)
	publish(s.publisher, EventReservationDeleted, deleted, "")
	return nil
}

func (s *reservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return s.find(ctx, id)
}

func (s *reservationService) ListForUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	return s.reservations.FindByUser(ctx, userID)
}

func (s *reservationService) List(ctx context.Context, f repository.ReservationFilter) ([]models.Reservation, int64, error) {
	return s.reservations.List(ctx, f)
}

// IsAvailable reports whether the space is free for the period and shift,
// ignoring the reservation named by ExcludeReservationID.
func (s *reservationService) IsAvailable(ctx context.Context, q AvailabilityQuery) (bool, error) {
	if err := requireReservationFields(q.SpaceID, q.ShiftType); err != nil {
		return false, err
	}
	if q.StartDate.IsZero() || q.EndDate.IsZero() {
		return false, invalid("startDate and endDate are required")
	}
	if q.EndDate.Before(q.StartDate) {
		return false, invalidField("endDate", "must not be before startDate")
	}

	candidate := &models.Reservation{
		ID:        q.ExcludeReservationID,
		SpaceID:   q.SpaceID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		ShiftType: q.ShiftType,
	}
	err := s.ensureAvailable(ctx, s.reservations.GetDB(), candidate)
	if errors.Is(err, ErrSpaceUnavailable) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *reservationService) Dashboard(ctx context.Context, day models.Date) (models.Date, []SpaceAvailability, error) {
	if day.IsZero() {
		day = s.policy.Today()
	}

	spaces, err := s.spaces.FindAll(ctx)
	if err != nil {
		return day, nil, err
	}
	taken, err := s.reservations.FindBlockingOnDate(ctx, day)
	if err != nil {
		return day, nil, err
	}

	bySpace := make(map[string][]models.ShiftType, len(taken))
	for _, r := range taken {
		bySpace[r.SpaceID] = append(bySpace[r.SpaceID], r.ShiftType)
	}

	out := make([]SpaceAvailability, len(spaces))
	for i, space := range spaces {
		shifts := make(map[models.ShiftType]bool, len(models.AllShifts))
		for _, shift := range models.AllShifts {
			free := true
			for _, held := range bySpace[space.ID] {
				if shift.Overlaps(held) {
					free = false
					break
				}
			}
			shifts[shift] = free
		}
		out[i] = SpaceAvailability{Space: space, Shifts: shifts}
	}
	return day, out, nil
}

func (s *reservationService) Spaces(ctx context.Context) ([]models.ParkingSpace, error) {
	return s.spaces.FindAll(ctx)
}

func (s *reservationService) Document(ctx context.Context, caller *Identity, id string) (*models.Reservation, *models.ScheduleDocument, error) {
	res, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !caller.IsAdmin() && res.UserID != caller.UID {
		return nil, nil, ErrForbidden
	}
	doc := res.Document()
	if doc == nil {
		return nil, nil, ErrDocumentNotFound
	}

	url, err := s.docs.SignedURL(ctx, doc.Path)
	if err != nil {
		return nil, nil, err
	}
	doc.URL = url
	return res, doc, nil
}

func (s *reservationService) RemoveDocument(ctx context.Context, caller *Identity, id string) (*models.Reservation, error) {
	var result *models.Reservation
	var removedPath string

	err := s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if res.UserID != caller.UID {
			return ErrForbidden
		}
		if !res.HasDocument() {
			return ErrDocumentNotFound
		}
		if res.Status.Blocking() && RequiresDocument(res.Period()) {
			return invalidField("scheduleDocument", "cannot be removed from a reservation longer than 2 days")
		}

		removedPath = res.DocumentPath
		res.ClearDocument()
		if err := s.reservations.Save(ctx, tx, res); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.docs.Discard(ctx, removedPath)
	return result, nil
}

func (s *reservationService) find(ctx context.Context, id string) (*models.Reservation, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// ensureAvailable fails with ErrSpaceUnavailable if any blocking reservation
// other than r itself conflicts with r's period and shift.
func (s *reservationService) ensureAvailable(ctx context.Context, tx *gorm.DB, r *models.Reservation) error {
	existing, err := s.reservations.FindOverlapping(ctx, tx, r.SpaceID, r.Period(), r.ID)
	if err != nil {
		return fmt.Errorf("load overlapping reservations: %w", err)
	}
	for i := range existing {
		if models.Conflicts(r, &existing[i]) {
			return ErrSpaceUnavailable
		}
	}
	return nil
}

func (s *reservationService) claimSlots(ctx context.Context, tx *gorm.DB, r *models.Reservation) error {
	if err := s.reservations.ClaimSlots(ctx, tx, r); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSpaceUnavailable
		}
		return err
	}
	return nil
}

func requireReservationFields(spaceID string, shift models.ShiftType) error {
	if spaceID == "" {
		return invalidField("spaceId", "is required")
	}
	if !shift.Valid() {
		return invalidField("shiftType", "must be one of MORNING, AFTERNOON, FULL_DAY")
	}
	return nil
}
