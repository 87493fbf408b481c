package models

import "time"

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusActive    ReservationStatus = "active"
	StatusRejected  ReservationStatus = "rejected"
	StatusCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Blocking reports whether a reservation in this status holds its slots.
func (s ReservationStatus) Blocking() bool {
	return s == StatusPending || s == StatusActive
}

type Reservation struct {
	ID        string            `gorm:"primaryKey;type:varchar(36)"`
	UserID    string            `gorm:"type:varchar(64);not null;index"`
	SpaceID   string            `gorm:"type:varchar(32);not null;index:idx_reservation_space_dates"`
	StartDate Date              `gorm:"not null;index:idx_reservation_space_dates"`
	EndDate   Date              `gorm:"not null;index:idx_reservation_space_dates"`
	ShiftType ShiftType         `gorm:"type:varchar(16);not null"`
	Status    ReservationStatus `gorm:"type:varchar(16);not null;default:'pending';index"`

	DocumentPath        string `gorm:"type:varchar(512)"`
	DocumentName        string `gorm:"type:varchar(128)"`
	DocumentSize        int64
	DocumentContentType string `gorm:"type:varchar(64)"`
	DocumentUploadedAt  *time.Time

	ApprovedBy         string `gorm:"type:varchar(64)"`
	ApprovedAt         *time.Time
	RejectedBy         string `gorm:"type:varchar(64)"`
	RejectedAt         *time.Time
	RejectionReason    string
	CancelledBy        string `gorm:"type:varchar(64)"`
	CancelledAt        *time.Time
	CancellationReason string

	CreatedAt time.Time
	UpdatedAt time.Time

	User  *User         `gorm:"foreignKey:UserID;references:UID"`
	Space *ParkingSpace `gorm:"foreignKey:SpaceID"`
}

func (r *Reservation) Period() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

func (r *Reservation) HasDocument() bool {
	return r.DocumentPath != ""
}

// AttachDocument records stored document metadata on the reservation.
func (r *Reservation) AttachDocument(doc *ScheduleDocument) {
	if doc == nil {
		r.ClearDocument()
		return
	}
	uploaded := doc.UploadedAt
	r.DocumentPath = doc.Path
	r.DocumentName = doc.Filename
	r.DocumentSize = doc.Size
	r.DocumentContentType = doc.ContentType
	r.DocumentUploadedAt = &uploaded
}

func (r *Reservation) ClearDocument() {
	r.DocumentPath = ""
	r.DocumentName = ""
	r.DocumentSize = 0
	r.DocumentContentType = ""
	r.DocumentUploadedAt = nil
}

func (r *Reservation) Document() *ScheduleDocument {
	if !r.HasDocument() {
		return nil
	}
	doc := &ScheduleDocument{
		Path:        r.DocumentPath,
		Filename:    r.DocumentName,
		Size:        r.DocumentSize,
		ContentType: r.DocumentContentType,
	}
	if r.DocumentUploadedAt != nil {
		doc.UploadedAt = *r.DocumentUploadedAt
	}
	return doc
}

// ScheduleDocument is the metadata of a stored PDF attached to a reservation.
type ScheduleDocument struct {
	Path        string
	Filename    string
	Size        int64
	ContentType string
	URL         string
	UploadedAt  time.Time
}

// SlotClaim is the per-(space, day, half) uniqueness key held by a blocking
// reservation. The unique index makes a second concurrent writer fail.
type SlotClaim struct {
	ID            uint    `gorm:"primaryKey"`
	ReservationID string  `gorm:"type:varchar(36);not null;index"`
	SpaceID       string  `gorm:"type:varchar(32);not null;uniqueIndex:idx_slot_claim"`
	Day           Date    `gorm:"not null;uniqueIndex:idx_slot_claim"`
	Half          DayHalf `gorm:"type:varchar(2);not null;uniqueIndex:idx_slot_claim"`
	CreatedAt     time.Time
}

// ClaimsFor expands a reservation's period and shift into slot claims.
func ClaimsFor(r *Reservation) []SlotClaim {
	var claims []SlotClaim
	r.Period().Each(func(d Date) {
		for _, h := range r.ShiftType.Halves() {
			claims = append(claims, SlotClaim{
				ReservationID: r.ID,
				SpaceID:       r.SpaceID,
				Day:           d,
				Half:          h,
			})
		}
	})
	return claims
}

// Conflicts reports whether two reservations on the same space cannot coexist.
func Conflicts(a, b *Reservation) bool {
	return a.Period().Overlaps(b.Period()) && a.ShiftType.Overlaps(b.ShiftType)
}
