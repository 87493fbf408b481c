package service

import (
	"log"

	"github.com/Eursukkul/parking-reservation/internal/models"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventReservationApproved  = "reservation.approved"
	EventReservationRejected  = "reservation.rejected"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationDeleted   = "reservation.deleted"
)

// EventPublisher sends a JSON payload to the broker under a routing key.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// ReservationEvent is the message body of every reservation.* event.
type ReservationEvent struct {
	Type          string                   `json:"type"`
	ReservationID string                   `json:"reservationId"`
	UserID        string                   `json:"userId"`
	SpaceID       string                   `json:"spaceId"`
	StartDate     models.Date              `json:"startDate"`
	EndDate       models.Date              `json:"endDate"`
	ShiftType     models.ShiftType         `json:"shiftType"`
	Status        models.ReservationStatus `json:"status"`
	Reason        string                   `json:"reason,omitempty"`
}

func NewReservationEvent(eventType string, r *models.Reservation, reason string) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		UserID:        r.UserID,
		SpaceID:       r.SpaceID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		ShiftType:     r.ShiftType,
		Status:        r.Status,
		Reason:        reason,
	}
}

func publish(p EventPublisher, eventType string, r *models.Reservation, reason string) {
	if p == nil {
		return
	}
	if err := p.Publish(eventType, NewReservationEvent(eventType, r, reason)); err != nil {
		log.Printf("[Reservations] failed to publish %s for %s: %v", eventType, r.ID, err)
	}
}
