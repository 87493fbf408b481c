package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/service"
	"github.com/Eursukkul/parking-reservation/pkg/mailer"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
)

const handleTimeout = 15 * time.Second

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type UserLookup interface {
	FindByID(ctx context.Context, uid string) (*models.User, error)
}

// NotificationConsumer emails the reservation owner when a reservation
// changes state.
type NotificationConsumer struct {
	users  UserLookup
	mailer Mailer
}

func NewNotificationConsumer(users UserLookup, m Mailer) *NotificationConsumer {
	return &NotificationConsumer{users: users, mailer: m}
}

// Start handles deliveries until the channel closes. done is closed after
// the last delivery has been acked.
func (nc *NotificationConsumer) Start(msgs <-chan amqp.Delivery) (done <-chan struct{}) {
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for msg := range msgs {
			nc.handleMessage(msg)
		}
		log.Println("[NotificationConsumer] channel closed, stopping consumer")
	}()
	return finished
}

func (nc *NotificationConsumer) handleMessage(msg amqp.Delivery) {
	var event service.ReservationEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("[NotificationConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}
	if event.Type == "" {
		event.Type = msg.RoutingKey
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	user, err := nc.users.FindByID(ctx, event.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[NotificationConsumer] user %s for reservation %s not found, dropping", event.UserID, event.ReservationID)
			msg.Ack(false)
			return
		}
		log.Printf("[NotificationConsumer] failed to load user %s: %v", event.UserID, err)
		msg.Nack(false, true) // requeue
		return
	}

	content, ok := compose(event, user)
	if !ok {
		msg.Ack(false)
		return
	}

	// Mail failures are not retried; a redelivery could email the user twice.
	if err := nc.mailer.Send(ctx, content); err != nil {
		log.Printf("[NotificationConsumer] failed to notify %s about %s: %v", user.Email, event.ReservationID, err)
	} else {
		log.Printf("[NotificationConsumer] notified %s: %s %s", user.Email, event.Type, event.ReservationID)
	}
	msg.Ack(false)
}

func compose(event service.ReservationEvent, user *models.User) (mailer.Message, bool) {
	var subject, verb string
	switch event.Type {
	case service.EventReservationCreated:
		subject, verb = "Parking reservation received", "has been received and is waiting for approval"
	case service.EventReservationApproved:
		subject, verb = "Parking reservation approved", "has been approved"
	case service.EventReservationRejected:
		subject, verb = "Parking reservation rejected", "has been rejected"
	case service.EventReservationCancelled:
		subject, verb = "Parking reservation cancelled", "has been cancelled"
	default:
		return mailer.Message{}, false
	}

	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	text := fmt.Sprintf("Hi %s,\n\nYour reservation of space %s for %s, %s to %s %s.",
		name, event.SpaceID, event.ShiftType, event.StartDate, event.EndDate, verb)
	if event.Reason != "" {
		text += "\nReason: " + event.Reason
	}

	return mailer.Message{
		To:      user.Email,
		ToName:  name,
		Subject: subject,
		Text:    text,
		HTML:    "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>",
	}, true
}
