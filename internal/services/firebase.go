package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"google.golang.org/api/option"
)

// Messenger is the part of the FCM client used to push to one device.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NotificationPayload represents the notification data
type NotificationPayload struct {
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	ChannelID string            `json:"channelId,omitempty"`
	Tag       string            `json:"tag,omitempty"`
}

// PushNotifier sends FCM messages behind a circuit breaker. A notifier
// without a client is disabled and drops everything.
type PushNotifier struct {
	client Messenger
	cb     *gobreaker.CircuitBreaker
	log    logrus.FieldLogger
}

// NewPushNotifier initializes the Firebase Admin SDK. An empty
// serviceAccountPath disables push notifications.
func NewPushNotifier(ctx context.Context, serviceAccountPath string, log logrus.FieldLogger) (*PushNotifier, error) {
	if serviceAccountPath == "" {
		log.Warn("FIREBASE_SERVICE_ACCOUNT_PATH not set, push notifications disabled")
		return &PushNotifier{log: log}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	log.Info("Firebase Cloud Messaging initialized")
	return NewPushNotifierWithClient(client, log), nil
}

func NewPushNotifierWithClient(client Messenger, log logrus.FieldLogger) *PushNotifier {
	return &PushNotifier{
		client: client,
		cb:     newPushBreaker(log),
		log:    log,
	}
}

func newPushBreaker(log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fcm",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
		// A bad device token says nothing about FCM's health.
		IsSuccessful: func(err error) bool {
			return err == nil || messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err)
		},
	})
}

func (p *PushNotifier) Enabled() bool {
	return p != nil && p.client != nil
}

// Send pushes payload to one device token.
func (p *PushNotifier) Send(ctx context.Context, token string, payload NotificationPayload) error {
	if !p.Enabled() || token == "" {
		return nil
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data:    payload.Data,
		Token:   token,
		Android: androidConfig(payload),
		APNS:    apnsConfig(),
	}

	_, err := p.cb.Execute(func() (interface{}, error) {
		return p.client.Send(ctx, message)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("push notifications paused: %w", err)
	}
	return err
}

func androidConfig(payload NotificationPayload) *messaging.AndroidConfig {
	channelID := payload.ChannelID
	if channelID == "" {
		channelID = "taskmate_bookings"
	}
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			ChannelID:             channelID,
			Sound:                 "default",
			DefaultSound:          true,
			Tag:                   payload.Tag,
			DefaultVibrateTimings: true,
		},
	}
}

func apnsConfig() *messaging.APNSConfig {
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Sound:          "default",
				MutableContent: true,
			},
		},
	}
}

var bookingPushText = map[models.BookingStatus][2]string{
	models.BookingStatusPending:    {"New booking request", "%s requested for %s"},
	models.BookingStatusConfirmed:  {"Booking accepted", "Your booking for %s on %s was accepted"},
	models.BookingStatusRejected:   {"Booking declined", "Your booking for %s on %s was declined"},
	models.BookingStatusCancelled:  {"Booking cancelled", "The booking for %s on %s was cancelled"},
	models.BookingStatusInProgress: {"Service started", "%s scheduled on %s has started"},
	models.BookingStatusCompleted:  {"Service completed", "%s on %s is complete. Leave a review!"},
}

// BookingPayload is the push sent to the other party of a booking event.
func BookingPayload(event models.BookingEvent, date string) NotificationPayload {
	text, ok := bookingPushText[event.To]
	if !ok {
		text = [2]string{"Booking updated", "%s on %s was updated"}
	}
	title := event.ServiceTitle
	if title == "" {
		title = "Your booking"
	}
	return NotificationPayload{
		Title: text[0],
		Body:  fmt.Sprintf(text[1], title, date),
		Tag:   "booking_" + event.BookingID,
		Data: map[string]string{
			"type":           "booking_update",
			"bookingId":      event.BookingID,
			"status":         string(event.To),
			"notificationId": fmt.Sprintf("booking_%s_%s", event.BookingID, event.To),
		},
	}
}
