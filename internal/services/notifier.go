package services

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/messaging"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BookingPublisher forwards booking events to other subscribers.
type BookingPublisher interface {
	PublishBookingUpdate(ctx context.Context, event models.BookingEvent) error
}

// BookingNotifier fans a committed booking event out to the websocket
// hub, the redis channel and the counterpart's device.
type BookingNotifier struct {
	db        *gorm.DB
	hub       *Hub
	publisher BookingPublisher
	push      *PushNotifier
	log       logrus.FieldLogger
}

func NewBookingNotifier(db *gorm.DB, hub *Hub, publisher BookingPublisher, push *PushNotifier, log logrus.FieldLogger) *BookingNotifier {
	return &BookingNotifier{db: db, hub: hub, publisher: publisher, push: push, log: log}
}

func (n *BookingNotifier) BookingChanged(ctx context.Context, event models.BookingEvent) {
	entry := n.log.WithFields(logrus.Fields{"booking_id": event.BookingID, "status": event.To})

	if n.hub != nil {
		n.hub.SendBookingUpdate(event)
	}
	if n.publisher != nil {
		if err := n.publisher.PublishBookingUpdate(ctx, event); err != nil {
			entry.WithError(err).Warn("failed to publish booking update")
		}
	}
	if err := n.pushToRecipient(ctx, event); err != nil {
		entry.WithError(err).Warn("failed to push booking update")
	}
}

func (n *BookingNotifier) pushToRecipient(ctx context.Context, event models.BookingEvent) error {
	if !n.push.Enabled() {
		return nil
	}
	recipient := event.Recipient()

	var profile models.Profile
	if err := n.db.WithContext(ctx).Select("id", "fcm_token").First(&profile, "id = ?", recipient).Error; err != nil {
		return err
	}
	if profile.FCMToken == "" {
		return nil
	}

	prefs := models.DefaultPreferences(recipient)
	err := n.db.WithContext(ctx).Where("user_id = ?", recipient).First(prefs).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if !prefs.WantsBookingPush() {
		return nil
	}

	var booking models.Booking
	date := ""
	if err := n.db.WithContext(ctx).Select("id", "date").First(&booking, "id = ?", event.BookingID).Error; err == nil {
		date = booking.Date.Format("Jan 2, 2006")
	}

	err = n.push.Send(ctx, profile.FCMToken, BookingPayload(event, date))
	if err != nil && messaging.IsUnregistered(err) {
		// The app was uninstalled or the token rotated.
		return n.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", recipient).Update("fcm_token", "").Error
	}
	return err
}
