package models

import (
	"time"
)

// NotificationPreference represents user notification preferences
type NotificationPreference struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// General push notification toggle
	PushEnabled bool `gorm:"column:push_enabled" json:"pushEnabled"`

	BookingAlerts       bool `gorm:"column:booking_alerts" json:"bookingAlerts"`
	PromotionalMessages bool `gorm:"column:promotional_messages" json:"promotionalMessages"`
	EmailEnabled        bool `gorm:"column:email_enabled" json:"emailEnabled"`
}

// TableName specifies the table name for NotificationPreference
func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// DefaultPreferences returns default notification preferences for a new user
func DefaultPreferences(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:              userID,
		PushEnabled:         true,
		BookingAlerts:       true,
		PromotionalMessages: true,
		EmailEnabled:        true,
	}
}

// WantsBookingPush reports whether booking updates may be pushed to the device.
func (p NotificationPreference) WantsBookingPush() bool {
	return p.PushEnabled && p.BookingAlerts
}
