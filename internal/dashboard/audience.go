package dashboard

import (
	"context"

	"github.com/chachabrian/taskmate-backend/internal/models"
	"gorm.io/gorm"
)

// Audience lists the users whose cached views render userID's profile:
// userID, the counterparts of its bookings and the customers who saved
// it. Any change to the profile or its rating must invalidate all of them.
func Audience(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	ids := idSet{}
	ids.add(userID)

	var customers, providers, savers []string
	if err := db.WithContext(ctx).Model(&models.Booking{}).
		Where("provider_id = ?", userID).
		Distinct("customer_id").
		Pluck("customer_id", &customers).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.Booking{}).
		Where("customer_id = ?", userID).
		Distinct("provider_id").
		Pluck("provider_id", &providers).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.Favorite{}).
		Where("provider_id = ?", userID).
		Distinct("user_id").
		Pluck("user_id", &savers).Error; err != nil {
		return nil, err
	}

	ids.add(customers...)
	ids.add(providers...)
	ids.add(savers...)
	return ids.list(), nil
}
