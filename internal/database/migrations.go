package database

import (
	"fmt"

	"github.com/chachabrian/taskmate-backend/internal/models"
	"gorm.io/gorm"
)

// Tables lists every model the service owns, in creation order.
var Tables = []interface{}{
	&models.Profile{},
	&models.Category{},
	&models.Service{},
	&models.Booking{},
	&models.BookingStatusEvent{},
	&models.Transaction{},
	&models.Review{},
	&models.Favorite{},
	&models.NotificationPreference{},
}

var postgresConstraints = []struct {
	table, name, check string
}{
	{"profiles", "profiles_role_check", "role IN ('customer', 'provider')"},
	{"bookings", "bookings_status_check", "status IN ('Pending', 'Confirmed', 'Rejected', 'Cancelled', 'In Progress', 'Completed')"},
	{"bookings", "bookings_parties_check", "customer_id <> provider_id"},
	{"bookings", "bookings_hours_check", "hours > 0"},
	{"services", "services_price_check", "price > 0"},
	{"reviews", "reviews_rating_check", "rating BETWEEN 1 AND 5"},
	{"transactions", "transactions_status_check", "status IN ('Paid', 'Pending', 'Canceled')"},
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Tables...); err != nil {
		return err
	}

	// CHECK constraints are only managed on postgres; sqlite is used by tests.
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, c := range postgresConstraints {
		if err := db.Exec(fmt.Sprintf(`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s`, c.table, c.name)).Error; err != nil {
			return err
		}
		if err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)`, c.table, c.name, c.check)).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
	}
	return nil
}
