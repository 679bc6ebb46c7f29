// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/database"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory sqlite database private to the test.
// A single connection keeps concurrent callers from hitting SQLITE_BUSY.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

func CreateProfile(t *testing.T, db *gorm.DB, role models.Role, name string) *models.Profile {
	t.Helper()

	p := &models.Profile{
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password: "password123",
		FullName: name,
		Username: strings.ToLower(strings.ReplaceAll(name, " ", "")),
		Role:     role,
		Location: "Cebu",
	}
	require.NoError(t, p.HashPassword())
	require.NoError(t, db.Create(p).Error)
	return p
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	c := &models.Category{Name: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateService(t *testing.T, db *gorm.DB, provider *models.Profile, category *models.Category, title string, price float64) *models.Service {
	t.Helper()

	s := &models.Service{
		ProviderID:  provider.ID,
		CategoryID:  category.ID,
		Title:       title,
		Description: title + " service",
		Price:       price,
		IsPublished: true,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func CreateBooking(t *testing.T, db *gorm.DB, customer, provider *models.Profile, service *models.Service, status models.BookingStatus, date time.Time) *models.Booking {
	t.Helper()

	b := &models.Booking{
		CustomerID: customer.ID,
		ProviderID: provider.ID,
		ServiceID:  service.ID,
		Date:       date,
		Hours:      2,
		Amount:     2 * service.Price,
		Status:     status,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func CreateTransaction(t *testing.T, db *gorm.DB, booking *models.Booking, status models.TransactionStatus, paid, net float64, at time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		BookingID:       booking.ID,
		CustomerID:      booking.CustomerID,
		ProviderID:      booking.ProviderID,
		AmountPaid:      paid,
		PayoutNet:       net,
		Status:          status,
		TransactionDate: at,
	}
	require.NoError(t, db.Create(tx).Error)
	return tx
}
