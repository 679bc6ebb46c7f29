// Package catalog serves the public service listings and lets providers
// manage their own.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Invalidator drops cached dashboard views for the given users.
type Invalidator interface {
	Invalidate(ctx context.Context, userIDs ...string) error
}

type Service struct {
	db    *gorm.DB
	cache Invalidator
	log   logrus.FieldLogger
}

func NewService(db *gorm.DB, cache Invalidator, log logrus.FieldLogger) *Service {
	return &Service{db: db, cache: cache, log: log}
}

// Listing is a published service as customers browse it.
type Listing struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Price            float64 `json:"price"`
	CategoryID       uint    `json:"categoryId"`
	CategoryName     string  `json:"categoryName"`
	ProviderID       string  `json:"providerId"`
	ProviderName     string  `json:"providerName"`
	ProviderUsername string  `json:"providerUsername"`
	ProviderLocation string  `json:"providerLocation"`
	ProviderRating   float64 `json:"providerRating"`
	ProviderAvatar   string  `json:"providerAvatar,omitempty"`
}

// ServiceInput is what a provider submits to create or edit a listing.
type ServiceInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	CategoryID  uint    `json:"categoryId" binding:"required"`
	IsPublished *bool   `json:"isPublished"`
}

func (in *ServiceInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return models.NewValidationError("title", "is required")
	}
	if in.Price <= 0 {
		return models.NewValidationError("price", "must be greater than zero")
	}
	if in.CategoryID == 0 {
		return models.NewValidationError("categoryId", "is required")
	}
	return nil
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (s *Service) listings(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("services").
		Select(`services.id, services.title, services.description, services.price,
			services.category_id, categories.name AS category_name,
			services.provider_id, profiles.fullname AS provider_name,
			profiles.username AS provider_username, profiles.location AS provider_location,
			profiles.rating AS provider_rating, profiles.avatar_url AS provider_avatar`).
		Joins("JOIN profiles ON profiles.id = services.provider_id").
		Joins("LEFT JOIN categories ON categories.id = services.category_id").
		Where("services.is_published = ?", true)
}

// CategoryServices lists the published services of a category.
func (s *Service) CategoryServices(ctx context.Context, categoryID uint) ([]Listing, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCategoryNotFound
		}
		return nil, err
	}

	listings := []Listing{}
	err := s.listings(ctx).
		Where("services.category_id = ?", categoryID).
		Order("services.created_at DESC").
		Scan(&listings).Error
	return listings, err
}

// Listing returns one published service.
func (s *Service) Listing(ctx context.Context, serviceID string) (*Listing, error) {
	var listings []Listing
	if err := s.listings(ctx).Where("services.id = ?", serviceID).Limit(1).Scan(&listings).Error; err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, models.ErrServiceNotFound
	}
	return &listings[0], nil
}

// ProviderServices lists every listing the provider owns, published or not.
func (s *Service) ProviderServices(ctx context.Context, caller models.Caller) ([]models.Service, error) {
	if !caller.Is(models.RoleProvider) {
		return nil, models.ErrForbidden
	}
	services := []models.Service{}
	err := s.db.WithContext(ctx).Where("provider_id = ?", caller.ID).Order("created_at DESC").Find(&services).Error
	return services, err
}

func (s *Service) CreateService(ctx context.Context, caller models.Caller, in ServiceInput) (*models.Service, error) {
	if !caller.Is(models.RoleProvider) {
		return nil, models.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	svc := models.Service{
		ProviderID:  caller.ID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		IsPublished: in.IsPublished == nil || *in.IsPublished,
	}
	if err := s.db.WithContext(ctx).Create(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *Service) UpdateService(ctx context.Context, caller models.Caller, serviceID string, in ServiceInput) (*models.Service, error) {
	svc, err := s.owned(ctx, caller, serviceID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	svc.Title = in.Title
	svc.Description = in.Description
	svc.Price = in.Price
	svc.CategoryID = in.CategoryID
	if in.IsPublished != nil {
		svc.IsPublished = *in.IsPublished
	}
	if err := s.db.WithContext(ctx).Save(svc).Error; err != nil {
		return nil, err
	}

	s.invalidateBooked(ctx, svc)
	return svc, nil
}

// DeleteService removes a listing that no active booking depends on.
func (s *Service) DeleteService(ctx context.Context, caller models.Caller, serviceID string) error {
	svc, err := s.owned(ctx, caller, serviceID)
	if err != nil {
		return err
	}

	var active int64
	err = s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("service_id = ? AND status IN ?", svc.ID, []models.BookingStatus{
			models.BookingStatusPending,
			models.BookingStatusConfirmed,
			models.BookingStatusInProgress,
		}).
		Count(&active).Error
	if err != nil {
		return err
	}
	if active > 0 {
		return models.ErrServiceHasBookings
	}

	if err := s.db.WithContext(ctx).Delete(svc).Error; err != nil {
		return err
	}
	s.invalidateBooked(ctx, svc)
	return nil
}

func (s *Service) owned(ctx context.Context, caller models.Caller, serviceID string) (*models.Service, error) {
	if !caller.Is(models.RoleProvider) {
		return nil, models.ErrForbidden
	}
	var svc models.Service
	if err := s.db.WithContext(ctx).First(&svc, "id = ?", serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrServiceNotFound
		}
		return nil, err
	}
	if svc.ProviderID != caller.ID {
		return nil, models.ErrForbidden
	}
	return &svc, nil
}

func (s *Service) checkCategory(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return models.NewValidationError("categoryId", "unknown category")
	}
	return nil
}

// invalidateBooked drops the views that show the service's title: the
// provider's and those of every customer who booked it.
func (s *Service) invalidateBooked(ctx context.Context, svc *models.Service) {
	if s.cache == nil {
		return
	}
	var customers []string
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("service_id = ?", svc.ID).
		Distinct("customer_id").
		Pluck("customer_id", &customers).Error; err != nil {
		s.log.WithError(err).WithField("service_id", svc.ID).Warn("failed to list customers of service")
	}
	if err := s.cache.Invalidate(ctx, append(customers, svc.ProviderID)...); err != nil {
		s.log.WithError(err).WithField("service_id", svc.ID).Warn("failed to invalidate dashboard cache")
	}
}
