package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"uniqueIndex;not null" json:"name"`
	Snippet string `json:"snippet"`
}

func (Category) TableName() string {
	return "categories"
}

// Service is a listing owned by a provider. Price is the hourly rate.
type Service struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ProviderID  string    `gorm:"size:36;not null;index" json:"providerId"`
	CategoryID  uint      `gorm:"not null;index" json:"categoryId"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	IsPublished bool      `gorm:"column:is_published;not null" json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Service) TableName() string {
	return "services"
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
