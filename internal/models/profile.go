package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleProvider
}

// Profile is the account record of a customer or a provider.
type Profile struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"-" json:"-"` // plain text, only set while hashing
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	FullName     string    `gorm:"column:fullname" json:"fullname"`
	Username     string    `gorm:"column:username" json:"username"`
	Role         Role      `gorm:"column:role;size:16;not null;index" json:"role"`
	Location     string    `gorm:"column:location" json:"location"`
	Rating       float64   `gorm:"column:rating;default:0" json:"rating"`
	AvatarURL    string    `gorm:"column:avatar_url" json:"avatarUrl"`
	FCMToken     string    `gorm:"column:fcm_token" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Profile) HashPassword() error {
	if p.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = string(hashedPassword)
	p.Password = ""
	return nil
}

func (p *Profile) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password))
}

// DisplayName falls back to the username when no full name was given.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}
