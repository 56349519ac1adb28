package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Account tiers
const (
	TierBasic    = 1 // name and email only
	TierPersonal = 2 // personal data on file
)

// User is a registered account
type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Email         string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	FirstName     string     `gorm:"size:100;not null;default:''" json:"first_name"`
	LastName      string     `gorm:"size:100;not null;default:''" json:"last_name"`
	Password      string     `gorm:"size:100;not null;default:''" json:"-"`
	GoogleAccount bool       `gorm:"not null;default:false" json:"google_account"`
	Tier          int        `gorm:"not null;default:1" json:"tier"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP   string     `gorm:"size:45;not null;default:''" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	PersonalData *PersonalData `gorm:"foreignKey:UserID" json:"personal_data,omitempty"`
}

// TableName sets the GORM table name
func (User) TableName() string {
	return "users"
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasPassword reports whether the account can sign in with a password
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// BeforeSave hashes the password unless it is already a bcrypt hash
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] failed to hash password for email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword compares a plain password with the stored hash
func (u *User) CheckPassword(password string) bool {
	if !u.HasPassword() {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
