package gormdb

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

// BlacklistRepo implements repository.BlacklistRepository
type BlacklistRepo struct {
	db *gorm.DB
}

// NewBlacklistRepo creates a blacklist repository
func NewBlacklistRepo(db *gorm.DB) *BlacklistRepo {
	return &BlacklistRepo{db: db}
}

// IsEmailBlacklisted reports whether an email is blocked
func (r *BlacklistRepo) IsEmailBlacklisted(email string) (bool, error) {
	var n int64
	err := r.db.Model(&entity.BlacklistedEmail{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// IsIPBlacklisted reports whether an IP address is blocked
func (r *BlacklistRepo) IsIPBlacklisted(ip string) (bool, error) {
	var n int64
	err := r.db.Model(&entity.BlacklistedIP{}).Where("ip = ?", ip).Count(&n).Error
	return n > 0, err
}

// AddEmail blocks an email; adding it twice is not an error
func (r *BlacklistRepo) AddEmail(email string) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.BlacklistedEmail{Email: email}).Error
}

// AddIP blocks an IP address; adding it twice is not an error
func (r *BlacklistRepo) AddIP(ip string) error {
	if ip == "" {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.BlacklistedIP{IP: ip}).Error
}
