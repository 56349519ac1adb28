package gormdb

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a user repository
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a user. A taken email or username is reported as
// apperrors.ErrConflict.
func (r *UserRepo) Create(user *entity.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
		}
		return err
	}
	return nil
}

// GetByID returns a user with personal data preloaded
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	return r.first(r.db.Preload("PersonalData").Where("id = ?", id))
}

// GetByEmail returns a user by email
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	return r.first(r.db.Preload("PersonalData").Where("email = ?", email))
}

// GetByUsername returns a user by username
func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	return r.first(r.db.Preload("PersonalData").Where("username = ?", username))
}

// Update saves all user fields
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Omit("PersonalData").Save(user).Error
}

// UpdateLastLogin records the time and address of the latest sign-in
func (r *UserRepo) UpdateLastLogin(userID uint, at time.Time, ip string) error {
	res := r.db.Model(&entity.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"last_login_at": at, "last_login_ip": ip})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SavePersonalData stores tier-2 data and raises the user to tier 2 in one transaction
func (r *UserRepo) SavePersonalData(data *entity.PersonalData) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.User{}).Where("id = ?", data.UserID).Update("tier", entity.TierPersonal)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return tx.Create(data).Error
	})
}

// GetPersonalData returns the tier-2 data of a user
func (r *UserRepo) GetPersonalData(userID uint) (*entity.PersonalData, error) {
	var data entity.PersonalData
	if err := r.db.Where("user_id = ?", userID).First(&data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &data, nil
}

// GetByNIF returns the user owning a NIF
func (r *UserRepo) GetByNIF(nif string) (*entity.User, error) {
	return r.first(r.db.Joins("JOIN personal ON personal.user_id = users.id").
		Where("personal.nfiscal = ?", nif))
}

// GetByCellNumber returns the user owning a cell phone number
func (r *UserRepo) GetByCellNumber(cell string) (*entity.User, error) {
	return r.first(r.db.Joins("JOIN personal ON personal.user_id = users.id").
		Where("personal.cell_number = ?", cell))
}

func (r *UserRepo) first(q *gorm.DB) (*entity.User, error) {
	var user entity.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
