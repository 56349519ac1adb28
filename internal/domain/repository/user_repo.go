package repository

import (
	"time"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

// UserRepository defines access to user accounts and their personal data
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	UpdateLastLogin(userID uint, at time.Time, ip string) error
	// SavePersonalData stores tier-2 data and raises the user to tier 2
	SavePersonalData(data *entity.PersonalData) error
	GetPersonalData(userID uint) (*entity.PersonalData, error)
	// GetByNIF and GetByCellNumber return the user owning that value
	GetByNIF(nif string) (*entity.User, error)
	GetByCellNumber(cell string) (*entity.User, error)
}
