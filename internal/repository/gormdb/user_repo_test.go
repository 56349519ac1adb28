package gormdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	user := &entity.User{Username: "ana@example.com", Email: "ana@example.com", FirstName: "Ana", Tier: entity.TierBasic, Password: "segredo123"}

	require.NoError(t, repo.Create(user))

	got, err := repo.GetByEmail("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.CheckPassword("segredo123"), "password is hashed on save")
	assert.Nil(t, got.PersonalData)

	_, err = repo.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepo_CreateDuplicateUsername(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	require.NoError(t, repo.Create(&entity.User{Username: "rui", Email: "rui@example.com", Tier: entity.TierBasic}))

	err := repo.Create(&entity.User{Username: "rui", Email: "rui.silva@example.com", Tier: entity.TierBasic})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	got, err := repo.GetByUsername("rui")
	require.NoError(t, err)
	assert.Equal(t, "rui@example.com", got.Email)
}

func TestUserRepo_UpdateLastLogin(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	user := &entity.User{Username: "rui", Email: "rui@example.com", Tier: entity.TierBasic}
	require.NoError(t, repo.Create(user))
	at := time.Date(2025, 10, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, repo.UpdateLastLogin(user.ID, at, "10.1.1.1"))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(*got.LastLoginAt))
	assert.Equal(t, "10.1.1.1", got.LastLoginIP)

	assert.ErrorIs(t, repo.UpdateLastLogin(9999, at, ""), apperrors.ErrNotFound)
}

func TestUserRepo_SavePersonalDataElevatesTier(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	user := &entity.User{Username: "ana", Email: "ana@example.com", Tier: entity.TierBasic}
	require.NoError(t, repo.Create(user))

	err := repo.SavePersonalData(&entity.PersonalData{
		UserID: user.ID, Address: "Rua Augusta", Number: "10",
		ZipCode1: "1100", ZipCode2: "053", CellNumber: "912345678", NIF: "123456789",
	})
	require.NoError(t, err)

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TierPersonal, got.Tier)
	require.NotNil(t, got.PersonalData)
	assert.Equal(t, "912345678", got.PersonalData.CellNumber)

	owner, err := repo.GetByNIF("123456789")
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner.ID)

	owner, err = repo.GetByCellNumber("912345678")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", owner.Email)

	_, err = repo.GetByNIF("999999990")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepo_SavePersonalDataUnknownUser(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))

	err := repo.SavePersonalData(&entity.PersonalData{UserID: 77, CellNumber: "912345678", NIF: "123456789"})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.GetPersonalData(77)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
