package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

func newTestProfileService(t *testing.T) (*ProfileService, *MockUserRepo, *MockHistoryRepo) {
	t.Helper()
	users := new(MockUserRepo)
	history := new(MockHistoryRepo)
	svc, err := NewProfileService(users, history, nil)
	require.NoError(t, err)
	return svc, users, history
}

func validPersonalInput() PersonalDataInput {
	return PersonalDataInput{
		Address:    "Rua das Flores",
		Number:     "12",
		ZipCode1:   "1200",
		ZipCode2:   "195",
		CellNumber: "912345678",
		NIF:        "123456789",
	}
}

func TestProfileService_Profile_TierTwo(t *testing.T) {
	svc, users, history := newTestProfileService(t)
	users.On("GetByID", uint(1)).Return(&entity.User{
		ID: 1, Email: "ana@example.com", FirstName: "Ana", LastName: "Silva", Tier: entity.TierPersonal,
		PersonalData: &entity.PersonalData{Address: "Rua A", Number: "1", Floor: "NA", Door: "NA", ZipCode1: "1000", ZipCode2: "001", NIF: "123456789"},
	}, nil)
	history.On("ListByUser", uint(1), HistoryPageSize, 10).Return([]entity.QuizHistory{{UUID: "q1"}}, int64(11), nil)

	view, err := svc.Profile(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", view.Name)
	require.NotNil(t, view.Personal)
	assert.Equal(t, "Rua A, 1", view.Personal.FullAddress)
	assert.Equal(t, "1000-001", view.Personal.ZipCode)
	assert.Equal(t, 2, view.Pages)
	assert.Len(t, view.History, 1)
}

func TestProfileService_Profile_TierOneHidesPersonal(t *testing.T) {
	svc, users, history := newTestProfileService(t)
	users.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Tier: entity.TierBasic}, nil)
	history.On("ListByUser", uint(1), HistoryPageSize, 0).Return(nil, int64(0), nil)

	view, err := svc.Profile(context.Background(), 1, 0)

	require.NoError(t, err)
	assert.Nil(t, view.Personal)
	assert.NotNil(t, view.History)
	assert.Equal(t, 1, view.Page)
}

func TestProfileService_ElevateTier(t *testing.T) {
	svc, users, _ := newTestProfileService(t)
	users.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Tier: entity.TierBasic}, nil)
	users.On("GetByNIF", "123456789").Return(nil, apperrors.ErrNotFound)
	users.On("GetByCellNumber", "912345678").Return(nil, apperrors.ErrNotFound)
	users.On("SavePersonalData", mock.MatchedBy(func(p *entity.PersonalData) bool {
		return p.UserID == 1 && p.Floor == entity.NotAvailable && p.Door == entity.NotAvailable &&
			p.Notes == entity.NotAvailable && p.Number == "12"
	})).Return(nil)

	err := svc.ElevateTier(context.Background(), 1, validPersonalInput())

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestProfileService_ElevateTier_CollectsAllErrors(t *testing.T) {
	svc, users, _ := newTestProfileService(t)
	input := validPersonalInput()
	input.NIF = "123456780"
	users.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Tier: entity.TierBasic}, nil)
	users.On("GetByNIF", "123456780").Return(nil, apperrors.ErrNotFound)
	users.On("GetByCellNumber", "912345678").Return(&entity.User{ID: 2, Email: "maria@example.com"}, nil)

	err := svc.ElevateTier(context.Background(), 1, input)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidNIF)
	assert.ErrorIs(t, err, ErrDuplicatePhone)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "ma*****@example.com")
	users.AssertNotCalled(t, "SavePersonalData", mock.Anything)
}

func TestProfileService_ElevateTier_AlreadyPersonal(t *testing.T) {
	svc, users, _ := newTestProfileService(t)
	users.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Tier: entity.TierPersonal}, nil)

	err := svc.ElevateTier(context.Background(), 1, validPersonalInput())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestProfileService_ExportHistory(t *testing.T) {
	svc, _, history := newTestProfileService(t)
	started := time.Date(2025, 11, 3, 20, 0, 0, 0, time.UTC)
	history.On("ListAllByUser", uint(1)).Return([]entity.QuizHistory{
		{UUID: "q1", StartedAt: started, Year: 6, YearPercent: 50, Score: 7.5, Percentage: 75, NCorrect: 3, NWrong: 1, NSkip: 0},
	}, nil)
	var buf bytes.Buffer

	require.NoError(t, svc.ExportHistory(context.Background(), 1, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Quiz", rows[0][0])
	assert.Equal(t, "q1", rows[1][0])
	assert.Equal(t, "2025-11-03 20:00:00", rows[1][1])
	assert.Equal(t, "4", rows[1][9])
}
