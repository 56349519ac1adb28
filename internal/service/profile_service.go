package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	"github.com/sousamj2/explicolivais/internal/domain/repository"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

// HistoryPageSize is the number of attempts per profile page
const HistoryPageSize = 10

// PersonalDataInput holds the tier-2 form fields
type PersonalDataInput struct {
	Address    string
	Number     string
	Floor      string
	Door       string
	Notes      string
	ZipCode1   string
	ZipCode2   string
	CellNumber string
	NIF        string
}

// PersonalView is the tier-2 part of a profile
type PersonalView struct {
	Address     string `json:"address"`
	Number      string `json:"number"`
	Floor       string `json:"floor"`
	Door        string `json:"door"`
	Notes       string `json:"notes"`
	FullAddress string `json:"full_address"`
	ZipCode     string `json:"zip_code"`
	CellNumber  string `json:"cell_phone"`
	NIF         string `json:"nfiscal"`
}

// ProfileView is what a signed-in user sees of their account
type ProfileView struct {
	ID           uint                 `json:"id"`
	Email        string               `json:"email"`
	FirstName    string               `json:"first_name"`
	LastName     string               `json:"last_name"`
	Name         string               `json:"name"`
	Tier         int                  `json:"tier"`
	LastLoginAt  *time.Time           `json:"last_login_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	Personal     *PersonalView        `json:"personal,omitempty"`
	History      []entity.QuizHistory `json:"history"`
	HistoryTotal int64                `json:"history_total"`
	Page         int                  `json:"page"`
	Pages        int                  `json:"pages"`
}

// ValidationErrors lists every problem found in a form
type ValidationErrors struct {
	Errs []error
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is
func (e *ValidationErrors) Unwrap() []error {
	return append([]error{apperrors.ErrValidation}, e.Errs...)
}

// ProfileService serves profile pages and tier upgrades
type ProfileService struct {
	userRepo    repository.UserRepository
	historyRepo repository.QuizHistoryRepository
	logger      *zap.Logger
}

func NewProfileService(
	userRepo repository.UserRepository,
	historyRepo repository.QuizHistoryRepository,
	logger *zap.Logger,
) (*ProfileService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if historyRepo == nil {
		return nil, fmt.Errorf("quiz history repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{userRepo: userRepo, historyRepo: historyRepo, logger: logger}, nil
}

// Profile returns the account with one page (1-based) of quiz history
func (s *ProfileService) Profile(ctx context.Context, userID uint, page int) (*ProfileView, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	history, total, err := s.historyRepo.ListByUser(userID, HistoryPageSize, (page-1)*HistoryPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz history: %w", err)
	}
	if history == nil {
		history = []entity.QuizHistory{}
	}

	view := &ProfileView{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Name:         user.FullName(),
		Tier:         user.Tier,
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
		History:      history,
		HistoryTotal: total,
		Page:         page,
		Pages:        int((total + HistoryPageSize - 1) / HistoryPageSize),
	}
	if user.Tier >= entity.TierPersonal && user.PersonalData != nil {
		p := user.PersonalData
		view.Personal = &PersonalView{
			Address:     p.Address,
			Number:      p.Number,
			Floor:       p.Floor,
			Door:        p.Door,
			Notes:       p.Notes,
			FullAddress: p.FullAddress(),
			ZipCode:     p.ZipCode(),
			CellNumber:  p.CellNumber,
			NIF:         p.NIF,
		}
	}
	return view, nil
}

// ElevateTier validates the personal data form and raises the user to
// tier 2. All problems are reported together in a *ValidationErrors.
func (s *ProfileService) ElevateTier(ctx context.Context, userID uint, input PersonalDataInput) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.Tier >= entity.TierPersonal {
		return fmt.Errorf("%w: user already has personal data", apperrors.ErrConflict)
	}

	data := &entity.PersonalData{
		UserID:     userID,
		Address:    strings.TrimSpace(input.Address),
		Number:     orNotAvailable(input.Number),
		Floor:      orNotAvailable(input.Floor),
		Door:       orNotAvailable(input.Door),
		Notes:      orNotAvailable(input.Notes),
		ZipCode1:   strings.TrimSpace(input.ZipCode1),
		ZipCode2:   strings.TrimSpace(input.ZipCode2),
		CellNumber: strings.TrimSpace(input.CellNumber),
		NIF:        strings.TrimSpace(input.NIF),
	}

	var errs []error
	if owner, err := s.userRepo.GetByNIF(data.NIF); err == nil {
		errs = append(errs, fmt.Errorf("%w: NIF %s belongs to an account with email %s", ErrDuplicateNIF, data.NIF, MaskEmail(owner.Email)))
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if owner, err := s.userRepo.GetByCellNumber(data.CellNumber); err == nil {
		errs = append(errs, fmt.Errorf("%w: phone %s belongs to an account with email %s", ErrDuplicatePhone, data.CellNumber, MaskEmail(owner.Email)))
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if !ValidNIF(data.NIF) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidNIF, data.NIF))
	}
	if !ValidCellphone(data.CellNumber) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPhone, data.CellNumber))
	}
	if len(errs) > 0 {
		return &ValidationErrors{Errs: errs}
	}

	if err := s.userRepo.SavePersonalData(data); err != nil {
		return fmt.Errorf("failed to save personal data: %w", err)
	}
	s.logger.Info("User elevated to personal tier", zap.Uint("user_id", userID))
	return nil
}

func orNotAvailable(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return entity.NotAvailable
	}
	return v
}
