package owners

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type UpsertInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// UpsertContact guarda/actualiza la ficha de contacto del usuario.
func (s *Service) UpsertContact(ctx context.Context, userID string, in UpsertInput) (Owner, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Owner{}, ErrInvalidInput
	}

	o := Owner{
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		UpdatedAt: s.now(),
	}

	if err := s.repo.Upsert(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (Owner, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Owner{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, userID)
}
