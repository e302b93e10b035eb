package drafts

import (
	"context"
	"encoding/json"
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

func (s *Service) Save(ctx context.Context, userID, formID string, payload json.RawMessage) (Draft, error) {
	userID = strings.TrimSpace(userID)
	formID = strings.TrimSpace(formID)
	if userID == "" || formID == "" || len(payload) == 0 {
		return Draft{}, ErrInvalidInput
	}

	d := Draft{
		UserID:  userID,
		FormID:  formID,
		Payload: payload,
		SavedAt: s.now(),
	}

	if err := s.repo.Save(ctx, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *Service) Load(ctx context.Context, userID, formID string) (Draft, error) {
	userID = strings.TrimSpace(userID)
	formID = strings.TrimSpace(formID)
	if userID == "" || formID == "" {
		return Draft{}, ErrInvalidInput
	}
	return s.repo.Load(ctx, userID, formID)
}

func (s *Service) Clear(ctx context.Context, userID, formID string) error {
	userID = strings.TrimSpace(userID)
	formID = strings.TrimSpace(formID)
	if userID == "" || formID == "" {
		return ErrInvalidInput
	}
	return s.repo.Clear(ctx, userID, formID)
}

func (s *Service) Touched(ctx context.Context, userID, formID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	formID = strings.TrimSpace(formID)
	if userID == "" || formID == "" {
		return false, ErrInvalidInput
	}
	return s.repo.Touched(ctx, userID, formID)
}
