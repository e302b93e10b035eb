package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
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

// Record persiste una transición perdida/encontrada.
// Firma pensada para encajar en pets.LostReportRecorder.
func (s *Service) Record(ctx context.Context, petID, actorID string, lost bool, location string, at time.Time) error {
	petID = strings.TrimSpace(petID)
	actorID = strings.TrimSpace(actorID)
	if petID == "" || actorID == "" {
		return ErrInvalidInput
	}

	typ := ReportTypeFound
	if lost {
		typ = ReportTypeLost
		if strings.TrimSpace(location) == "" {
			return ErrInvalidInput
		}
	}

	if at.IsZero() {
		at = s.now()
	}

	rep := Report{
		ID:         uuid.NewString(),
		PetID:      petID,
		Type:       typ,
		Location:   strings.TrimSpace(location),
		ActorID:    actorID,
		OccurredAt: at,
		RecordedAt: s.now(),
	}

	return s.repo.Create(ctx, rep)
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Report, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPet(ctx, petID)
}
