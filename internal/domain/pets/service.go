package pets

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// ErrLocationRequired: marcar perdida exige una ubicación formateada
	// no vacía. Se rechaza ANTES de tocar el repo.
	ErrLocationRequired = errors.New("lost location required")

	// ErrToggleInFlight: ya hay un toggle de perdida en vuelo para esa
	// mascota. Otras mascotas siguen operables.
	ErrToggleInFlight = errors.New("lost toggle already in flight")

	// ErrTagMismatch: la mascota ya está vinculada a otra chapita.
	ErrTagMismatch = errors.New("pet already bound to another tag")
)

type Service struct {
	repo Repository
	now  func() time.Time

	// Flags "este id está en vuelo" para el toggle de perdida.
	// No es un lock global: cada mascota bloquea solo su propio toggle.
	mu       sync.Mutex
	toggling map[string]struct{}
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		now:      time.Now,
		toggling: make(map[string]struct{}),
	}
}

type CreateInput struct {
	Name               string
	Breed              string
	Gender             string
	BirthDate          *time.Time
	Description        string
	Temperament        string
	MedicalInformation string
	Photos             []string
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Pet, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}

	gender := Gender(strings.TrimSpace(in.Gender))
	if gender != "" && gender != GenderMale && gender != GenderFemale {
		return Pet{}, ErrInvalidInput
	}

	photos := in.Photos
	if photos == nil {
		photos = []string{}
	}

	now := s.now()
	p := Pet{
		ID:                 uuid.NewString(),
		OwnerID:            ownerID,
		Name:               strings.TrimSpace(in.Name),
		Breed:              strings.TrimSpace(in.Breed),
		Gender:             gender,
		BirthDate:          in.BirthDate,
		Description:        strings.TrimSpace(in.Description),
		Temperament:        strings.TrimSpace(in.Temperament),
		MedicalInformation: strings.TrimSpace(in.MedicalInformation),
		Photos:             photos,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name               *string
	Breed              *string
	Gender             *string
	Description        *string
	Temperament        *string
	MedicalInformation *string
	Photos             *[]string
}

func (s *Service) UpdateProfile(ctx context.Context, petID, callerID string, in UpdateInput) (Pet, error) {
	p, err := s.ownedBy(ctx, petID, callerID)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Gender != nil {
		g := Gender(strings.TrimSpace(*in.Gender))
		if g != GenderMale && g != GenderFemale {
			return Pet{}, ErrInvalidInput
		}
		p.Gender = g
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Temperament != nil {
		p.Temperament = strings.TrimSpace(*in.Temperament)
	}
	if in.MedicalInformation != nil {
		p.MedicalInformation = strings.TrimSpace(*in.MedicalInformation)
	}
	if in.Photos != nil {
		photos := *in.Photos
		if photos == nil {
			photos = []string{}
		}
		p.Photos = photos
	}

	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, petID, callerID string) error {
	if _, err := s.ownedBy(ctx, petID, callerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, petID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListAvailable devuelve las mascotas del owner sin chapita vinculada
// (elegibles para activar). El filtro es sobre TagID vacío.
func (s *Service) ListAvailable(ctx context.Context, ownerID string) ([]Pet, error) {
	all, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]Pet, 0, len(all))
	for _, p := range all {
		if p.TagID == "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListLost es la colección pública de mascotas perdidas.
func (s *Service) ListLost(ctx context.Context) ([]Pet, error) {
	return s.repo.ListLost(ctx)
}

// BindTag vincula una chapita a la mascota. La llama el coordinador de
// activación; el efecto observable es que la mascota sale del pool de
// elegibles de inmediato. Re-vincular la misma chapita es no-op.
func (s *Service) BindTag(ctx context.Context, petID, tagID string) (Pet, error) {
	petID = strings.TrimSpace(petID)
	tagID = strings.TrimSpace(tagID)
	if petID == "" || tagID == "" {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	if p.TagID == tagID {
		return p, nil
	}
	if p.TagID != "" {
		return Pet{}, ErrTagMismatch
	}

	p.TagID = tagID
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// SetLost togglea el estado de perdida.
//
//   - A perdida: exige location no vacía (se rechaza antes de cualquier
//     escritura) y sella LostAt con el reloj del servicio.
//   - A encontrada: limpia LostLocation/LostAt.
//   - Intención idempotente: repetir el mismo boolean es un no-op legítimo,
//     no se pre-chequea el estado para evitar un read-then-write contra
//     ediciones concurrentes de otra sesión; se escribe igual y `changed`
//     sale false.
//
// Ante error no se aplica ninguna mutación local.
func (s *Service) SetLost(ctx context.Context, petID, callerID string, lost bool, location string) (Pet, bool, error) {
	location = strings.TrimSpace(location)
	if lost && location == "" {
		return Pet{}, false, ErrLocationRequired
	}

	petID = strings.TrimSpace(petID)
	if petID == "" {
		return Pet{}, false, ErrInvalidInput
	}

	if err := s.beginToggle(petID); err != nil {
		return Pet{}, false, err
	}
	defer s.endToggle(petID)

	p, err := s.ownedBy(ctx, petID, callerID)
	if err != nil {
		return Pet{}, false, err
	}

	changed := p.IsLost != lost

	if lost {
		now := s.now()
		p.IsLost = true
		p.LostLocation = location
		if changed || p.LostAt == nil {
			p.LostAt = &now
		}
	} else {
		p.IsLost = false
		p.LostLocation = ""
		p.LostAt = nil
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, false, err
	}
	return p, changed, nil
}

func (s *Service) ownedBy(ctx context.Context, petID, callerID string) (Pet, error) {
	petID = strings.TrimSpace(petID)
	callerID = strings.TrimSpace(callerID)
	if petID == "" || callerID == "" {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerID != callerID {
		return Pet{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) beginToggle(petID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.toggling[petID]; ok {
		return ErrToggleInFlight
	}
	s.toggling[petID] = struct{}{}
	return nil
}

func (s *Service) endToggle(petID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.toggling, petID)
}
