package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pet-tag-registry/internal/domain/owners"
	"pet-tag-registry/internal/domain/pets"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTagNotFound  = errors.New("tag not found")

	// ErrActivationInFlight: ya hay una activación en vuelo para esa
	// chapita. Otras chapitas siguen operables (no es un lock global).
	ErrActivationInFlight = errors.New("activation already in flight")
)

// ActivationError es una falla de precondición o conflicto al activar.
// El estado del caller queda en no-vinculado y puede reintentar.
type ActivationError struct {
	Reason string
}

func (e *ActivationError) Error() string {
	return "activation failed: " + e.Reason
}

// PetDirectory es lo que el coordinador necesita del módulo pets.
type PetDirectory interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
	ListAvailable(ctx context.Context, ownerID string) ([]pets.Pet, error)
	BindTag(ctx context.Context, petID, tagID string) (pets.Pet, error)
}

// OwnerDirectory resuelve la proyección de contacto del dueño.
type OwnerDirectory interface {
	GetByID(ctx context.Context, userID string) (owners.Owner, error)
}

// Service coordina el ciclo de vida de las chapitas: consulta tri-estado
// y activación de-una-sola-vez con reingreso idempotente.
type Service struct {
	repo   Repository
	pets   PetDirectory
	owners OwnerDirectory
	now    func() time.Time

	// Flags "esta chapita está activándose" por id.
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(repo Repository, petDir PetDirectory, ownerDir OwnerDirectory) *Service {
	return &Service{
		repo:     repo,
		pets:     petDir,
		owners:   ownerDir,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// Info arma la proyección tri-estado de una chapita.
// callerID vacío = caller anónimo.
func (s *Service) Info(ctx context.Context, tagID, callerID string) (View, error) {
	tagID = strings.TrimSpace(tagID)
	if tagID == "" {
		return View{}, ErrInvalidInput
	}

	t, err := s.repo.GetByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return View{}, ErrTagNotFound
		}
		return View{}, fmt.Errorf("load tag: %w", err)
	}

	if t.Activated {
		return s.activatedView(ctx, t), nil
	}

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return View{Kind: ViewAnonymous, Tag: t}, nil
	}

	avail, err := s.pets.ListAvailable(ctx, callerID)
	if err != nil {
		return View{}, err
	}
	if avail == nil {
		avail = []pets.Pet{}
	}

	return View{Kind: ViewEligible, Tag: t, AvailablePets: avail}, nil
}

// Activate vincula una chapita sin activar a una mascota elegible del
// caller, exactamente una vez, y devuelve la proyección ya activada
// (la re-lectura post-activación del flujo original). El bool indica
// si ESTA llamada produjo la transición; los reingresos idempotentes
// devuelven false.
//
// Idempotencia: si la chapita ya quedó vinculada a la MISMA mascota
// (reintento, otra pestaña, otro dispositivo) es éxito no-op. Si quedó
// vinculada a otra mascota, es ActivationError y el caller puede
// reintentar con otra elección.
func (s *Service) Activate(ctx context.Context, tagID, petID, callerID string) (View, bool, error) {
	tagID = strings.TrimSpace(tagID)
	petID = strings.TrimSpace(petID)
	callerID = strings.TrimSpace(callerID)
	if tagID == "" || petID == "" || callerID == "" {
		return View{}, false, ErrInvalidInput
	}

	if err := s.beginActivation(tagID); err != nil {
		return View{}, false, err
	}
	defer s.endActivation(tagID)

	t, err := s.repo.GetByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return View{}, false, ErrTagNotFound
		}
		return View{}, false, fmt.Errorf("load tag: %w", err)
	}

	if t.Activated {
		if t.PetID == petID {
			// Reingreso idempotente. Se re-emite el vínculo igual: si un
			// intento anterior activó la chapita pero se cayó antes de
			// sacar la mascota del pool, el reintento lo cierra acá.
			if _, err := s.pets.BindTag(ctx, petID, tagID); err != nil {
				return View{}, false, fmt.Errorf("bind pet to tag: %w", err)
			}
			return s.activatedView(ctx, t), false, nil
		}
		return View{}, false, &ActivationError{Reason: "tag already bound to another pet"}
	}

	// El coordinador no confía en la UI: re-valida elegibilidad.
	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return View{}, false, &ActivationError{Reason: "pet not found"}
	}
	if p.OwnerID != callerID {
		return View{}, false, ErrInvalidInput
	}
	if p.TagID != "" && p.TagID != tagID {
		return View{}, false, ErrInvalidInput
	}

	updated, err := s.repo.Activate(ctx, tagID, petID, s.now())
	if err != nil {
		if errors.Is(err, ErrAlreadyActivated) {
			// Carrera con otro dispositivo.
			if updated.PetID == petID {
				if _, err := s.pets.BindTag(ctx, petID, tagID); err != nil {
					return View{}, false, fmt.Errorf("bind pet to tag: %w", err)
				}
				return s.activatedView(ctx, updated), false, nil
			}
			return View{}, false, &ActivationError{Reason: "tag already bound to another pet"}
		}
		return View{}, false, fmt.Errorf("activate tag: %w", err)
	}

	// Sacar la mascota del pool de elegibles de inmediato, así un
	// listado posterior nunca la vuelve a ofrecer.
	if _, err := s.pets.BindTag(ctx, petID, tagID); err != nil {
		return View{}, false, fmt.Errorf("bind pet to tag: %w", err)
	}

	return s.activatedView(ctx, updated), true, nil
}

// MintBatch acuña un lote de chapitas sin activar (proceso administrativo).
func (s *Service) MintBatch(ctx context.Context, batchNumber string, count int, qrBaseURL string) ([]Tag, error) {
	batchNumber = strings.TrimSpace(batchNumber)
	qrBaseURL = strings.TrimRight(strings.TrimSpace(qrBaseURL), "/")
	if batchNumber == "" || qrBaseURL == "" || count <= 0 {
		return nil, ErrInvalidInput
	}

	now := s.now()
	out := make([]Tag, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.NewString()
		t := Tag{
			ID:          id,
			BatchNumber: batchNumber,
			QRURL:       qrBaseURL + "/t/" + id,
			CreatedAt:   now,
		}
		if err := s.repo.Create(ctx, t); err != nil {
			return nil, fmt.Errorf("mint tag %d/%d: %w", i+1, count, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Service) activatedView(ctx context.Context, t Tag) View {
	v := View{Kind: ViewActivated, Tag: t}

	p, err := s.pets.GetByID(ctx, t.PetID)
	if err == nil {
		v.Pet = &p
		if o, err := s.owners.GetByID(ctx, p.OwnerID); err == nil {
			v.Owner = &o
		}
	}
	// Se tolera contacto/mascota faltante: la vista activada sigue
	// siendo válida con lo que haya.
	return v
}

func (s *Service) beginActivation(tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[tagID]; ok {
		return ErrActivationInFlight
	}
	s.inflight[tagID] = struct{}{}
	return nil
}

func (s *Service) endActivation(tagID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, tagID)
}
