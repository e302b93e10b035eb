package tags

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-tag-registry/internal/domain/owners"
	"pet-tag-registry/internal/domain/pets"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testTagRepo struct {
	byID map[string]Tag

	// Opcional: bloquea Activate hasta que se cierre el canal (para
	// ejercitar el guard de activaciones en vuelo).
	blockActivate chan struct{}

	// Opcional: GetByID devuelve este error en vez de consultar el mapa
	// (simula una caída del storage, no un not-found).
	failGet error
}

func newTestTagRepo() *testTagRepo {
	return &testTagRepo{byID: map[string]Tag{}}
}

func (r *testTagRepo) Create(ctx context.Context, t Tag) error {
	if t.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[t.ID] = t
	return nil
}

func (r *testTagRepo) GetByID(ctx context.Context, id string) (Tag, error) {
	if r.failGet != nil {
		return Tag{}, r.failGet
	}
	t, ok := r.byID[id]
	if !ok {
		return Tag{}, ErrNotFound
	}
	return t, nil
}

func (r *testTagRepo) Activate(ctx context.Context, tagID, petID string, at time.Time) (Tag, error) {
	if r.blockActivate != nil {
		<-r.blockActivate
	}
	t, ok := r.byID[tagID]
	if !ok {
		return Tag{}, ErrNotFound
	}
	if t.Activated {
		return t, ErrAlreadyActivated
	}
	t.Activated = true
	t.PetID = petID
	t.ActivatedAt = &at
	r.byID[tagID] = t
	return t, nil
}

type testPetDir struct {
	byID map[string]pets.Pet

	// Opcional: el próximo BindTag falla una sola vez con este error
	// (simula el vínculo que se cae después del CAS).
	bindErr error
}

func newTestPetDir() *testPetDir {
	return &testPetDir{byID: map[string]pets.Pet{}}
}

func (d *testPetDir) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	p, ok := d.byID[id]
	if !ok {
		return pets.Pet{}, errRepoNotFound
	}
	return p, nil
}

func (d *testPetDir) ListAvailable(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	for _, p := range d.byID {
		if p.OwnerID == ownerID && p.TagID == "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d *testPetDir) BindTag(ctx context.Context, petID, tagID string) (pets.Pet, error) {
	if d.bindErr != nil {
		err := d.bindErr
		d.bindErr = nil
		return pets.Pet{}, err
	}
	p, ok := d.byID[petID]
	if !ok {
		return pets.Pet{}, errRepoNotFound
	}
	if p.TagID == tagID {
		return p, nil
	}
	if p.TagID != "" {
		return pets.Pet{}, errors.New("pet already bound")
	}
	p.TagID = tagID
	d.byID[petID] = p
	return p, nil
}

type testOwnerDir struct {
	byID map[string]owners.Owner
}

func (d *testOwnerDir) GetByID(ctx context.Context, userID string) (owners.Owner, error) {
	o, ok := d.byID[userID]
	if !ok {
		return owners.Owner{}, errRepoNotFound
	}
	return o, nil
}

func newFixture() (*Service, *testTagRepo, *testPetDir, *testOwnerDir) {
	repo := newTestTagRepo()
	petDir := newTestPetDir()
	ownerDir := &testOwnerDir{byID: map[string]owners.Owner{}}

	s := NewService(repo, petDir, ownerDir)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	repo.byID["tag-1"] = Tag{ID: "tag-1", BatchNumber: "B-001", QRURL: "https://chapitas.app/t/tag-1"}
	petDir.byID["pet-1"] = pets.Pet{ID: "pet-1", OwnerID: "owner-1", Name: "Milo"}
	petDir.byID["pet-2"] = pets.Pet{ID: "pet-2", OwnerID: "owner-1", Name: "Luna"}
	ownerDir.byID["owner-1"] = owners.Owner{UserID: "owner-1", Name: "Ana", Phone: "11-5555-0001"}

	return s, repo, petDir, ownerDir
}

func TestInfo_TriState(t *testing.T) {
	s, repo, petDir, _ := newFixture()
	ctx := context.Background()

	// Anónimo sobre chapita sin activar.
	v, err := s.Info(ctx, "tag-1", "")
	if err != nil {
		t.Fatalf("Info anonymous: %v", err)
	}
	if v.Kind != ViewAnonymous {
		t.Fatalf("expected %q, got %q", ViewAnonymous, v.Kind)
	}
	if v.AvailablePets != nil || v.Pet != nil {
		t.Fatalf("anonymous view leaked data: %+v", v)
	}

	// Logueado sobre chapita sin activar: elegible con su pool.
	v, err = s.Info(ctx, "tag-1", "owner-1")
	if err != nil {
		t.Fatalf("Info eligible: %v", err)
	}
	if v.Kind != ViewEligible {
		t.Fatalf("expected %q, got %q", ViewEligible, v.Kind)
	}
	if len(v.AvailablePets) != 2 {
		t.Fatalf("expected 2 available pets, got %d", len(v.AvailablePets))
	}

	// Activada: misma vista para cualquiera, con mascota y contacto.
	if _, _, err := s.Activate(ctx, "tag-1", "pet-1", "owner-1"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	for _, caller := range []string{"", "owner-1", "stranger"} {
		v, err = s.Info(ctx, "tag-1", caller)
		if err != nil {
			t.Fatalf("Info activated (caller=%q): %v", caller, err)
		}
		if v.Kind != ViewActivated {
			t.Fatalf("expected %q, got %q", ViewActivated, v.Kind)
		}
		if v.Pet == nil || v.Pet.ID != "pet-1" {
			t.Fatalf("activated view missing pet: %+v", v)
		}
		if v.Owner == nil || v.Owner.Phone != "11-5555-0001" {
			t.Fatalf("activated view missing owner contact: %+v", v)
		}
	}

	// Mascota vinculada sale del pool de elegibles.
	avail, err := petDir.ListAvailable(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(avail) != 1 || avail[0].ID != "pet-2" {
		t.Fatalf("expected pet-1 out of the pool, got %+v", avail)
	}

	_ = repo
}

func TestInfo_UnknownTag(t *testing.T) {
	s, _, _, _ := newFixture()
	if _, err := s.Info(context.Background(), "nope", ""); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestActivate_Success(t *testing.T) {
	s, repo, petDir, _ := newFixture()

	v, activated, err := s.Activate(context.Background(), "tag-1", "pet-1", "owner-1")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !activated {
		t.Fatalf("first activation must report the transition")
	}
	if v.Kind != ViewActivated {
		t.Fatalf("expected activated view, got %q", v.Kind)
	}
	if v.Tag.PetID != "pet-1" || !v.Tag.Activated || v.Tag.ActivatedAt == nil {
		t.Fatalf("tag state incomplete: %+v", v.Tag)
	}
	if repo.byID["tag-1"].PetID != "pet-1" {
		t.Fatalf("repo state not persisted")
	}
	if petDir.byID["pet-1"].TagID != "tag-1" {
		t.Fatalf("pet not bound to tag")
	}
}

func TestActivate_IdempotentReentry(t *testing.T) {
	s, _, _, _ := newFixture()
	ctx := context.Background()

	if _, _, err := s.Activate(ctx, "tag-1", "pet-1", "owner-1"); err != nil {
		t.Fatalf("first Activate: %v", err)
	}

	// Reintento con la misma mascota: éxito no-op y sin transición nueva.
	v, activated, err := s.Activate(ctx, "tag-1", "pet-1", "owner-1")
	if err != nil {
		t.Fatalf("re-Activate same pet: %v", err)
	}
	if activated {
		t.Fatalf("idempotent reentry must not report a transition")
	}
	if v.Kind != ViewActivated {
		t.Fatalf("expected activated view, got %q", v.Kind)
	}

	// Otra mascota: conflicto tipado, reintentable.
	_, _, err = s.Activate(ctx, "tag-1", "pet-2", "owner-1")
	var ae *ActivationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActivationError, got %v", err)
	}
}

func TestActivate_RevalidatesEligibility(t *testing.T) {
	s, repo, petDir, _ := newFixture()
	ctx := context.Background()

	// Mascota de otro owner.
	if _, _, err := s.Activate(ctx, "tag-1", "pet-1", "other-owner"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for foreign pet, got %v", err)
	}

	// Mascota ya vinculada a otra chapita.
	p := petDir.byID["pet-1"]
	p.TagID = "tag-zzz"
	petDir.byID["pet-1"] = p
	if _, _, err := s.Activate(ctx, "tag-1", "pet-1", "owner-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bound pet, got %v", err)
	}

	// Mascota inexistente.
	_, _, err := s.Activate(ctx, "tag-1", "ghost", "owner-1")
	var ae *ActivationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActivationError for missing pet, got %v", err)
	}

	// Nada de eso activó la chapita.
	if repo.byID["tag-1"].Activated {
		t.Fatalf("tag activated despite failed preconditions")
	}
}

func TestActivate_RaceLostToAnotherDevice(t *testing.T) {
	s, repo, _, _ := newFixture()
	ctx := context.Background()

	// Simula que otro dispositivo ganó la carrera justo antes del CAS:
	// el repo ya la tiene activada para otra mascota.
	at := time.Date(2026, 3, 1, 11, 59, 0, 0, time.UTC)
	tag := repo.byID["tag-1"]
	tag.Activated = true
	tag.PetID = "pet-2"
	tag.ActivatedAt = &at
	repo.byID["tag-1"] = tag

	_, _, err := s.Activate(ctx, "tag-1", "pet-1", "owner-1")
	var ae *ActivationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActivationError after losing race, got %v", err)
	}

	// Si el otro dispositivo era el MISMO usuario con la MISMA mascota,
	// es reingreso idempotente.
	v, activated, err := s.Activate(ctx, "tag-1", "pet-2", "owner-1")
	if err != nil {
		t.Fatalf("idempotent reentry after race: %v", err)
	}
	if activated {
		t.Fatalf("reentry after race must not report a transition")
	}
	if v.Kind != ViewActivated || v.Tag.PetID != "pet-2" {
		t.Fatalf("unexpected view after reentry: %+v", v)
	}
}

func TestActivate_RetryHealsPetBinding(t *testing.T) {
	s, repo, petDir, _ := newFixture()
	ctx := context.Background()

	// El CAS activa la chapita pero el vínculo con la mascota se cae:
	// el intento falla y queda estado parcial (chapita activada, mascota
	// todavía en el pool).
	petDir.bindErr = errors.New("pets store unavailable")
	if _, _, err := s.Activate(ctx, "tag-1", "pet-1", "owner-1"); err == nil {
		t.Fatalf("expected error when binding fails")
	}
	if !repo.byID["tag-1"].Activated {
		t.Fatalf("tag should stay activated after failed binding")
	}
	if petDir.byID["pet-1"].TagID != "" {
		t.Fatalf("pet unexpectedly bound: %+v", petDir.byID["pet-1"])
	}

	// El reintento entra por la rama idempotente y cierra el vínculo.
	v, activated, err := s.Activate(ctx, "tag-1", "pet-1", "owner-1")
	if err != nil {
		t.Fatalf("retry after failed binding: %v", err)
	}
	if activated {
		t.Fatalf("retry must not report a new transition")
	}
	if v.Kind != ViewActivated {
		t.Fatalf("expected activated view, got %q", v.Kind)
	}
	if petDir.byID["pet-1"].TagID != "tag-1" {
		t.Fatalf("retry did not repair the binding: %+v", petDir.byID["pet-1"])
	}

	// Con el vínculo reparado, otra chapita ya no puede llevarse la
	// misma mascota.
	repo.byID["tag-2"] = Tag{ID: "tag-2", BatchNumber: "B-001"}
	if _, _, err := s.Activate(ctx, "tag-2", "pet-1", "owner-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for already-bound pet, got %v", err)
	}
}

func TestActivate_RepoFailureIsNotANotFound(t *testing.T) {
	s, repo, _, _ := newFixture()
	repo.failGet = errors.New("storage: connection refused")

	if _, err := s.Info(context.Background(), "tag-1", ""); err == nil || errors.Is(err, ErrTagNotFound) {
		t.Fatalf("Info must surface storage failures, got %v", err)
	}
	if _, _, err := s.Activate(context.Background(), "tag-1", "pet-1", "owner-1"); err == nil || errors.Is(err, ErrTagNotFound) {
		t.Fatalf("Activate must surface storage failures, got %v", err)
	}
}

func TestActivate_InFlightGuardIsPerTag(t *testing.T) {
	s, repo, _, _ := newFixture()
	repo.blockActivate = make(chan struct{})
	repo.byID["tag-2"] = Tag{ID: "tag-2", BatchNumber: "B-001"}

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, _, err := s.Activate(context.Background(), "tag-1", "pet-1", "owner-1")
		done <- err
	}()
	<-started

	deadline := time.After(2 * time.Second)
	for {
		s.mu.Lock()
		_, inflight := s.inflight["tag-1"]
		s.mu.Unlock()
		if inflight {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("first activation never took the in-flight slot")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Misma chapita: rechazada de inmediato.
	if _, _, err := s.Activate(context.Background(), "tag-1", "pet-2", "owner-1"); !errors.Is(err, ErrActivationInFlight) {
		t.Fatalf("expected ErrActivationInFlight, got %v", err)
	}

	// Channel cerrado: desbloquea el primero y todos los que sigan.
	close(repo.blockActivate)

	if err := <-done; err != nil {
		t.Fatalf("first activation: %v", err)
	}

	// Otra chapita nunca estuvo bloqueada.
	if _, _, err := s.Activate(context.Background(), "tag-2", "pet-2", "owner-1"); err != nil {
		t.Fatalf("other tag should not be blocked: %v", err)
	}
}

func TestActivate_ViewToleratesMissingContact(t *testing.T) {
	s, _, _, ownerDir := newFixture()
	delete(ownerDir.byID, "owner-1")

	v, _, err := s.Activate(context.Background(), "tag-1", "pet-1", "owner-1")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if v.Kind != ViewActivated || v.Pet == nil {
		t.Fatalf("expected activated view with pet, got %+v", v)
	}
	if v.Owner != nil {
		t.Fatalf("expected nil owner when contact missing, got %+v", v.Owner)
	}
}

func TestMintBatch(t *testing.T) {
	s, repo, _, _ := newFixture()

	out, err := s.MintBatch(context.Background(), "B-002", 5, "https://chapitas.app/")
	if err != nil {
		t.Fatalf("MintBatch: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 tags, got %d", len(out))
	}
	for _, tg := range out {
		if tg.Activated || tg.PetID != "" {
			t.Fatalf("minted tag must start unactivated: %+v", tg)
		}
		if tg.BatchNumber != "B-002" {
			t.Fatalf("batch number not stamped: %+v", tg)
		}
		if tg.QRURL != "https://chapitas.app/t/"+tg.ID {
			t.Fatalf("unexpected qr url: %q", tg.QRURL)
		}
		if _, ok := repo.byID[tg.ID]; !ok {
			t.Fatalf("minted tag not persisted: %s", tg.ID)
		}
	}

	if _, err := s.MintBatch(context.Background(), "", 5, "https://chapitas.app"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty batch, got %v", err)
	}
	if _, err := s.MintBatch(context.Background(), "B-003", 0, "https://chapitas.app"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero count, got %v", err)
	}
}
