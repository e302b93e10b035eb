package tags

import (
	"time"

	"pet-tag-registry/internal/domain/owners"
	"pet-tag-registry/internal/domain/pets"
)

// Tag representa una chapita física (QR+NFC) impresa en lote.
//
// Invariante: Activated transiciona false→true exactamente una vez;
// una vez activada, la mascota referenciada no cambia (no hay re-binding).
type Tag struct {
	ID          string // identificador opaco, acuñado externamente
	BatchNumber string
	QRURL       string // deep link canónico codificado en el QR/NFC

	Activated   bool
	PetID       string
	ActivatedAt *time.Time

	CreatedAt time.Time
}

// ViewKind discrimina la proyección de una chapita según quién la mira.
// Union etiquetada: los estados ilegales (needsLogin y canActivate a la
// vez) no son representables.
type ViewKind string

const (
	// ViewAnonymous: chapita sin activar, caller sin autenticar.
	// Debe loguearse antes de poder actuar.
	ViewAnonymous ViewKind = "unactivated_anonymous"

	// ViewEligible: chapita sin activar, caller autenticado.
	// Incluye sus mascotas elegibles para vincular.
	ViewEligible ViewKind = "unactivated_eligible"

	// ViewActivated: chapita activada; proyección pública completa
	// (mascota + contacto del dueño).
	ViewActivated ViewKind = "activated"
)

// View es la proyección tri-estado que devuelve la consulta de chapita.
type View struct {
	Kind ViewKind
	Tag  Tag

	// Solo ViewEligible:
	AvailablePets []pets.Pet

	// Solo ViewActivated:
	Pet   *pets.Pet
	Owner *owners.Owner
}
