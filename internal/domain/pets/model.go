package pets

import "time"

// Gender define el sexo de la mascota.
// @Enum male, female
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Pet representa una mascota del registro de chapitas.
//
// Invariantes:
//   - IsLost=true implica LostAt seteado (y LostLocation no vacío al marcar).
//   - IsLost=false implica LostLocation/LostAt limpios.
//   - Una mascota puede estar vinculada a lo sumo a una chapita (TagID);
//     TagID vacío significa "no vinculada" (elegible para activación).
type Pet struct {
	ID      string
	OwnerID string

	Name      string
	Breed     string
	Gender    Gender
	BirthDate *time.Time

	Description        string
	Temperament        string
	MedicalInformation string

	// Photos es una secuencia ordenada de referencias a imágenes.
	Photos []string

	TagID string

	IsLost       bool
	LostLocation string
	LostAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
