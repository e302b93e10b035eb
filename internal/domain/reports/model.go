package reports

import "time"

// ReportType distingue la dirección de la transición.
type ReportType string

const (
	ReportTypeLost  ReportType = "LOST"
	ReportTypeFound ReportType = "FOUND"
)

// Report es una entrada del historial de transiciones perdida/encontrada
// de una mascota. Es append-only: las transiciones no se editan.
type Report struct {
	ID    string
	PetID string

	Type     ReportType
	Location string // "<Localidad>, <Provincia>" — vacío para FOUND

	ActorID string

	// OccurredAt es el instante de la transición (lostAt para LOST).
	// RecordedAt es cuándo lo persistió el servicio.
	OccurredAt time.Time
	RecordedAt time.Time
}
