package drafts

import (
	"encoding/json"
	"time"
)

// Draft es un borrador de formulario con scope (userID, formID).
// Reemplaza el viejo escaneo ad-hoc de keys de storage: el scope es
// explícito y el flag de sesión es una operación, no una heurística.
type Draft struct {
	UserID  string
	FormID  string
	Payload json.RawMessage
	SavedAt time.Time
}
