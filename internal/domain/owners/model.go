package owners

import "time"

// Owner es la proyección de contacto de un usuario. Se expone públicamente
// solo cuando una chapita activada lo amerita (mascota perdida o vista
// pública de la chapita). Todos los campos de contacto son opcionales:
// dependen de qué tan completo esté el perfil.
type Owner struct {
	UserID  string
	Name    string
	Email   string
	Phone   string
	Address string

	UpdatedAt time.Time
}
