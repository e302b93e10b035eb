package auth

// Claims representa la información extraída de la credencial del portal.
type Claims struct {
	UserID string
	Email  string

	// Admin habilita operaciones administrativas (alta de lotes de chapitas).
	Admin bool
}
