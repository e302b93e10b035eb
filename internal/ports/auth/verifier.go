package auth

import "context"

// AuthVerifier verifica una credencial bearer y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
