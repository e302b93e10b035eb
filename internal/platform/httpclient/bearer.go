package httpclient

import (
	"context"
	"errors"
	"net/http"
)

// TokenSource entrega la credencial bearer vigente y permite refrescarla.
// El proveedor de auth es un colaborador externo; acá solo se consume.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// BearerTransport adjunta la credencial bearer a cada request saliente.
// Ante un 401 hace UN refresh transparente y reintenta una única vez;
// si vuelve a fallar, la respuesta 401 se devuelve tal cual.
type BearerTransport struct {
	Base   http.RoundTripper
	Source TokenSource
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t == nil || t.Source == nil {
		return nil, errors.New("httpclient: bearer transport sin token source")
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx := req.Context()

	token, err := t.Source.Token(ctx)
	if err != nil {
		return nil, err
	}

	first := cloneWithBearer(req, token)
	resp, err := base.RoundTrip(first)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Requests con body no-rebobinable no se pueden reintentar.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	refreshed, err := t.Source.Refresh(ctx)
	if err != nil {
		// El refresh falló: se devuelve el 401 original.
		return resp, nil
	}

	resp.Body.Close()

	retry := cloneWithBearer(req, refreshed)
	if req.GetBody != nil {
		b, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = b
	}

	return base.RoundTrip(retry)
}

func cloneWithBearer(req *http.Request, token string) *http.Request {
	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	return out
}
