package georef

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/geo"
	"pet-tag-registry/internal/platform/httpclient"
	"pet-tag-registry/internal/platform/metrics"
)

const (
	DefaultBaseURL = "https://apis.datos.gob.ar"

	provincesPath  = "/georef/api/provincias"
	localitiesPath = "/georef/api/localidades"

	maxProvinces = 100
)

var (
	ErrGeorefNotConfigured = errors.New("georef client not configured")
)

// Client lee el dataset geográfico de referencia (API georef).
// Implementa geo.Source. Sin retries automáticos: toda falla sube
// al caller y el retry es decisión del usuario.
type Client struct {
	http    *httpclient.Client
	metrics *metrics.Metrics
}

type Config struct {
	BaseURL string
	Timeout time.Duration

	// Metrics es opcional; nil desactiva la instrumentación.
	Metrics *metrics.Metrics
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}

	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("georef: %w", err)
	}

	return &Client{
		http:    hc,
		metrics: cfg.Metrics,
	}, nil
}

type provinceDTO struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type provincesDTO struct {
	Provincias []provinceDTO `json:"provincias"`
}

type localityDTO struct {
	ID           string      `json:"id"`
	Nombre       string      `json:"nombre"`
	Provincia    provinceDTO `json:"provincia"`
	Departamento provinceDTO `json:"departamento"`
}

type localitiesDTO struct {
	Localidades []localityDTO `json:"localidades"`
}

// Provinces trae la lista completa de provincias ordenada por nombre.
func (c *Client) Provinces(ctx context.Context) ([]geo.Province, error) {
	if c == nil || c.http == nil {
		return nil, ErrGeorefNotConfigured
	}

	path := fmt.Sprintf("%s?orden=nombre&max=%d", provincesPath, maxProvinces)

	var out provincesDTO
	err := c.http.DoJSON(ctx, http.MethodGet, path, nil, nil, &out)
	c.metrics.ObserveGeorefFetch("provincias", err)
	if err != nil {
		return nil, fmt.Errorf("georef: provincias: %w", err)
	}

	ps := make([]geo.Province, 0, len(out.Provincias))
	for _, p := range out.Provincias {
		ps = append(ps, geo.Province{ID: p.ID, Name: p.Nombre})
	}
	return ps, nil
}

// Localities trae hasta geo.MaxLocalities localidades de una provincia,
// ordenadas por nombre. La deduplicación es responsabilidad del Catalog.
func (c *Client) Localities(ctx context.Context, provinceName string) ([]geo.Locality, error) {
	if c == nil || c.http == nil {
		return nil, ErrGeorefNotConfigured
	}
	provinceName = strings.TrimSpace(provinceName)
	if provinceName == "" {
		return nil, errors.New("georef: provincia requerida")
	}

	path := fmt.Sprintf("%s?provincia=%s&max=%d&orden=nombre",
		localitiesPath, url.QueryEscape(provinceName), geo.MaxLocalities)

	var out localitiesDTO
	err := c.http.DoJSON(ctx, http.MethodGet, path, nil, nil, &out)
	c.metrics.ObserveGeorefFetch("localidades", err)
	if err != nil {
		return nil, fmt.Errorf("georef: localidades: %w", err)
	}

	ls := make([]geo.Locality, 0, len(out.Localidades))
	for _, l := range out.Localidades {
		ls = append(ls, geo.Locality{
			ID:         l.ID,
			Name:       l.Nombre,
			Province:   geo.Province{ID: l.Provincia.ID, Name: l.Provincia.Nombre},
			Department: geo.Department{ID: l.Departamento.ID, Name: l.Departamento.Nombre},
		})
	}
	return ls, nil
}
