package geo

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	ErrProvinceRequired = errors.New("provincia requerida")
)

// Catalog es la capa de cache sobre el Source remoto.
// - Provincias: un solo fetch por sesión.
// - Localidades: un fetch por provincia, deduplicado por nombre
//   (case-insensitive, gana la primera aparición en orden del server).
// Ante una falla no se cachea nada parcial: el retry re-emite el request.
type Catalog struct {
	source Source

	mu         sync.Mutex
	provinces  []Province
	localities map[string][]Locality // key: provincia en minúsculas
}

func NewCatalog(source Source) *Catalog {
	return &Catalog{
		source:     source,
		localities: make(map[string][]Locality),
	}
}

// Provinces devuelve la lista completa, cacheada tras el primer éxito.
func (c *Catalog) Provinces(ctx context.Context) ([]Province, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provinces != nil {
		return c.provinces, nil
	}

	ps, err := c.source.Provinces(ctx)
	if err != nil {
		return nil, &FetchError{Resource: "provincias", Err: err}
	}
	if ps == nil {
		ps = []Province{}
	}
	c.provinces = ps
	return ps, nil
}

// LocalitiesOf devuelve las localidades de una provincia, deduplicadas,
// cacheadas por provincia tras el primer éxito.
func (c *Catalog) LocalitiesOf(ctx context.Context, provinceName string) ([]Locality, error) {
	provinceName = strings.TrimSpace(provinceName)
	if provinceName == "" {
		return nil, ErrProvinceRequired
	}

	key := strings.ToLower(provinceName)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.localities[key]; ok {
		return cached, nil
	}

	ls, err := c.source.Localities(ctx, provinceName)
	if err != nil {
		return nil, &FetchError{Resource: "localidades", Err: err}
	}

	ls = dedupeByName(ls)
	c.localities[key] = ls
	return ls, nil
}

// FilterProvinces filtra por substring case-insensitive, preservando
// el orden del server.
func (c *Catalog) FilterProvinces(ctx context.Context, term string) ([]Province, error) {
	ps, err := c.Provinces(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return ps, nil
	}

	out := make([]Province, 0)
	for _, p := range ps {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FilterLocalities filtra por substring case-insensitive y corta el
// resultado en FilterDisplayCap para acotar el costo de render.
// No se re-ordena por relevancia: se mantiene el orden del server.
func (c *Catalog) FilterLocalities(ctx context.Context, provinceName, term string) ([]Locality, error) {
	ls, err := c.LocalitiesOf(ctx, provinceName)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))

	out := make([]Locality, 0)
	for _, l := range ls {
		if term != "" && !strings.Contains(strings.ToLower(l.Name), term) {
			continue
		}
		out = append(out, l)
		if len(out) >= FilterDisplayCap {
			break
		}
	}
	return out, nil
}

// dedupeByName conserva la primera aparición de cada nombre
// (comparación case-insensitive), en orden del server.
func dedupeByName(ls []Locality) []Locality {
	out := make([]Locality, 0, len(ls))
	seen := make(map[string]struct{}, len(ls))
	for _, l := range ls {
		key := strings.ToLower(l.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}
