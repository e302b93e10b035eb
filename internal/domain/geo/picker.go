package geo

import (
	"context"
	"strings"
)

// Step es el paso actual del selector guiado de ubicación.
type Step string

const (
	StepProvince Step = "picking_province"
	StepLocality Step = "picking_locality"
	StepConfirm  Step = "confirming"
)

// Picker es la máquina de estados del selector "Provincia, Localidad".
// No tiene estado terminal propio: el commit lo hace el caller leyendo
// FormattedLocation() cuando IsComplete() da true.
//
// Invariante central: cambiar de provincia invalida SIEMPRE la localidad
// previa. Una localidad colgada de otra provincia es un bug, no un feature.
//
// Es estado por sesión de usuario; no es seguro para uso concurrente.
type Picker struct {
	catalog *Catalog

	step     Step
	province string
	locality string
}

func NewPicker(catalog *Catalog) *Picker {
	return &Picker{
		catalog: catalog,
		step:    StepProvince,
	}
}

func (p *Picker) Step() Step {
	return p.step
}

// SelectProvince fija la provincia activa, limpia cualquier localidad
// previa y dispara el fetch de localidades de la nueva provincia.
// Si el fetch falla, la provincia queda seleccionada igual y el caller
// puede reintentar con Localities().
func (p *Picker) SelectProvince(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrProvinceRequired
	}

	p.province = name
	p.locality = ""
	p.step = StepLocality

	_, err := p.catalog.LocalitiesOf(ctx, name)
	return err
}

// SelectLocality fija la localidad activa. Sin provincia seleccionada
// es un no-op (se ignora).
func (p *Picker) SelectLocality(name string) {
	if p.province == "" {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.locality = name
	p.step = StepConfirm
}

// Back retrocede un paso, limpiando los datos del paso que se abandona.
// Dejar StepLocality limpia la provincia, lo que cascadea a la localidad.
func (p *Picker) Back() {
	switch p.step {
	case StepConfirm:
		p.locality = ""
		p.step = StepLocality
	case StepLocality:
		p.province = ""
		p.locality = ""
		p.step = StepProvince
	}
}

// Cancel resetea incondicionalmente al paso inicial. Idempotente.
func (p *Picker) Cancel() {
	p.province = ""
	p.locality = ""
	p.step = StepProvince
}

// Reset es un alias de Cancel; existe por simetría con el resto del API.
func (p *Picker) Reset() {
	p.Cancel()
}

func (p *Picker) SelectedProvince() string {
	return p.province
}

func (p *Picker) SelectedLocality() string {
	return p.locality
}

func (p *Picker) IsComplete() bool {
	return p.province != "" && p.locality != ""
}

// FormattedLocation compone "<Localidad>, <Provincia>" solo cuando ambas
// selecciones están presentes; si no, devuelve vacío. Esta es la única
// superficie de contrato que otros componentes pueden leer.
func (p *Picker) FormattedLocation() string {
	if !p.IsComplete() {
		return ""
	}
	return p.locality + ", " + p.province
}

// Provinces lista (con filtro opcional) las provincias cargadas.
func (p *Picker) Provinces(ctx context.Context, term string) ([]Province, error) {
	return p.catalog.FilterProvinces(ctx, term)
}

// Localities lista (con filtro opcional) las localidades de la provincia
// activa. Sin provincia seleccionada devuelve lista vacía.
func (p *Picker) Localities(ctx context.Context, term string) ([]Locality, error) {
	if p.province == "" {
		return []Locality{}, nil
	}
	return p.catalog.FilterLocalities(ctx, p.province, term)
}
