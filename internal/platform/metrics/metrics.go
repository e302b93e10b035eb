package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa los contadores Prometheus del servicio.
// Se registra sobre un Registerer explícito (nada de default registry),
// así cada router de test arma el suyo sin colisiones.
type Metrics struct {
	TagActivations     prometheus.Counter
	ActivationConflict prometheus.Counter
	LostReported       prometheus.Counter
	PetsFound          prometheus.Counter
	GeorefFetches      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TagActivations: f.NewCounter(prometheus.CounterOpts{
			Name: "chapitas_tag_activations_total",
			Help: "Activaciones de chapita exitosas.",
		}),
		ActivationConflict: f.NewCounter(prometheus.CounterOpts{
			Name: "chapitas_tag_activation_conflicts_total",
			Help: "Intentos de activación rechazados por conflicto.",
		}),
		LostReported: f.NewCounter(prometheus.CounterOpts{
			Name: "chapitas_pets_reported_lost_total",
			Help: "Mascotas marcadas como perdidas.",
		}),
		PetsFound: f.NewCounter(prometheus.CounterOpts{
			Name: "chapitas_pets_reported_found_total",
			Help: "Mascotas marcadas como encontradas.",
		}),
		GeorefFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chapitas_georef_fetches_total",
			Help: "Requests al dataset georef, por recurso y resultado.",
		}, []string{"resource", "result"}),
	}
}

func (m *Metrics) IncTagActivations() {
	if m == nil {
		return
	}
	m.TagActivations.Inc()
}

func (m *Metrics) IncActivationConflicts() {
	if m == nil {
		return
	}
	m.ActivationConflict.Inc()
}

func (m *Metrics) IncLostReported() {
	if m == nil {
		return
	}
	m.LostReported.Inc()
}

func (m *Metrics) IncPetsFound() {
	if m == nil {
		return
	}
	m.PetsFound.Inc()
}

func (m *Metrics) ObserveGeorefFetch(resource string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.GeorefFetches.WithLabelValues(resource, result).Inc()
}
