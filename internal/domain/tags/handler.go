package tags

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/owners"
	"pet-tag-registry/internal/domain/pets"
	"pet-tag-registry/internal/middleware"
	"pet-tag-registry/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

// Options parametriza las rutas del módulo.
type Options struct {
	QRBaseURL    string
	MaxBatchSize int
}

func RegisterRoutes(r chi.Router, svc *Service, opts Options, m *metrics.Metrics) {
	r.Route("/tags", func(tr chi.Router) {
		tr.Get("/info/{tagID}", tagInfoHandler(svc))
		tr.Post("/activate/{tagID}", activateHandler(svc, m))
	})

	r.Post("/admin/tags/batch", mintBatchHandler(svc, opts))
}

type tagResponse struct {
	TagID       string     `json:"tagId"`
	BatchNumber string     `json:"batchNumber"`
	QRURL       string     `json:"qrUrl"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
}

// tagInfoResponse sigue el contrato público:
// { isActivated, needsLogin?, canActivate?, pet?, owner? }.
// needsLogin y canActivate nunca vienen true a la vez: salen de la
// union tri-estado, no de booleans sueltos.
type tagInfoResponse struct {
	IsActivated   bool               `json:"isActivated"`
	NeedsLogin    *bool              `json:"needsLogin,omitempty"`
	CanActivate   *bool              `json:"canActivate,omitempty"`
	Tag           tagResponse        `json:"tag"`
	AvailablePets []pets.PetResponse `json:"availablePets,omitempty"`
	Pet           *pets.PetResponse  `json:"pet,omitempty"`
	Owner         map[string]any     `json:"owner,omitempty"`
}

type activateRequest struct {
	PetID string `json:"petId"`
}

type mintBatchRequest struct {
	BatchNumber string `json:"batchNumber"`
	Count       int    `json:"count"`
}

func toTagResponse(t Tag) tagResponse {
	return tagResponse{
		TagID:       t.ID,
		BatchNumber: t.BatchNumber,
		QRURL:       t.QRURL,
		ActivatedAt: t.ActivatedAt,
	}
}

func toInfoResponse(v View) tagInfoResponse {
	out := tagInfoResponse{
		IsActivated: v.Kind == ViewActivated,
		Tag:         toTagResponse(v.Tag),
	}

	boolPtr := func(b bool) *bool { return &b }

	switch v.Kind {
	case ViewAnonymous:
		out.NeedsLogin = boolPtr(true)
	case ViewEligible:
		out.CanActivate = boolPtr(true)
		avail := make([]pets.PetResponse, 0, len(v.AvailablePets))
		for _, p := range v.AvailablePets {
			avail = append(avail, pets.ToPetResponse(p))
		}
		out.AvailablePets = avail
	case ViewActivated:
		if v.Pet != nil {
			resp := pets.ToPetResponse(*v.Pet)
			out.Pet = &resp
		}
		if v.Owner != nil {
			out.Owner = owners.ToContactResponse(*v.Owner)
		}
	}
	return out
}

// tagInfoHandler: GET /tags/info/{tagID}. Misma URL pública para extraños,
// futuros dueños y quien ya conoce a la mascota; la proyección depende
// del caller.
func tagInfoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := ""
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			callerID = claims.UserID
		}

		v, err := svc.Info(r.Context(), chi.URLParam(r, "tagID"), callerID)
		if err != nil {
			writeTagError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toInfoResponse(v))
	}
}

// activateHandler: POST /tags/activate/{tagID} con {petId}.
// El submit no es re-entrante: un segundo intento con la activación en
// vuelo devuelve 409 y la UI debe deshabilitar el re-submit.
func activateHandler(svc *Service, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req activateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		v, activated, err := svc.Activate(r.Context(), chi.URLParam(r, "tagID"), req.PetID, claims.UserID)
		if err != nil {
			var ae *ActivationError
			if errors.As(err, &ae) {
				m.IncActivationConflicts()
			}
			writeTagError(w, err)
			return
		}

		// Solo la transición real cuenta; los reingresos idempotentes no.
		if activated {
			m.IncTagActivations()
		}
		writeJSON(w, http.StatusOK, toInfoResponse(v))
	}
}

// mintBatchHandler: alta administrativa de un lote de chapitas.
func mintBatchHandler(svc *Service, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.Admin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req mintBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		max := opts.MaxBatchSize
		if max <= 0 {
			max = 500
		}
		if req.Count <= 0 || req.Count > max {
			http.Error(w, "count out of range", http.StatusBadRequest)
			return
		}

		minted, err := svc.MintBatch(r.Context(), req.BatchNumber, req.Count, opts.QRBaseURL)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]tagResponse, 0, len(minted))
		for _, t := range minted {
			out = append(out, toTagResponse(t))
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func writeTagError(w http.ResponseWriter, err error) {
	var ae *ActivationError
	switch {
	case errors.Is(err, ErrTagNotFound):
		http.Error(w, "tag not found", http.StatusNotFound)
	case errors.Is(err, ErrActivationInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &ae):
		http.Error(w, ae.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "ineligible pet/tag combination", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
