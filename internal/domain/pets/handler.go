package pets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/owners"
	"pet-tag-registry/internal/middleware"
	"pet-tag-registry/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

// LostReportRecorder registra transiciones perdida/encontrada.
// Lo implementa reports.Service; la interfaz vive acá para evitar ciclos.
type LostReportRecorder interface {
	Record(ctx context.Context, petID, actorID string, lost bool, location string, at time.Time) error
}

// OwnerDirectory resuelve la proyección de contacto del dueño.
type OwnerDirectory interface {
	GetByID(ctx context.Context, userID string) (owners.Owner, error)
}

func RegisterRoutes(r chi.Router, svc *Service, recorder LostReportRecorder, ownerDir OwnerDirectory, m *metrics.Metrics) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		// Colección pública de perdidas (con contacto del dueño).
		pr.Get("/lost", listLostPetsHandler(svc, ownerDir))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))

		pr.Patch("/{petID}/lost", toggleLostHandler(svc, recorder, m))
	})
}

type createPetRequest struct {
	Name               string   `json:"name"`
	Breed              string   `json:"breed"`
	Gender             string   `json:"gender"`
	BirthDate          string   `json:"birthDate"` // YYYY-MM-DD opcional
	Description        string   `json:"description"`
	Temperament        string   `json:"temperament"`
	MedicalInformation string   `json:"medicalInformation"`
	Photos             []string `json:"photos"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name               *string   `json:"name"`
	Breed              *string   `json:"breed"`
	Gender             *string   `json:"gender"`
	Description        *string   `json:"description"`
	Temperament        *string   `json:"temperament"`
	MedicalInformation *string   `json:"medicalInformation"`
	Photos             *[]string `json:"photos"`
}

type toggleLostRequest struct {
	IsLost       bool   `json:"isLost"`
	LostLocation string `json:"lostLocation"`
}

type PetResponse struct {
	ID                 string         `json:"id"`
	OwnerID            string         `json:"ownerId"`
	Name               string         `json:"name"`
	Breed              string         `json:"breed,omitempty"`
	Gender             string         `json:"gender,omitempty"`
	BirthDate          *time.Time     `json:"birthDate,omitempty"`
	Description        string         `json:"description,omitempty"`
	Temperament        string         `json:"temperament,omitempty"`
	MedicalInformation string         `json:"medicalInformation,omitempty"`
	Photos             []string       `json:"photos"`
	TagID              string         `json:"tagId,omitempty"`
	IsLost             bool           `json:"isLost"`
	LostLocation       string         `json:"lostLocation,omitempty"`
	LostAt             *time.Time     `json:"lostAt,omitempty"`
	Owner              map[string]any `json:"owner,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// ToPetResponse arma la proyección JSON de una mascota.
// Exportada porque el módulo tags embebe mascotas en la vista de chapita.
func ToPetResponse(p Pet) PetResponse {
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}
	return PetResponse{
		ID:                 p.ID,
		OwnerID:            p.OwnerID,
		Name:               p.Name,
		Breed:              p.Breed,
		Gender:             string(p.Gender),
		BirthDate:          p.BirthDate,
		Description:        p.Description,
		Temperament:        p.Temperament,
		MedicalInformation: p.MedicalInformation,
		Photos:             photos,
		TagID:              p.TagID,
		IsLost:             p.IsLost,
		LostLocation:       p.LostLocation,
		LostAt:             p.LostAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birthDate must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:               req.Name,
			Breed:              req.Breed,
			Gender:             req.Gender,
			BirthDate:          bd,
			Description:        req.Description,
			Temperament:        req.Temperament,
			MedicalInformation: req.MedicalInformation,
			Photos:             req.Photos,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, ToPetResponse(p))
	}
}

// listPetsHandler: GET /pets?ownerId={uid}. Sin ownerId se asume el caller;
// pedir las mascotas de otro usuario es 403.
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))
		if ownerID == "" {
			ownerID = claims.UserID
		}
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByOwner(r.Context(), ownerID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listLostPetsHandler(svc *Service, ownerDir OwnerDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListLost(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			resp := ToPetResponse(p)
			if ownerDir != nil {
				if o, err := ownerDir.GetByID(r.Context(), p.OwnerID); err == nil {
					resp.Owner = owners.ToContactResponse(o)
				}
			}
			out = append(out, resp)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if p.OwnerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, ToPetResponse(p))
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updatePetRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), chi.URLParam(r, "petID"), claims.UserID, UpdateInput{
			Name:               req.Name,
			Breed:              req.Breed,
			Gender:             req.Gender,
			Description:        req.Description,
			Temperament:        req.Temperament,
			MedicalInformation: req.MedicalInformation,
			Photos:             req.Photos,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ToPetResponse(updated))
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), claims.UserID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// toggleLostHandler: PATCH /pets/{petID}/lost con {isLost, lostLocation?}.
// El store no se muta ante error: solo la respuesta autoritativa del
// service/repo actualiza estado (nada de update optimista).
func toggleLostHandler(svc *Service, recorder LostReportRecorder, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req toggleLostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, changed, err := svc.SetLost(r.Context(), chi.URLParam(r, "petID"), claims.UserID, req.IsLost, req.LostLocation)
		if err != nil {
			switch {
			case errors.Is(err, ErrLocationRequired):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrToggleInFlight):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				writeDomainError(w, err)
			}
			return
		}

		if changed {
			if req.IsLost {
				m.IncLostReported()
			} else {
				m.IncPetsFound()
			}
			if recorder != nil {
				at := p.UpdatedAt
				if p.LostAt != nil {
					at = *p.LostAt
				}
				// El historial es best-effort: no voltea el toggle ya aplicado.
				_ = recorder.Record(r.Context(), p.ID, claims.UserID, p.IsLost, p.LostLocation, at)
			}
		}

		writeJSON(w, http.StatusOK, ToPetResponse(p))
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "pet not found", http.StatusNotFound)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
