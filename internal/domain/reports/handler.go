package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pet-tag-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// PetOwnership resuelve quién es dueño de una mascota (lo implementa
// pets.Service vía OwnerOf).
type PetOwnership interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, ownership PetOwnership) {
	r.Get("/pets/{petID}/reports", listReportsHandler(svc, ownership))
}

type reportResponse struct {
	ID         string    `json:"id"`
	PetID      string    `json:"petId"`
	Type       string    `json:"type"`
	Location   string    `json:"location,omitempty"`
	ActorID    string    `json:"actorId"`
	OccurredAt time.Time `json:"occurredAt"`
	RecordedAt time.Time `json:"recordedAt"`
}

// listReportsHandler: historial de transiciones, solo para el dueño.
func listReportsHandler(svc *Service, ownership PetOwnership) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")

		ownerID, err := ownership.OwnerOf(r.Context(), petID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByPet(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]reportResponse, 0, len(items))
		for _, rep := range items {
			out = append(out, reportResponse{
				ID:         rep.ID,
				PetID:      rep.PetID,
				Type:       string(rep.Type),
				Location:   rep.Location,
				ActorID:    rep.ActorID,
				OccurredAt: rep.OccurredAt,
				RecordedAt: rep.RecordedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
