package owners

import (
	"encoding/json"
	"net/http"
	"strings"

	"pet-tag-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/me/contact", func(cr chi.Router) {
		cr.Put("/", upsertContactHandler(svc))
		cr.Get("/", getContactHandler(svc))
	})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type contactResponse struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// ToContactResponse arma la proyección pública de contacto.
// La usan también los handlers de tags y pets para embeber el owner.
func ToContactResponse(o Owner) map[string]any {
	out := map[string]any{}
	if o.Name != "" {
		out["name"] = o.Name
	}
	if o.Email != "" {
		out["email"] = o.Email
	}
	if o.Phone != "" {
		out["phone"] = o.Phone
	}
	if o.Address != "" {
		out["address"] = o.Address
	}
	return out
}

func upsertContactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req contactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.UpsertContact(r.Context(), claims.UserID, UpsertInput{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, contactResponse{
			Name:    o.Name,
			Email:   o.Email,
			Phone:   o.Phone,
			Address: o.Address,
		})
	}
}

func getContactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		o, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "contact not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, contactResponse{
			Name:    o.Name,
			Email:   o.Email,
			Phone:   o.Phone,
			Address: o.Address,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
