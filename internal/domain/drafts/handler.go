package drafts

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"pet-tag-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/drafts/{formID}", func(dr chi.Router) {
		dr.Put("/", saveDraftHandler(svc))
		dr.Get("/", loadDraftHandler(svc))
		dr.Delete("/", clearDraftHandler(svc))
	})
}

type draftResponse struct {
	FormID  string          `json:"formId"`
	Payload json.RawMessage `json:"payload"`
	SavedAt time.Time       `json:"savedAt"`
	Touched bool            `json:"touched"`
}

func saveDraftHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<18)) // 256KB alcanza para un form
		if err != nil || !json.Valid(body) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.Save(r.Context(), claims.UserID, chi.URLParam(r, "formID"), body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, draftResponse{
			FormID:  d.FormID,
			Payload: d.Payload,
			SavedAt: d.SavedAt,
			Touched: true,
		})
	}
}

func loadDraftHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		formID := chi.URLParam(r, "formID")

		touched, err := svc.Touched(r.Context(), claims.UserID, formID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		d, err := svc.Load(r.Context(), claims.UserID, formID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "draft not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, draftResponse{
			FormID:  d.FormID,
			Payload: d.Payload,
			SavedAt: d.SavedAt,
			Touched: touched,
		})
	}
}

func clearDraftHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Clear(r.Context(), claims.UserID, chi.URLParam(r, "formID")); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
