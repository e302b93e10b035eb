package geo

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, catalog *Catalog) {
	r.Route("/locations", func(lr chi.Router) {
		lr.Get("/provinces", listProvincesHandler(catalog))
		lr.Get("/localities", listLocalitiesHandler(catalog))
	})
}

type provinceResponse struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

type localityResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"nombre"`
	Province   provinceResponse `json:"provincia"`
	Department provinceResponse `json:"departamento"`
}

func listProvincesHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("search")

		ps, err := catalog.FilterProvinces(r.Context(), term)
		if err != nil {
			writeFetchError(w, err)
			return
		}

		out := make([]provinceResponse, 0, len(ps))
		for _, p := range ps {
			out = append(out, provinceResponse{ID: p.ID, Name: p.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listLocalitiesHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provincia := r.URL.Query().Get("provincia")
		term := r.URL.Query().Get("search")

		ls, err := catalog.FilterLocalities(r.Context(), provincia, term)
		if err != nil {
			if errors.Is(err, ErrProvinceRequired) {
				http.Error(w, "provincia requerida", http.StatusBadRequest)
				return
			}
			writeFetchError(w, err)
			return
		}

		out := make([]localityResponse, 0, len(ls))
		for _, l := range ls {
			out = append(out, localityResponse{
				ID:         l.ID,
				Name:       l.Name,
				Province:   provinceResponse{ID: l.Province.ID, Name: l.Province.Name},
				Department: provinceResponse{ID: l.Department.ID, Name: l.Department.Name},
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeFetchError(w http.ResponseWriter, err error) {
	var fe *FetchError
	if errors.As(err, &fe) {
		// Lectura fallida del dataset remoto: reintentable por el usuario.
		http.Error(w, fe.Error(), http.StatusBadGateway)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
