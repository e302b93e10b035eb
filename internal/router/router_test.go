package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-tag-registry/internal/domain/geo"
	"pet-tag-registry/internal/router"
)

// fakeGeoSource evita salir a la red en los tests.
type fakeGeoSource struct{}

func (fakeGeoSource) Provinces(ctx context.Context) ([]geo.Province, error) {
	return []geo.Province{
		{ID: "06", Name: "Buenos Aires"},
		{ID: "14", Name: "Córdoba"},
	}, nil
}

func (fakeGeoSource) Localities(ctx context.Context, provinceName string) ([]geo.Locality, error) {
	switch provinceName {
	case "Buenos Aires":
		return []geo.Locality{
			{ID: "1", Name: "La Plata"},
			{ID: "2", Name: "la plata"}, // duplicado del dataset real
			{ID: "3", Name: "Moreno"},
		}, nil
	case "Córdoba":
		return []geo.Locality{{ID: "4", Name: "Villa María"}}, nil
	}
	return []geo.Locality{}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil, // modo dev
		GeoSource:    fakeGeoSource{},
		QRBaseURL:    "https://chapitas.test",
		MaxBatchSize: 100,
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_TagActivation(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"

	// 0) Owner carga su contacto (lo que verá un extraño tras activar).
	{
		st, body := doReq(t, ts.URL, "PUT", "/me/contact", ownerID, map[string]any{
			"name":  "Ana",
			"phone": "11-5555-0001",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 upsert contact, got %d body=%s", st, string(body))
		}
	}

	// 1) Admin acuña un lote
	tagIDs := mintBatch(t, ts.URL, "admin-1", "B-001", 2)

	// 2) Anónimo escanea: necesita login, sin datos de nadie
	{
		st, body := doReq(t, ts.URL, "GET", "/tags/info/"+tagIDs[0], "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 anonymous info, got %d body=%s", st, string(body))
		}
		var resp struct {
			IsActivated bool  `json:"isActivated"`
			NeedsLogin  *bool `json:"needsLogin"`
			CanActivate *bool `json:"canActivate"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.IsActivated || resp.NeedsLogin == nil || !*resp.NeedsLogin {
			t.Fatalf("expected needsLogin view, got %s", string(body))
		}
		if resp.CanActivate != nil {
			t.Fatalf("needsLogin and canActivate are mutually exclusive: %s", string(body))
		}
	}

	// 3) Owner crea dos mascotas
	petA := createPet(t, ts.URL, ownerID, map[string]any{"name": "Milo"})
	petB := createPet(t, ts.URL, ownerID, map[string]any{"name": "Luna"})

	// 4) Logueado escanea: puede activar, ve sus dos candidatas
	{
		st, body := doReq(t, ts.URL, "GET", "/tags/info/"+tagIDs[0], ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 eligible info, got %d body=%s", st, string(body))
		}
		var resp struct {
			CanActivate   *bool `json:"canActivate"`
			AvailablePets []struct {
				ID string `json:"id"`
			} `json:"availablePets"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.CanActivate == nil || !*resp.CanActivate {
			t.Fatalf("expected canActivate view, got %s", string(body))
		}
		if len(resp.AvailablePets) != 2 {
			t.Fatalf("expected 2 available pets, got %s", string(body))
		}
	}

	// 5) Activa con Milo: vuelve la vista ya activada
	{
		st, body := doReq(t, ts.URL, "POST", "/tags/activate/"+tagIDs[0], ownerID, map[string]any{
			"petId": petA,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 activate, got %d body=%s", st, string(body))
		}
		var resp struct {
			IsActivated bool `json:"isActivated"`
			Pet         *struct {
				ID    string `json:"id"`
				TagID string `json:"tagId"`
			} `json:"pet"`
			Owner map[string]any `json:"owner"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.IsActivated || resp.Pet == nil || resp.Pet.ID != petA {
			t.Fatalf("expected activated view with pet, got %s", string(body))
		}
		if resp.Pet.TagID != tagIDs[0] {
			t.Fatalf("pet not bound to tag in response: %s", string(body))
		}
		if resp.Owner["phone"] != "11-5555-0001" {
			t.Fatalf("expected owner contact in activated view, got %s", string(body))
		}
	}

	// 6) Reintento con la MISMA mascota: éxito idempotente
	{
		st, body := doReq(t, ts.URL, "POST", "/tags/activate/"+tagIDs[0], ownerID, map[string]any{
			"petId": petA,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 idempotent re-activate, got %d body=%s", st, string(body))
		}
	}

	// 7) Con OTRA mascota: conflicto 409
	{
		st, _ := doReq(t, ts.URL, "POST", "/tags/activate/"+tagIDs[0], ownerID, map[string]any{
			"petId": petB,
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 re-activate other pet, got %d", st)
		}
	}

	// 8) Milo salió del pool: la segunda chapita ya solo ofrece a Luna
	{
		st, body := doReq(t, ts.URL, "GET", "/tags/info/"+tagIDs[1], ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 second tag info, got %d body=%s", st, string(body))
		}
		var resp struct {
			AvailablePets []struct {
				ID string `json:"id"`
			} `json:"availablePets"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.AvailablePets) != 1 || resp.AvailablePets[0].ID != petB {
			t.Fatalf("expected only unbound pet available, got %s", string(body))
		}
	}

	// 9) Un extraño escanea la activada: ve contacto, no "sus mascotas"
	{
		st, body := doReq(t, ts.URL, "GET", "/tags/info/"+tagIDs[0], "stranger-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 stranger info, got %d body=%s", st, string(body))
		}
		var resp struct {
			IsActivated   bool           `json:"isActivated"`
			Owner         map[string]any `json:"owner"`
			AvailablePets []any          `json:"availablePets"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.IsActivated || resp.Owner["name"] != "Ana" {
			t.Fatalf("expected activated view with contact, got %s", string(body))
		}
		if len(resp.AvailablePets) != 0 {
			t.Fatalf("activated view must not offer pets: %s", string(body))
		}
	}
}

func TestHTTP_EndToEnd_LostFlow(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"
	petID := createPet(t, ts.URL, ownerID, map[string]any{"name": "Milo"})

	{
		st, body := doReq(t, ts.URL, "PUT", "/me/contact", ownerID, map[string]any{
			"name":  "Ana",
			"phone": "11-5555-0001",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 upsert contact, got %d body=%s", st, string(body))
		}
	}

	// 1) Marcar perdida sin ubicación => 400, nada cambia
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/pets/"+petID+"/lost", ownerID, map[string]any{
			"isLost": true,
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 without location, got %d", st)
		}

		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get pet, got %d", st)
		}
		var resp struct {
			IsLost bool `json:"isLost"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.IsLost {
			t.Fatalf("pet mutated by rejected toggle: %s", string(body))
		}
	}

	// 2) El selector de ubicación: provincias y localidades en cascada
	{
		st, body := doReq(t, ts.URL, "GET", "/locations/localities", ownerID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 localities without provincia, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/locations/provinces?search=aires", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 provinces, got %d body=%s", st, string(body))
		}
		var provs []struct {
			Nombre string `json:"nombre"`
		}
		_ = json.Unmarshal(body, &provs)
		if len(provs) != 1 || provs[0].Nombre != "Buenos Aires" {
			t.Fatalf("unexpected province filter result: %s", string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/locations/localities?provincia=Buenos%20Aires", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 localities, got %d body=%s", st, string(body))
		}
		var locs []struct {
			Nombre string `json:"nombre"`
		}
		_ = json.Unmarshal(body, &locs)
		// "La Plata" viene duplicada del dataset: acá llega una sola vez.
		if len(locs) != 2 {
			t.Fatalf("expected deduped localities, got %s", string(body))
		}
	}

	// 3) Marcar perdida con ubicación formateada
	{
		st, body := doReq(t, ts.URL, "PATCH", "/pets/"+petID+"/lost", ownerID, map[string]any{
			"isLost":       true,
			"lostLocation": "La Plata, Buenos Aires",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 mark lost, got %d body=%s", st, string(body))
		}
		var resp struct {
			IsLost       bool    `json:"isLost"`
			LostLocation string  `json:"lostLocation"`
			LostAt       *string `json:"lostAt"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.IsLost || resp.LostLocation != "La Plata, Buenos Aires" || resp.LostAt == nil {
			t.Fatalf("lost state incomplete: %s", string(body))
		}
	}

	// 4) Aparece en la colección pública con contacto del dueño
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/lost", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list lost, got %d body=%s", st, string(body))
		}
		var items []struct {
			ID    string         `json:"id"`
			Owner map[string]any `json:"owner"`
		}
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0].ID != petID {
			t.Fatalf("expected lost pet in public list, got %s", string(body))
		}
		if items[0].Owner["phone"] != "11-5555-0001" {
			t.Fatalf("expected owner contact embedded, got %s", string(body))
		}
	}

	// 5) El historial registra la transición (solo visible para el dueño)
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID+"/reports", "stranger-1", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 reports for stranger, got %d", st)
		}

		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/reports", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 reports, got %d body=%s", st, string(body))
		}
		var reps []struct {
			Type     string `json:"type"`
			Location string `json:"location"`
		}
		_ = json.Unmarshal(body, &reps)
		if len(reps) != 1 || reps[0].Type != "LOST" || reps[0].Location != "La Plata, Buenos Aires" {
			t.Fatalf("unexpected report history: %s", string(body))
		}
	}

	// 6) Encontrada: se limpia todo y sale de la colección pública
	{
		st, body := doReq(t, ts.URL, "PATCH", "/pets/"+petID+"/lost", ownerID, map[string]any{
			"isLost": false,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 mark found, got %d body=%s", st, string(body))
		}
		var resp struct {
			IsLost       bool    `json:"isLost"`
			LostLocation string  `json:"lostLocation"`
			LostAt       *string `json:"lostAt"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.IsLost || resp.LostLocation != "" || resp.LostAt != nil {
			t.Fatalf("found did not clear lost fields: %s", string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/pets/lost", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list lost, got %d", st)
		}
		var items []any
		_ = json.Unmarshal(body, &items)
		if len(items) != 0 {
			t.Fatalf("found pet still in public list: %s", string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/pets/"+petID+"/reports", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 reports, got %d", st)
		}
		var reps []struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(body, &reps)
		if len(reps) != 2 {
			t.Fatalf("expected LOST+FOUND history, got %s", string(body))
		}
	}
}

func TestHTTP_Drafts(t *testing.T) {
	ts := newTestServer(t)

	userID := "owner-1"

	// Sin auth => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/drafts/pet-form", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without auth, got %d", st)
		}
	}

	// Sin borrador todavía => 404
	{
		st, _ := doReq(t, ts.URL, "GET", "/drafts/pet-form", userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 before save, got %d", st)
		}
	}

	// Guardar y recuperar
	{
		st, body := doReq(t, ts.URL, "PUT", "/drafts/pet-form", userID, map[string]any{
			"name":  "Milo",
			"breed": "mestizo",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 save draft, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/drafts/pet-form", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 load draft, got %d body=%s", st, string(body))
		}
		var resp struct {
			Payload map[string]any `json:"payload"`
			Touched bool           `json:"touched"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Payload["name"] != "Milo" || !resp.Touched {
			t.Fatalf("unexpected draft: %s", string(body))
		}
	}

	// Otro usuario no ve el borrador ajeno
	{
		st, _ := doReq(t, ts.URL, "GET", "/drafts/pet-form", "other-user", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for other user, got %d", st)
		}
	}

	// Limpiar
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/drafts/pet-form", userID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 clear draft, got %d", st)
		}

		st, _ = doReq(t, ts.URL, "GET", "/drafts/pet-form", userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after clear, got %d", st)
		}
	}
}

func TestHTTP_TagInfo_UnknownTag(t *testing.T) {
	ts := newTestServer(t)

	st, _ := doReq(t, ts.URL, "GET", "/tags/info/does-not-exist", "", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 unknown tag, got %d", st)
	}
}

func TestHTTP_MintBatch_RequiresAdmin(t *testing.T) {
	ts := newTestServer(t)

	// Usuario común => 403
	st, _ := doReq(t, ts.URL, "POST", "/admin/tags/batch", "owner-1", map[string]any{
		"batchNumber": "B-001",
		"count":       3,
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 non-admin, got %d", st)
	}

	// count fuera de rango => 400
	st, _ = doAdminReq(t, ts.URL, "POST", "/admin/tags/batch", "admin-1", map[string]any{
		"batchNumber": "B-001",
		"count":       10000,
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 count out of range, got %d", st)
	}
}

func mintBatch(t *testing.T, baseURL, adminID, batchNumber string, count int) []string {
	t.Helper()

	st, body := doAdminReq(t, baseURL, "POST", "/admin/tags/batch", adminID, map[string]any{
		"batchNumber": batchNumber,
		"count":       count,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 mint batch, got %d body=%s", st, string(body))
	}

	var resp []struct {
		TagID string `json:"tagId"`
	}
	_ = json.Unmarshal(body, &resp)
	if len(resp) != count {
		t.Fatalf("expected %d minted tags, got %s", count, string(body))
	}

	out := make([]string, 0, count)
	for _, r := range resp {
		out = append(out, r.TagID)
	}
	return out
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()
	return do(t, baseURL, method, path, debugUserID, false, body)
}

func doAdminReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()
	return do(t, baseURL, method, path, debugUserID, true, body)
}

func do(t *testing.T, baseURL, method, path, debugUserID string, admin bool, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if admin {
		req.Header.Set("X-Debug-Admin", "true")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
