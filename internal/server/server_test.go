package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/inbox"
	"github.com/quimicai/surfacelab/internal/optim"
	"github.com/quimicai/surfacelab/internal/surface"
)

func newTestServer(t *testing.T, store *inbox.Store) *Server {
	t.Helper()
	return New(domain.NewRegistry(), Options{
		Optimizer:    optim.NewPlaceholder(0),
		Inbox:        store,
		ContactRate:  1,
		ContactBurst: 2,
	})
}

func do(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	srv.Handler().ServeHTTP(rr, req)

	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rr.Body.String(), err)
	}
	return rr, out
}

func TestHealthz(t *testing.T) {
	rr, body := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
}

func TestListDomains(t *testing.T) {
	rr, body := do(t, newTestServer(t, nil), http.MethodGet, "/v1/domains", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	domains, ok := body["domains"].([]any)
	if !ok || len(domains) != 3 {
		t.Fatalf("expected 3 domains, got %v", body["domains"])
	}
	first := domains[0].(map[string]any)
	if first["tag"] != "chem" || first["time_saved"] != "72 horas" {
		t.Errorf("unexpected first domain %v", first)
	}
}

func TestGetDomain(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, body := do(t, srv, http.MethodGet, "/v1/domains/biological", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body["tag"] != "bio" {
		t.Errorf("alias not resolved: %v", body["tag"])
	}
	if params := body["parameters"].([]any); len(params) != 4 {
		t.Errorf("expected 4 parameters, got %d", len(params))
	}

	rr, _ = do(t, srv, http.MethodGet, "/v1/domains/physics", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestEvaluateCurve(t *testing.T) {
	rr, body := do(t, newTestServer(t, nil), http.MethodPost, "/v1/domains/chem/evaluate", map[string]any{
		"variables": []string{"Temperatura (°C)"},
		"metric":    domain.MetricChemYield,
		"ranges":    map[string]any{"Temp": map[string]float64{"low": 80, "high": 100}},
		"points":    5,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %v", rr.Code, body)
	}
	curve := body["result"].(map[string]any)["curve"].(map[string]any)
	xs := curve["x"].([]any)
	if len(xs) != 5 || xs[0].(float64) != 80 || xs[4].(float64) != 100 {
		t.Errorf("unexpected x axis %v", xs)
	}
	if body["max"].(float64) <= body["min"].(float64) {
		t.Errorf("expected a spread, got min %v max %v", body["min"], body["max"])
	}
}

func TestEvaluateErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"no variables", map[string]any{"variables": []string{}}, http.StatusUnprocessableEntity},
		{"three variables", map[string]any{"variables": []string{"Temp", "Presion", "TiCl3"}}, http.StatusUnprocessableEntity},
		{"unknown variable", map[string]any{"variables": []string{"Viscosidad"}}, http.StatusBadRequest},
		{"unknown metric", map[string]any{"variables": []string{"Temp"}, "metric": "Color"}, http.StatusBadRequest},
		{"range outside bounds", map[string]any{
			"variables": []string{"Temp"},
			"ranges":    map[string]any{"Temp": map[string]float64{"low": 0, "high": 200}},
		}, http.StatusBadRequest},
		{"too many points", map[string]any{"variables": []string{"Temp"}, "points": 1000}, http.StatusBadRequest},
		{"weight above one", map[string]any{"variables": []string{"Temp"}, "weight": 1.5}, http.StatusBadRequest},
		{"negative weight", map[string]any{"variables": []string{"Temp"}, "weight": -0.1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := do(t, srv, http.MethodPost, "/v1/domains/chem/evaluate", tt.body)
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d: %v", tt.want, rr.Code, body)
			}
		})
	}

	_, body := do(t, srv, http.MethodPost, "/v1/domains/chem/evaluate", map[string]any{"variables": []string{}})
	if body["guidance"] != surface.EmptySelectionGuidance {
		t.Errorf("guidance = %v", body["guidance"])
	}
}

func TestSmoothSurfaceEncodesUndefinedAsNull(t *testing.T) {
	rr, body := do(t, newTestServer(t, nil), http.MethodPost, "/v1/domains/chem/smooth", map[string]any{
		"variables": []string{"Temp", "Presion"},
		"metric":    domain.MetricChemYield,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %v", rr.Code, body)
	}
	sf := body["smoothed"].(map[string]any)["surface"].(map[string]any)
	if sf["no_data"] != false {
		t.Fatalf("expected data, got %v", sf["reason"])
	}
	nulls := 0
	for _, row := range sf["z"].([]any) {
		for _, v := range row.([]any) {
			if v == nil {
				nulls++
			}
		}
	}
	if nulls == 0 {
		t.Error("expected cells outside the sample hull to be null")
	}
}

func TestSmoothReportsHistoricalSavings(t *testing.T) {
	rr, body := do(t, newTestServer(t, nil), http.MethodPost, "/v1/domains/bio/smooth", map[string]any{
		"variables": []string{"Glucosa"},
		"metric":    domain.MetricCost,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %v", rr.Code, body)
	}
	est := body["savings"].(map[string]any)
	if est["money_saved"].(float64) != 1500 || est["time_saved"] != "60 horas" {
		t.Errorf("unexpected savings %v", est)
	}
	if body["money_saved"] != "1500.00 €" {
		t.Errorf("money_saved = %v", body["money_saved"])
	}
}

func TestOptimize(t *testing.T) {
	srv := newTestServer(t, nil)
	rr, body := do(t, srv, http.MethodPost, "/v1/domains/mat/optimize", map[string]any{
		"variables": []string{"Ni", "Cr"},
		"points":    10,
		"weight":    0.3,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %v", rr.Code, body)
	}
	report := body["report"].(map[string]any)
	if report["message"] != optim.CompletedMessage {
		t.Errorf("message = %v", report["message"])
	}
	if report["savings"].(map[string]any)["time_saved"] != "48 horas" {
		t.Errorf("unexpected savings %v", report["savings"])
	}

	rr, _ = do(t, srv, http.MethodPost, "/v1/domains/mat/optimize", map[string]any{"variables": []string{}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rr.Code)
	}

	rr, body = do(t, srv, http.MethodPost, "/v1/domains/mat/optimize", map[string]any{
		"variables": []string{"Ni"},
		"weight":    2,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for weight 2, got %d: %v", rr.Code, body)
	}
}

func TestOptimizeCanceled(t *testing.T) {
	srv := New(domain.NewRegistry(), Options{Optimizer: optim.NewPlaceholder(time.Hour)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := bytes.NewBufferString(`{"variables": ["Temp"]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/domains/chem/optimize", body).WithContext(ctx)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rr.Code)
	}
}

func TestContact(t *testing.T) {
	store, err := inbox.NewStore(filepath.Join(t.TempDir(), "inbox.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	srv := newTestServer(t, store)

	msg := map[string]string{"name": "Ana", "email": "ana@example.com", "message": "Hola"}
	rr, body := do(t, srv, http.MethodPost, "/v1/contact", msg)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", rr.Code, body)
	}
	if body["message"] != inbox.ThanksMessage || body["id"] == "" {
		t.Errorf("unexpected body %v", body)
	}

	rr, _ = do(t, srv, http.MethodPost, "/v1/contact", map[string]string{"name": "Ana"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}

	// Burst of 2 is spent by the two requests above.
	rr, _ = do(t, srv, http.MethodPost, "/v1/contact", msg)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rr.Code)
	}

	n, _ := store.Count(context.Background())
	if n != 1 {
		t.Errorf("expected 1 stored message, got %d", n)
	}
}

func TestContactWithoutInbox(t *testing.T) {
	rr, _ := do(t, newTestServer(t, nil), http.MethodPost, "/v1/contact", map[string]string{"name": "x"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rr.Code)
	}
}
